package dag

import (
	"context"
	"fmt"
	"strconv"

	"github.com/specialistvlad/dagjudge/internal/ctxlog"
	"github.com/specialistvlad/dagjudge/internal/node"
)

// Build validates the graph reachable from root and returns its addressed view.
func Build(ctx context.Context, root node.Node) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph validation.")
	if root == nil {
		return nil, fmt.Errorf("%w: root node is nil", ErrInvalidGraph)
	}

	g := &Graph{
		root:      root,
		addresses: make(map[node.Node]string),
		byAddress: make(map[string]node.Node),
		depth:     make(map[node.Node]int),
	}

	// First pass: discover reachable nodes.
	if err := g.discover(); err != nil {
		return nil, err
	}
	logger.Debug("Build: Node discovery complete.", "node_count", len(g.order))

	// Second pass: assign addresses.
	g.assignAddresses()

	// Third pass: audit declared indegrees against the edges we can see.
	if err := g.auditIndegrees(); err != nil {
		return nil, err
	}
	logger.Debug("Build: Indegree audit passed.")

	if err := g.detectCycles(); err != nil {
		return nil, fmt.Errorf("error validating evaluation graph: %w", err)
	}
	logger.Debug("Build: Cycle detection passed.")

	for _, n := range g.order {
		if n.State() != node.Unvisited || !n.Join().State().Pending {
			return nil, fmt.Errorf("%w: node %s has already been executed; graphs are single-use", ErrInvalidGraph, g.addresses[n])
		}
	}

	logger.Debug("Build: Graph validation successful.")
	return g, nil
}

func (g *Graph) discover() error {
	seen := make(map[node.Node]bool)
	queue := []node.Node{g.root}
	seen[g.root] = true
	g.depth[g.root] = 0
	// Breadth first for depths, then reorder depth first for stable addresses.
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for i, c := range n.Children() {
			if c == nil {
				return fmt.Errorf("%w: %s has a nil child at index %d", ErrInvalidGraph, n.Kind(), i)
			}
			if seen[c] {
				continue
			}
			seen[c] = true
			g.depth[c] = g.depth[n] + 1
			queue = append(queue, c)
		}
	}

	visited := make(map[node.Node]bool, len(seen))
	var walk func(n node.Node)
	walk = func(n node.Node) {
		if visited[n] {
			return
		}
		visited[n] = true
		g.order = append(g.order, n)
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(g.root)
	return nil
}

func (g *Graph) assignAddresses() {
	unnamed := make(map[node.Kind]int)
	for _, n := range g.order {
		var addr string
		if n.Name() != "" {
			addr = n.Kind().Slug() + "." + n.Name()
		} else {
			addr = n.Kind().Slug() + "[" + strconv.Itoa(unnamed[n.Kind()]) + "]"
			unnamed[n.Kind()]++
		}
		if _, taken := g.byAddress[addr]; taken {
			base := addr
			for i := 2; ; i++ {
				addr = base + "#" + strconv.Itoa(i)
				if _, taken := g.byAddress[addr]; !taken {
					break
				}
			}
		}
		g.addresses[n] = addr
		g.byAddress[addr] = n
	}
}

func (g *Graph) auditIndegrees() error {
	if total := g.root.Join().Total(); total != 0 {
		return fmt.Errorf("%w: root %s has %d incoming edges", ErrInvalidGraph, g.addresses[g.root], total)
	}
	edges := make(map[node.Node]int, len(g.order))
	for _, n := range g.order {
		for _, c := range n.Children() {
			edges[c]++
		}
	}
	for _, n := range g.order {
		if n == g.root {
			continue
		}
		if declared := n.Join().Total(); declared != edges[n] {
			return fmt.Errorf("%w: %s declares %d incoming edges but only %d are reachable from the root; it would never run",
				ErrInvalidGraph, g.addresses[n], declared, edges[n])
		}
	}
	return nil
}

// detectCycles runs a three-colour depth-first search from the root.
func (g *Graph) detectCycles() error {
	permanent := make(map[node.Node]bool)
	temporary := make(map[node.Node]bool)

	var visit func(n node.Node) error
	visit = func(n node.Node) error {
		if permanent[n] {
			return nil
		}
		if temporary[n] {
			return fmt.Errorf("%w involving node '%s'", ErrCycle, g.addresses[n])
		}
		temporary[n] = true
		for _, c := range n.Children() {
			if err := visit(c); err != nil {
				return err
			}
		}
		delete(temporary, n)
		permanent[n] = true
		return nil
	}
	return visit(g.root)
}
