package dag

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/dagjudge/internal/node"
)

var (
	// ErrInvalidGraph is the kind of every structural validation failure.
	ErrInvalidGraph = errors.New("invalid graph")
	// ErrCycle is returned when the graph contains a directed cycle.
	ErrCycle = errors.New("cycle detected")
)

// Graph is a validated, addressed view over the nodes reachable from a root.
// It is read-only; execution state lives on the nodes themselves.
type Graph struct {
	root      node.Node
	order     []node.Node
	addresses map[node.Node]string
	byAddress map[string]node.Node
	depth     map[node.Node]int
}

// Root returns the entry node.
func (g *Graph) Root() node.Node { return g.root }

// Len returns the number of reachable nodes.
func (g *Graph) Len() int { return len(g.order) }

// Nodes returns every reachable node in depth-first discovery order.
func (g *Graph) Nodes() []node.Node {
	return append([]node.Node(nil), g.order...)
}

// Address returns the stable address of n, or "" for a foreign node.
func (g *Graph) Address(n node.Node) string { return g.addresses[n] }

// Lookup returns the node with the given address.
func (g *Graph) Lookup(address string) (node.Node, bool) {
	n, ok := g.byAddress[address]
	return n, ok
}

// MinDepth returns the length of the shortest path from the root to n.
func (g *Graph) MinDepth(n node.Node) int { return g.depth[n] }

// Dependencies returns the addresses of n's parents in edge order.
func (g *Graph) Dependencies(address string) ([]string, error) {
	n, ok := g.byAddress[address]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", address)
	}
	parents := n.Parents().All()
	out := make([]string, 0, len(parents))
	for _, p := range parents {
		out = append(out, g.addresses[p])
	}
	return out, nil
}

// Dependents returns the addresses of n's children in declaration order.
func (g *Graph) Dependents(address string) ([]string, error) {
	n, ok := g.byAddress[address]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", address)
	}
	children := n.Children()
	out := make([]string, 0, len(children))
	for _, c := range children {
		out = append(out, g.addresses[c])
	}
	return out, nil
}

// Verdicts returns every reachable Verdict node.
func (g *Graph) Verdicts() []*node.Verdict {
	var out []*node.Verdict
	for _, n := range g.order {
		if v, ok := n.(*node.Verdict); ok {
			out = append(out, v)
		}
	}
	return out
}
