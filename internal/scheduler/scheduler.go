package scheduler

import (
	"context"
	"fmt"

	"github.com/specialistvlad/dagjudge/internal/node"
	"golang.org/x/sync/errgroup"
)

// VisitFunc visits a single child.
type VisitFunc func(ctx context.Context, n node.Node) error

// Scheduler dispatches children to a visit function.
type Scheduler interface {
	Name() string
	Dispatch(ctx context.Context, children []node.Node, visit VisitFunc) error
}

const (
	NameSequential = "sequential"
	NameParallel   = "parallel"
)

// New returns the scheduler called name. limit bounds parallel fan-out per
// node; zero means unbounded.
func New(name string, limit int) (Scheduler, error) {
	switch name {
	case NameSequential, "":
		return Sequential{}, nil
	case NameParallel:
		if limit < 0 {
			return nil, fmt.Errorf("parallel limit must not be negative, got %d", limit)
		}
		return Parallel{Limit: limit}, nil
	default:
		return nil, fmt.Errorf("unknown scheduler %q", name)
	}
}

// Sequential visits children in declaration order.
type Sequential struct{}

func (Sequential) Name() string { return NameSequential }

func (Sequential) Dispatch(ctx context.Context, children []node.Node, visit VisitFunc) error {
	for _, child := range children {
		if err := visit(ctx, child); err != nil {
			return err
		}
	}
	return nil
}

// Parallel visits all children concurrently. Siblings are not cancelled when
// one fails; Dispatch returns after all of them finished.
type Parallel struct {
	// Limit caps concurrently running children of one node. Zero is unbounded.
	Limit int
}

func (p Parallel) Name() string { return NameParallel }

func (p Parallel) Dispatch(ctx context.Context, children []node.Node, visit VisitFunc) error {
	switch len(children) {
	case 0:
		return nil
	case 1:
		return visit(ctx, children[0])
	}
	var g errgroup.Group
	if p.Limit > 0 {
		g.SetLimit(p.Limit)
	}
	for _, child := range children {
		child := child
		g.Go(func() error {
			return visit(ctx, child)
		})
	}
	return g.Wait()
}
