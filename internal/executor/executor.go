package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/specialistvlad/dagjudge/internal/ctxlog"
	"github.com/specialistvlad/dagjudge/internal/dag"
	"github.com/specialistvlad/dagjudge/internal/evaluation"
	"github.com/specialistvlad/dagjudge/internal/node"
	"github.com/specialistvlad/dagjudge/internal/scheduler"
	"github.com/specialistvlad/dagjudge/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// handlerFunc runs a node body and returns the children to visit next.
type handlerFunc func(ctx context.Context, n node.Node, depth int) ([]node.Node, error)

// Executor drives one evaluation pass over one graph.
type Executor struct {
	graph    *dag.Graph
	eval     *evaluation.Evaluation
	sched    scheduler.Scheduler
	tracer   trace.Tracer
	handlers map[node.Kind]handlerFunc
	// Run-level logger. Node loggers derive from it, not from their parent's.
	logger *slog.Logger
}

// New prepares an executor. The graph must not have been executed before.
func New(g *dag.Graph, ev *evaluation.Evaluation, s scheduler.Scheduler) *Executor {
	e := &Executor{
		graph:  g,
		eval:   ev,
		sched:  s,
		tracer: telemetry.Tracer(),
		logger: slog.Default(),
	}
	e.handlers = map[node.Kind]handlerFunc{
		node.KindTask:               e.runTask,
		node.KindBinaryJudgement:    e.runBinaryJudgement,
		node.KindNonBinaryJudgement: e.runNonBinaryJudgement,
		node.KindVerdict:            e.runVerdict,
	}
	return e
}

// Run visits the root at depth 0 and returns once the traversal settled.
func (e *Executor) Run(ctx context.Context) error {
	ctx, logger := ctxlog.With(ctx, "run_id", e.eval.RunID, "scheduler", e.sched.Name())
	e.logger = logger
	logger.Debug("Starting graph traversal.", "nodes", e.graph.Len())
	if err := e.visit(ctx, e.graph.Root(), 0); err != nil {
		logger.Error("Graph traversal failed.", "error", err)
		return err
	}
	logger.Debug("Graph traversal finished.", "log_entries", e.eval.Log().Len())
	return nil
}

func (e *Executor) visit(ctx context.Context, n node.Node, depth int) error {
	if !n.Join().Arrive() {
		return nil
	}
	n.SetState(node.Entered)

	addr := e.graph.Address(n)
	kind := n.Kind()
	logger := e.logger.With("node", addr, "depth", depth)

	if v, ok := n.(*node.Verdict); ok && !gateOpen(v) {
		n.SetState(node.Pruned)
		telemetry.NodeExecutions.WithLabelValues(kind.Slug(), "pruned").Inc()
		logger.Debug("Verdict pruned.")
		return nil
	}

	if err := ctx.Err(); err != nil {
		n.SetState(node.Failed)
		return &NodeError{Address: addr, Kind: kind, Depth: depth, Err: err}
	}

	handler, ok := e.handlers[kind]
	if !ok {
		n.SetState(node.Failed)
		return &NodeError{Address: addr, Kind: kind, Depth: depth, Err: fmt.Errorf("no handler for %s", kind)}
	}

	ctx, span := e.tracer.Start(ctx, kind.String(), trace.WithAttributes(
		attribute.String("dag.node.address", addr),
		attribute.Int("dag.node.depth", depth),
	))
	defer span.End()
	ctx = ctxlog.WithLogger(ctx, logger)

	n.SetState(node.Executing)
	logger.Debug("Executing node.")
	start := time.Now()
	children, err := handler(ctx, n, depth)
	telemetry.NodeDuration.WithLabelValues(kind.Slug()).Observe(time.Since(start).Seconds())
	if err != nil {
		n.SetState(node.Failed)
		telemetry.NodeExecutions.WithLabelValues(kind.Slug(), "failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("Node execution failed.", "error", err)
		return &NodeError{Address: addr, Kind: kind, Depth: depth, Err: err}
	}
	n.SetState(node.Executed)
	telemetry.NodeExecutions.WithLabelValues(kind.Slug(), "executed").Inc()
	logger.Info("✅ Node executed", "kind", kind.String())

	if len(children) == 0 {
		return nil
	}
	return e.sched.Dispatch(ctx, children, func(ctx context.Context, child node.Node) error {
		return e.visit(ctx, child, depth+1)
	})
}

// gateOpen reports whether v matches the verdict its judgement parent chose.
// Verdicts under a Task, or without a parent, always pass.
func gateOpen(v *node.Verdict) bool {
	j, ok := v.Parent().(node.Judgement)
	if !ok {
		return true
	}
	chosen, resolved := j.Resolved()
	return resolved && chosen.Equal(v.Value)
}
