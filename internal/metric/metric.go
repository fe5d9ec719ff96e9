package metric

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/dagjudge/internal/auditlog"
	"github.com/specialistvlad/dagjudge/internal/ctxlog"
	"github.com/specialistvlad/dagjudge/internal/dag"
	"github.com/specialistvlad/dagjudge/internal/evaluation"
	"github.com/specialistvlad/dagjudge/internal/executor"
	"github.com/specialistvlad/dagjudge/internal/geval"
	"github.com/specialistvlad/dagjudge/internal/judge"
	"github.com/specialistvlad/dagjudge/internal/node"
	"github.com/specialistvlad/dagjudge/internal/scheduler"
	"github.com/specialistvlad/dagjudge/internal/telemetry"
	"github.com/specialistvlad/dagjudge/internal/testcase"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultThreshold is the passing score when none is configured.
const DefaultThreshold = 0.5

// Builder returns the root of a freshly constructed graph.
type Builder func() (node.Node, error)

// DAG is a metric backed by an evaluation graph.
type DAG struct {
	name          string
	build         Builder
	judge         judge.Judge
	threshold     float64
	strict        bool
	includeReason bool
	sched         scheduler.Scheduler
	geval         geval.Factory
}

// Option configures a DAG metric.
type Option func(*DAG)

// WithThreshold sets the passing score.
func WithThreshold(t float64) Option {
	return func(d *DAG) { d.threshold = t }
}

// WithStrictMode forces a threshold of 1 and floors failing scores to 0.
func WithStrictMode(strict bool) Option {
	return func(d *DAG) { d.strict = strict }
}

// WithReason toggles reason generation.
func WithReason(include bool) Option {
	return func(d *DAG) { d.includeReason = include }
}

// WithScheduler selects the fan-out strategy.
func WithScheduler(s scheduler.Scheduler) Option {
	return func(d *DAG) { d.sched = s }
}

// WithGEvalFactory overrides how nested sub-evaluators are built.
func WithGEvalFactory(f geval.Factory) Option {
	return func(d *DAG) { d.geval = f }
}

// New returns a DAG metric. build is called once per Measure.
func New(name string, build Builder, j judge.Judge, opts ...Option) (*DAG, error) {
	if build == nil {
		return nil, errors.New("metric requires a graph builder")
	}
	if j == nil {
		return nil, errors.New("metric requires a judge")
	}
	d := &DAG{
		name:          name,
		build:         build,
		judge:         j,
		threshold:     DefaultThreshold,
		includeReason: true,
		sched:         scheduler.Sequential{},
		geval:         geval.DefaultFactory,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.threshold < 0 || d.threshold > 1 {
		return nil, fmt.Errorf("threshold must be within [0, 1], got %v", d.threshold)
	}
	return d, nil
}

// Name returns the metric name.
func (d *DAG) Name() string { return d.name }

// Threshold returns the effective passing score.
func (d *DAG) Threshold() float64 {
	if d.strict {
		return 1
	}
	return d.threshold
}

// Result is the outcome of a successful pass.
type Result struct {
	Metric    string
	RunID     string
	Score     float64
	Reason    string
	Success   bool
	Threshold float64
	Cost      float64
	ScoredBy  string
	Log       []auditlog.Entry
	// VerboseLog is the rendered audit log.
	VerboseLog string
}

// Measure runs one pass over a fresh graph.
func (d *DAG) Measure(ctx context.Context, tc *testcase.TestCase) (*Result, error) {
	if tc == nil {
		return nil, errors.New("test case is nil")
	}
	ctx, span := telemetry.Tracer().Start(ctx, "metric.Measure", trace.WithAttributes(
		attribute.String("dag.metric", d.name),
		attribute.String("dag.scheduler", d.sched.Name()),
	))
	defer span.End()

	res, err := d.measure(ctx, tc)
	if err != nil {
		telemetry.Evaluations.WithLabelValues(d.name, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	outcome := "failure"
	if res.Success {
		outcome = "success"
	}
	telemetry.Evaluations.WithLabelValues(d.name, outcome).Inc()
	telemetry.EvaluationScore.WithLabelValues(d.name).Observe(res.Score)
	span.SetAttributes(attribute.Float64("dag.score", res.Score), attribute.Bool("dag.success", res.Success))
	return res, nil
}

func (d *DAG) measure(ctx context.Context, tc *testcase.TestCase) (*Result, error) {
	root, err := d.build()
	if err != nil {
		return nil, fmt.Errorf("metric %q: building graph: %w", d.name, err)
	}
	g, err := dag.Build(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("metric %q: %w", d.name, err)
	}
	if missing := tc.Missing(RequiredParams(g)); len(missing) > 0 {
		return nil, fmt.Errorf("metric %q: %w", d.name, &MissingParamsError{Missing: missing})
	}

	ev := evaluation.New(tc, d.judge,
		evaluation.WithMetricName(d.name),
		evaluation.WithReason(d.includeReason),
		evaluation.WithGEvalFactory(d.geval),
	)
	ctx, logger := ctxlog.With(ctx, "metric", d.name, "run_id", ev.RunID)
	logger.Info("▶️ Evaluating test case", "nodes", g.Len(), "scheduler", d.sched.Name())

	if err := executor.New(g, ev, d.sched).Run(ctx); err != nil {
		return nil, &EvaluationError{Metric: d.name, RunID: ev.RunID, Log: ev.Log().Entries(), Err: err}
	}
	score, ok := ev.Score()
	if !ok {
		return nil, &EvaluationError{Metric: d.name, RunID: ev.RunID, Log: ev.Log().Entries(), Err: ErrNoScore}
	}

	threshold := d.Threshold()
	if d.strict && score < threshold {
		score = 0
	}
	res := &Result{
		Metric:     d.name,
		RunID:      ev.RunID,
		Score:      score,
		Reason:     ev.Reason(),
		Success:    score >= threshold,
		Threshold:  threshold,
		Cost:       ev.Cost(),
		ScoredBy:   ev.ScoredBy(),
		Log:        ev.Log().Entries(),
		VerboseLog: ev.Log().Render(),
	}
	logger.Info("✅ Evaluation finished", "score", res.Score, "success", res.Success)
	return res, nil
}

// RequiredParams returns every test case parameter referenced by the graph's
// nodes and nested evaluators, in discovery order without duplicates.
func RequiredParams(g *dag.Graph) []testcase.Param {
	var out []testcase.Param
	seen := make(map[testcase.Param]bool)
	add := func(ps []testcase.Param) {
		for _, p := range ps {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	for _, n := range g.Nodes() {
		switch n := n.(type) {
		case *node.Task:
			add(n.EvaluationParams)
		case node.Judgement:
			add(n.EvaluationParams())
		case *node.Verdict:
			if spec := n.GEval(); spec != nil {
				add(spec.EvaluationParams)
			}
		}
	}
	return out
}
