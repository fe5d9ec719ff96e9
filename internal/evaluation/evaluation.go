// Package evaluation holds the mutable state of a single metric pass: the
// test case under evaluation, the judge, and the sinks nodes write into.
package evaluation

import (
	"sync"

	"github.com/google/uuid"
	"github.com/specialistvlad/dagjudge/internal/auditlog"
	"github.com/specialistvlad/dagjudge/internal/geval"
	"github.com/specialistvlad/dagjudge/internal/judge"
	"github.com/specialistvlad/dagjudge/internal/testcase"
)

// Evaluation is shared by every node of one pass. All sinks are safe for
// concurrent use.
type Evaluation struct {
	RunID         string
	TestCase      *testcase.TestCase
	Judge         judge.Judge
	MetricName    string
	IncludeReason bool
	GEval         geval.Factory

	log *auditlog.Log

	mu       sync.Mutex
	cost     float64
	score    *float64
	reason   string
	scoredBy string
}

// Option configures an Evaluation.
type Option func(*Evaluation)

// WithMetricName sets the metric name used in reason prompts.
func WithMetricName(name string) Option {
	return func(e *Evaluation) { e.MetricName = name }
}

// WithReason requests reasons for judgements and scores.
func WithReason(include bool) Option {
	return func(e *Evaluation) { e.IncludeReason = include }
}

// WithGEvalFactory overrides how nested sub-evaluators are built.
func WithGEvalFactory(f geval.Factory) Option {
	return func(e *Evaluation) { e.GEval = f }
}

// WithLog makes the evaluation append to an existing log.
func WithLog(l *auditlog.Log) Option {
	return func(e *Evaluation) { e.log = l }
}

// New returns an evaluation of tc using j.
func New(tc *testcase.TestCase, j judge.Judge, opts ...Option) *Evaluation {
	e := &Evaluation{
		RunID:         uuid.NewString(),
		TestCase:      tc,
		Judge:         j,
		MetricName:    "DAG",
		IncludeReason: true,
		GEval:         geval.DefaultFactory,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = &auditlog.Log{}
	}
	return e
}

// Log returns the audit log of the pass.
func (e *Evaluation) Log() *auditlog.Log { return e.log }

// AddCost accumulates judge cost.
func (e *Evaluation) AddCost(c float64) {
	if c == 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cost += c
}

// Cost returns the accumulated judge cost.
func (e *Evaluation) Cost() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cost
}

// SetScore records the score fixed by the verdict at address. A later call
// overwrites an earlier one.
func (e *Evaluation) SetScore(score float64, address string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.score = &score
	e.scoredBy = address
}

// Score returns the score and whether any verdict set one.
func (e *Evaluation) Score() (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.score == nil {
		return 0, false
	}
	return *e.score, true
}

// ScoredBy returns the address of the verdict that set the score.
func (e *Evaluation) ScoredBy() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scoredBy
}

// SetReason records the final reason.
func (e *Evaluation) SetReason(r string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reason = r
}

// Reason returns the final reason.
func (e *Evaluation) Reason() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reason
}
