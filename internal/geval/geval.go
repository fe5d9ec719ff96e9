// Package geval implements the criteria based sub-evaluator a Verdict node
// can delegate its score to. The judge first turns the criteria into
// evaluation steps (unless steps are given), then grades the selected test
// case parameters against those steps on a 0-10 scale.
package geval

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/dagjudge/internal/ctxlog"
	"github.com/specialistvlad/dagjudge/internal/judge"
	"github.com/specialistvlad/dagjudge/internal/prompts"
	"github.com/specialistvlad/dagjudge/internal/testcase"
)

// maxScore is the top of the scale the judge grades on.
const maxScore = 10

// Spec is the declarative description of a sub-evaluator. When both Criteria
// and EvaluationSteps are set, Criteria wins and steps are generated.
type Spec struct {
	Name             string
	Criteria         string
	EvaluationSteps  []string
	EvaluationParams []testcase.Param
}

// Validate checks that the spec can be turned into an evaluator.
func (s Spec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("geval name is required")
	}
	if strings.TrimSpace(s.Criteria) == "" && len(s.EvaluationSteps) == 0 {
		return errors.New("either criteria or evaluation steps must be provided")
	}
	if len(s.EvaluationParams) == 0 {
		return errors.New("at least one evaluation parameter is required")
	}
	for _, p := range s.EvaluationParams {
		if !p.Valid() {
			return fmt.Errorf("unknown evaluation parameter %q", p)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (s Spec) Clone() Spec {
	s.EvaluationSteps = slices.Clone(s.EvaluationSteps)
	s.EvaluationParams = slices.Clone(s.EvaluationParams)
	return s
}

// Outcome is the result of one sub-evaluation.
type Outcome struct {
	// Score is normalized to [0, 1].
	Score float64
	// Reason is empty unless reasons were requested.
	Reason string
	Steps  []string
	Cost   float64
}

// SubEvaluator scores a test case independently of the enclosing graph.
type SubEvaluator interface {
	Measure(ctx context.Context, tc *testcase.TestCase) (Outcome, error)
}

// Factory builds a fresh sub-evaluator for one Verdict execution.
type Factory func(spec Spec, j judge.Judge, includeReason bool) SubEvaluator

// DefaultFactory builds judge backed evaluators.
func DefaultFactory(spec Spec, j judge.Judge, includeReason bool) SubEvaluator {
	return New(spec, j, includeReason)
}

// Evaluator is the judge backed SubEvaluator. An Evaluator is single-use.
type Evaluator struct {
	spec          Spec
	judge         judge.Judge
	includeReason bool
}

// New returns an evaluator for spec.
func New(spec Spec, j judge.Judge, includeReason bool) *Evaluator {
	return &Evaluator{spec: spec.Clone(), judge: j, includeReason: includeReason}
}

type stepsAnswer struct {
	Steps []string `json:"steps"`
}

type scoreAnswer struct {
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// Measure grades tc and returns the normalized score.
func (e *Evaluator) Measure(ctx context.Context, tc *testcase.TestCase) (Outcome, error) {
	ctx, logger := ctxlog.With(ctx, "geval", e.spec.Name)
	if err := e.spec.Validate(); err != nil {
		return Outcome{}, err
	}
	if missing := tc.Missing(e.spec.EvaluationParams); len(missing) > 0 {
		return Outcome{}, fmt.Errorf("geval %q: test case is missing %s", e.spec.Name, paramList(missing))
	}

	var out Outcome
	params := paramList(e.spec.EvaluationParams)

	steps := e.spec.EvaluationSteps
	if strings.TrimSpace(e.spec.Criteria) != "" {
		var ans stepsAnswer
		cost, err := judge.Structured(ctx, e.judge, prompts.EvaluationSteps(e.spec.Criteria, params), judge.StepsSchema(), &ans)
		out.Cost += cost
		if err != nil {
			return out, fmt.Errorf("geval %q: generating evaluation steps: %w", e.spec.Name, err)
		}
		steps = ans.Steps
		logger.Debug("Generated evaluation steps.", "count", len(steps))
	}
	out.Steps = slices.Clone(steps)

	var text strings.Builder
	for _, p := range e.spec.EvaluationParams {
		v, _ := tc.Value(p)
		fmt.Fprintf(&text, "%s:\n%s\n\n", p.Label(), v)
	}

	var ans scoreAnswer
	cost, err := judge.Structured(ctx, e.judge, prompts.GEvalScore(steps, text.String(), params), judge.ScoreReasonSchema(maxScore), &ans)
	out.Cost += cost
	if err != nil {
		return out, fmt.Errorf("geval %q: scoring: %w", e.spec.Name, err)
	}
	out.Score = ans.Score / maxScore
	if e.includeReason {
		out.Reason = ans.Reason
	}
	logger.Debug("Sub-evaluation finished.", "score", out.Score)
	return out, nil
}

// paramList renders params as "A", "A and B" or "A, B, and C".
func paramList(params []testcase.Param) string {
	labels := make([]string, len(params))
	for i, p := range params {
		labels[i] = p.Label()
	}
	switch len(labels) {
	case 0:
		return ""
	case 1:
		return labels[0]
	case 2:
		return labels[0] + " and " + labels[1]
	default:
		return strings.Join(labels[:len(labels)-1], ", ") + ", and " + labels[len(labels)-1]
	}
}
