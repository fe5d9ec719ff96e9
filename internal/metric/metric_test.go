package metric

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/dagjudge/internal/geval"
	"github.com/specialistvlad/dagjudge/internal/judge"
	"github.com/specialistvlad/dagjudge/internal/judge/judgetest"
	"github.com/specialistvlad/dagjudge/internal/node"
	"github.com/specialistvlad/dagjudge/internal/scheduler"
	"github.com/specialistvlad/dagjudge/internal/testcase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var summaryCase = &testcase.TestCase{
	Input:        "Summarize the Go memory model.",
	ActualOutput: "Writes are visible after synchronization.",
}

// summaryLength builds summarize -> length -> {short, medium, long}.
func summaryLength() (node.Node, error) {
	var verdicts []*node.Verdict
	for _, v := range []struct {
		label string
		score int
	}{{"short", 10}, {"medium", 5}, {"long", 0}} {
		n, err := node.NewVerdict(node.VerdictSpec{Name: v.label, Value: node.LabelVerdict(v.label), Score: node.Ptr(v.score)})
		if err != nil {
			return nil, err
		}
		verdicts = append(verdicts, n)
	}
	length, err := node.NewNonBinaryJudgement(node.NonBinaryJudgementSpec{
		Name:     "length",
		Criteria: "How long is the summary?",
		Children: verdicts,
	})
	if err != nil {
		return nil, err
	}
	return node.NewTask(node.TaskSpec{
		Name:             "summarize",
		Instructions:     "Summarize the actual output in one sentence.",
		OutputLabel:      "Summary",
		EvaluationParams: []testcase.Param{testcase.ActualOutput},
		Children:         []node.Node{length},
	})
}

func summaryJudge(label string) *judgetest.Native {
	return judgetest.NewNative(0.01).
		On("DAG Traversal:", `{"reason": "The summary is a single short sentence."}`).
		On("How long is the summary?", `{"verdict": "`+label+`", "reason": "One sentence."}`).
		On("Summarize the actual output", "Visibility needs synchronization.")
}

func TestMeasure_SummaryLength(t *testing.T) {
	t.Parallel()
	for _, s := range []scheduler.Scheduler{scheduler.Sequential{}, scheduler.Parallel{}} {
		s := s
		t.Run(s.Name(), func(t *testing.T) {
			t.Parallel()
			// Arrange
			m, err := New("Summary Length", summaryLength, summaryJudge("short"), WithScheduler(s))
			require.NoError(t, err)

			// Act
			res, err := m.Measure(context.Background(), summaryCase)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, 1.0, res.Score)
			assert.True(t, res.Success)
			assert.Equal(t, "The summary is a single short sentence.", res.Reason)
			assert.Len(t, res.Log, 3)
			assert.Equal(t, "verdict.short", res.ScoredBy)
			assert.InDelta(t, 0.03, res.Cost, 1e-9)
			assert.Contains(t, res.VerboseLog, "| NonBinaryJudgementNode | Level == 1 |")
			assert.Contains(t, res.VerboseLog, "Verdict: short\nType: Deterministic")
			assert.NotEmpty(t, res.RunID)
		})
	}
}

func TestMeasure_FreshGraphPerPass(t *testing.T) {
	t.Parallel()
	j := summaryJudge("medium")
	m, err := New("Summary Length", summaryLength, j)
	require.NoError(t, err)

	first, err := m.Measure(context.Background(), summaryCase)
	require.NoError(t, err)
	second, err := m.Measure(context.Background(), summaryCase)
	require.NoError(t, err)

	assert.Equal(t, 0.5, first.Score)
	assert.Equal(t, first.Score, second.Score)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Len(t, second.Log, 3)
}

func TestMeasure_ThresholdAndStrictMode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		opts        []Option
		wantScore   float64
		wantSuccess bool
	}{
		{name: "default threshold", wantScore: 0.5, wantSuccess: true},
		{name: "higher threshold", opts: []Option{WithThreshold(0.6)}, wantScore: 0.5, wantSuccess: false},
		{name: "strict mode floors score", opts: []Option{WithStrictMode(true)}, wantScore: 0, wantSuccess: false},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			m, err := New("Summary Length", summaryLength, summaryJudge("medium"), append(tc.opts, WithReason(false))...)
			require.NoError(t, err)

			res, err := m.Measure(context.Background(), summaryCase)

			require.NoError(t, err)
			assert.Equal(t, tc.wantScore, res.Score)
			assert.Equal(t, tc.wantSuccess, res.Success)
			assert.Empty(t, res.Reason)
		})
	}
}

func TestMeasure_MissingParams(t *testing.T) {
	t.Parallel()
	j := summaryJudge("short")
	m, err := New("Summary Length", summaryLength, j)
	require.NoError(t, err)

	_, err = m.Measure(context.Background(), &testcase.TestCase{Input: "only input"})

	assert.ErrorIs(t, err, ErrMissingParams)
	assert.ErrorContains(t, err, "Actual Output")
	assert.Empty(t, j.Calls(), "fails before any judge call")
}

func TestMeasure_MissingGEvalParam(t *testing.T) {
	t.Parallel()
	// Arrange
	build := func() (node.Node, error) {
		fluent, err := node.NewVerdict(node.VerdictSpec{
			Name:  "fluent",
			Value: node.BoolVerdict(true),
			GEval: &geval.Spec{Name: "Faithfulness", Criteria: "Does it match?", EvaluationParams: []testcase.Param{testcase.ExpectedOutput}},
		})
		if err != nil {
			return nil, err
		}
		broken, err := node.NewVerdict(node.VerdictSpec{Name: "broken", Value: node.BoolVerdict(false), Score: node.Ptr(0)})
		if err != nil {
			return nil, err
		}
		return node.NewBinaryJudgement(node.BinaryJudgementSpec{
			Criteria:         "Is it English?",
			EvaluationParams: []testcase.Param{testcase.ActualOutput},
			Children:         []*node.Verdict{fluent, broken},
		})
	}
	j := judgetest.New()
	m, err := New("Faithful English", build, j)
	require.NoError(t, err)

	// Act
	_, err = m.Measure(context.Background(), summaryCase)

	// Assert
	var merr *MissingParamsError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, []testcase.Param{testcase.ExpectedOutput}, merr.Missing)
	assert.Empty(t, j.Calls(), "fails before any judge call")
}

func TestMeasure_NoVerdictReached(t *testing.T) {
	t.Parallel()
	build := func() (node.Node, error) {
		return node.NewTask(node.TaskSpec{Name: "lonely", Instructions: "Summarize the actual output", OutputLabel: "S"})
	}
	m, err := New("Lonely", build, summaryJudge("short"))
	require.NoError(t, err)

	_, err = m.Measure(context.Background(), summaryCase)

	assert.ErrorIs(t, err, ErrNoScore)
	assert.Len(t, PartialLog(err), 1)
}

func TestMeasure_FailureKeepsPartialLog(t *testing.T) {
	t.Parallel()
	j := judgetest.New(judgetest.RejectingSchemas()).
		On("How long is the summary?", "It is short, I think.").
		On("Summarize the actual output", "Visibility needs synchronization.")
	m, err := New("Summary Length", summaryLength, j)
	require.NoError(t, err)

	res, err := m.Measure(context.Background(), summaryCase)

	assert.Nil(t, res)
	assert.ErrorIs(t, err, judge.ErrExtraction)
	var eerr *EvaluationError
	require.True(t, errors.As(err, &eerr))
	assert.Equal(t, "Summary Length", eerr.Metric)
	require.Len(t, PartialLog(err), 1)
	assert.Equal(t, node.KindTask, PartialLog(err)[0].Kind)
}

func TestMeasure_ConstructionError(t *testing.T) {
	t.Parallel()
	build := func() (node.Node, error) {
		return node.NewBinaryJudgement(node.BinaryJudgementSpec{Criteria: "c"})
	}
	m, err := New("Broken", build, judgetest.New())
	require.NoError(t, err)

	_, err = m.Measure(context.Background(), summaryCase)

	assert.ErrorIs(t, err, node.ErrInvalidNode)
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()
	_, err := New("x", nil, judgetest.New())
	assert.Error(t, err)
	_, err = New("x", summaryLength, nil)
	assert.Error(t, err)
	_, err = New("x", summaryLength, judgetest.New(), WithThreshold(1.5))
	assert.ErrorContains(t, err, "threshold")

	m, err := New("x", summaryLength, judgetest.New(), WithStrictMode(true))
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.Threshold())
}
