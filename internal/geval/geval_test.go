package geval_test

import (
	"context"
	"testing"

	"github.com/specialistvlad/dagjudge/internal/geval"
	"github.com/specialistvlad/dagjudge/internal/judge/judgetest"
	"github.com/specialistvlad/dagjudge/internal/testcase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluator_GeneratesStepsFromCriteria(t *testing.T) {
	t.Parallel()
	// Arrange
	j := judgetest.NewNative(0.5).
		On("generate 3-4 concise evaluation steps", `{"steps": ["Read the output", "Check fluency"]}`).
		On("Evaluation Steps:", `{"score": 8, "reason": "Mostly fluent."}`)
	spec := geval.Spec{
		Name:             "Fluency",
		Criteria:         "Is the actual output fluent?",
		EvaluationParams: []testcase.Param{testcase.ActualOutput},
	}
	tc := &testcase.TestCase{Input: "q", ActualOutput: "A fluent answer."}

	// Act
	out, err := geval.New(spec, j, true).Measure(context.Background(), tc)

	// Assert
	require.NoError(t, err)
	assert.InDelta(t, 0.8, out.Score, 1e-9)
	assert.Equal(t, "Mostly fluent.", out.Reason)
	assert.Equal(t, []string{"Read the output", "Check fluency"}, out.Steps)
	assert.Equal(t, 1.0, out.Cost)
	assert.Equal(t, 1, j.CallsContaining("1. Read the output\n2. Check fluency\n"))
	assert.Equal(t, 1, j.CallsContaining("Actual Output:\nA fluent answer.\n"))
}

func TestEvaluator_UsesGivenSteps(t *testing.T) {
	t.Parallel()
	j := judgetest.New(judgetest.RejectingSchemas()).On("Evaluation Steps:", `{"score": 3, "reason": "Terse."}`)
	spec := geval.Spec{
		Name:             "Coverage",
		EvaluationSteps:  []string{"Compare with expected output"},
		EvaluationParams: []testcase.Param{testcase.ActualOutput, testcase.ExpectedOutput},
	}
	tc := &testcase.TestCase{ActualOutput: "a", ExpectedOutput: "b"}

	out, err := geval.New(spec, j, false).Measure(context.Background(), tc)

	require.NoError(t, err)
	assert.InDelta(t, 0.3, out.Score, 1e-9)
	assert.Empty(t, out.Reason, "reason is dropped unless requested")
	assert.Equal(t, 0, j.CallsContaining("generate 3-4 concise evaluation steps"))
	assert.Equal(t, 1, j.CallsContaining("Actual Output and Expected Output"))
}

func TestEvaluator_MissingParams(t *testing.T) {
	t.Parallel()
	spec := geval.Spec{Name: "n", Criteria: "c", EvaluationParams: []testcase.Param{testcase.ExpectedOutput}}

	_, err := geval.New(spec, judgetest.New(), true).Measure(context.Background(), &testcase.TestCase{ActualOutput: "x"})

	assert.ErrorContains(t, err, "Expected Output")
}

func TestEvaluator_ScoreOutOfRange(t *testing.T) {
	t.Parallel()
	j := judgetest.New().On("Evaluation Steps:", `{"score": 42, "reason": "?"}`)
	spec := geval.Spec{Name: "n", EvaluationSteps: []string{"s"}, EvaluationParams: []testcase.Param{testcase.ActualOutput}}

	_, err := geval.New(spec, j, true).Measure(context.Background(), &testcase.TestCase{ActualOutput: "x"})

	assert.Error(t, err)
}

func TestSpecValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		spec geval.Spec
		ok   bool
	}{
		{name: "criteria", spec: geval.Spec{Name: "n", Criteria: "c", EvaluationParams: []testcase.Param{testcase.Input}}, ok: true},
		{name: "steps", spec: geval.Spec{Name: "n", EvaluationSteps: []string{"s"}, EvaluationParams: []testcase.Param{testcase.Input}}, ok: true},
		{name: "no name", spec: geval.Spec{Criteria: "c", EvaluationParams: []testcase.Param{testcase.Input}}},
		{name: "no criteria or steps", spec: geval.Spec{Name: "n", EvaluationParams: []testcase.Param{testcase.Input}}},
		{name: "no params", spec: geval.Spec{Name: "n", Criteria: "c"}},
		{name: "bad param", spec: geval.Spec{Name: "n", Criteria: "c", EvaluationParams: []testcase.Param{"bogus"}}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.spec.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
