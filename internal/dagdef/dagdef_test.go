package dagdef

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/dagjudge/internal/dag"
	"github.com/specialistvlad/dagjudge/internal/judge/judgetest"
	"github.com/specialistvlad/dagjudge/internal/node"
	"github.com/specialistvlad/dagjudge/internal/testcase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Directory(t *testing.T) {
	t.Parallel()
	// Act
	defs, err := Load(context.Background(), "testdata/summary")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"summary_length"}, defs.MetricNames())
	settings, err := defs.Metric("summary_length")
	require.NoError(t, err)
	assert.Equal(t, "task.summarize", settings.Root)
	require.NotNil(t, settings.Threshold)
	assert.Equal(t, 0.8, *settings.Threshold)
	assert.Nil(t, settings.StrictMode)

	root, err := defs.Build("summary_length")
	require.NoError(t, err)
	g, err := dag.Build(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 5, g.Len())
	long, ok := g.Lookup("verdict.long")
	require.True(t, ok)
	require.NotNil(t, long.(*node.Verdict).GEval())
	assert.Equal(t, "Brevity", long.(*node.Verdict).GEval().Name)
}

func TestBuild_ReturnsFreshGraphs(t *testing.T) {
	t.Parallel()
	defs, err := Load(context.Background(), "testdata/summary")
	require.NoError(t, err)

	first, err := defs.Build("summary_length")
	require.NoError(t, err)
	second, err := defs.Build("summary_length")
	require.NoError(t, err)

	assert.NotSame(t, first, second)
}

func TestNewMetric_Measure(t *testing.T) {
	t.Parallel()
	// Arrange
	defs, err := Load(context.Background(), "testdata/summary")
	require.NoError(t, err)
	j := judgetest.New().
		On("DAG Traversal:", `{"reason": "Short."}`).
		On("How long is the summary?", `{"verdict": "medium", "reason": "Two sentences."}`).
		On("Summarize the actual output", "A summary. Another one.")
	m, err := defs.NewMetric("summary_length", j)
	require.NoError(t, err)

	// Act
	res, err := m.Measure(context.Background(), &testcase.TestCase{ActualOutput: "text"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 0.5, res.Score)
	assert.Equal(t, 0.8, res.Threshold)
	assert.False(t, res.Success)
	assert.Equal(t, "Short.", res.Reason)
}

func TestLoad_SingleFileFromTempDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "binary.hcl")
	src := `
metric "has_headings" {
  root        = binary_judgement.headings
  strict_mode = true
}

binary_judgement "headings" {
  criteria          = "Does the output contain headings?"
  evaluation_params = ["actual_output"]
  children          = [verdict.yes, verdict.no]
}

verdict "yes" {
  value = true
  score = 10
}

verdict "no" {
  value = false
  score = 0
}
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	defs, err := Load(context.Background(), path)

	require.NoError(t, err)
	root, err := defs.Build("has_headings")
	require.NoError(t, err)
	j, ok := root.(*node.BinaryJudgement)
	require.True(t, ok)
	assert.True(t, j.Verdicts()[0].Value.Equal(node.BoolVerdict(true)))
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		src     string
		wantErr string
		wantIs  error
	}{
		{
			name:    "no metric",
			src: `
verdict "a" {
  value = true
  score = 1
}`,
			wantErr: "no metric blocks",
		},
		{
			name: "duplicate block",
			src: `
metric "m" { root = verdict.a }
verdict "a" {
  value = true
  score = 1
}
verdict "a" {
  value = false
  score = 0
}`,
			wantErr: `Duplicate "verdict" block`,
		},
		{
			name: "undefined reference",
			src: `
metric "m" { root = task.missing }`,
			wantErr: "reference to undefined block task.missing",
		},
		{
			name: "task child of judgement",
			src: `
metric "m" { root = binary_judgement.j }
binary_judgement "j" {
  criteria = "c"
  children = [task.t, verdict.no]
}
task "t" {
  instructions = "i"
  output_label = "o"
}
verdict "no" {
  value = false
  score = 0
}`,
			wantErr: "may only have verdict children",
		},
		{
			name: "numeric verdict value",
			src: `
metric "m" { root = verdict.a }
verdict "a" {
  value = 3
  score = 1
}`,
			wantErr: "must be a bool or a string",
		},
		{
			name: "definition cycle",
			src: `
metric "m" { root = task.a }
task "a" {
  instructions = "i"
  output_label = "o"
  children     = [task.b]
}
task "b" {
  instructions = "i"
  output_label = "o"
  children     = [task.a]
}`,
			wantIs: dag.ErrCycle,
		},
		{
			name: "construction rule",
			src: `
metric "m" { root = binary_judgement.j }
binary_judgement "j" {
  criteria = "c"
  children = [verdict.a, verdict.b]
}
verdict "a" {
  value = true
  score = 1
}
verdict "b" {
  value = true
  score = 0
}`,
			wantIs: node.ErrInvalidNode,
		},
		{
			name: "unknown evaluation param",
			src: `
metric "m" { root = task.t }
task "t" {
  instructions      = "i"
  output_label      = "o"
  evaluation_params = ["vibes"]
}`,
			wantErr: `unknown evaluation parameter "vibes"`,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(context.Background(), "test.hcl", []byte(tc.src))
			require.Error(t, err)
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
			}
			if tc.wantIs != nil {
				assert.ErrorIs(t, err, tc.wantIs)
			}
		})
	}
}

func TestLoad_MissingPath(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
