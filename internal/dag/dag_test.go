package dag

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/dagjudge/internal/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verdict(t *testing.T, name string, v node.VerdictValue, score int) *node.Verdict {
	t.Helper()
	n, err := node.NewVerdict(node.VerdictSpec{Name: name, Value: v, Score: node.Ptr(score)})
	require.NoError(t, err)
	return n
}

func binary(t *testing.T, name string) *node.BinaryJudgement {
	t.Helper()
	j, err := node.NewBinaryJudgement(node.BinaryJudgementSpec{
		Name:     name,
		Criteria: "c",
		Children: []*node.Verdict{
			verdict(t, "", node.BoolVerdict(true), 10),
			verdict(t, "", node.BoolVerdict(false), 0),
		},
	})
	require.NoError(t, err)
	return j
}

func task(t *testing.T, name string, children ...node.Node) *node.Task {
	t.Helper()
	n, err := node.NewTask(node.TaskSpec{Name: name, Instructions: "i", OutputLabel: name, Children: children})
	require.NoError(t, err)
	return n
}

func TestBuild_Diamond(t *testing.T) {
	t.Parallel()
	// Arrange: root -> a, b -> judge
	j := binary(t, "has_headings")
	a := task(t, "a", j)
	b := task(t, "b", j)
	root := task(t, "root", a, b)

	// Act
	g, err := Build(context.Background(), root)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 6, g.Len())
	assert.Same(t, root, g.Root())
	want := []string{
		"task.root", "task.a", "binary_judgement.has_headings", "verdict[0]", "verdict[1]", "task.b",
	}
	got := make([]string, 0, g.Len())
	for _, n := range g.Nodes() {
		got = append(got, g.Address(n))
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("addresses mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, g.MinDepth(j))
	deps, err := g.Dependencies("binary_judgement.has_headings")
	require.NoError(t, err)
	assert.Equal(t, []string{"task.a", "task.b"}, deps)
	children, err := g.Dependents("task.root")
	require.NoError(t, err)
	assert.Equal(t, []string{"task.a", "task.b"}, children)
	assert.Len(t, g.Verdicts(), 2)
	_, err = g.Dependencies("task.nope")
	assert.ErrorContains(t, err, "node not found")
}

func TestBuild_DuplicateNames(t *testing.T) {
	t.Parallel()
	root := task(t, "x", task(t, "x"))

	g, err := Build(context.Background(), root)

	require.NoError(t, err)
	n, ok := g.Lookup("task.x#2")
	require.True(t, ok)
	assert.NotSame(t, root, n)
}

func TestBuild_ParentOutsideGraph(t *testing.T) {
	t.Parallel()
	shared := binary(t, "shared")
	root := task(t, "root", shared)
	_ = task(t, "orphan", shared) // never reachable from root

	_, err := Build(context.Background(), root)

	assert.ErrorIs(t, err, ErrInvalidGraph)
	assert.ErrorContains(t, err, "would never run")
}

func TestBuild_RootWithIncomingEdge(t *testing.T) {
	t.Parallel()
	inner := task(t, "inner")
	_ = task(t, "outer", inner)

	_, err := Build(context.Background(), inner)

	assert.ErrorIs(t, err, ErrInvalidGraph)
	assert.ErrorContains(t, err, "incoming edges")
}

func TestBuild_RejectsExecutedGraph(t *testing.T) {
	t.Parallel()
	root := task(t, "root")
	root.Join().Arrive()

	_, err := Build(context.Background(), root)

	assert.ErrorIs(t, err, ErrInvalidGraph)
	assert.ErrorContains(t, err, "single-use")
}

func TestBuild_NilRoot(t *testing.T) {
	t.Parallel()
	_, err := Build(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidGraph)
}
