package auditlog

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/specialistvlad/dagjudge/internal/node"
	"github.com/stretchr/testify/assert"
)

func TestEntryRender(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		entry Entry
		want  string
	}{
		{
			name:  "task",
			entry: Entry{Kind: node.KindTask, Depth: 0, Instructions: "Summarize", OutputLabel: "Summary", Output: "short"},
			want:  "______________________\n| TaskNode | Level == 0 |\n*******************************\nInstructions:\nSummarize\n\nSummary:\nshort\n",
		},
		{
			name:  "binary",
			entry: Entry{Kind: node.KindBinaryJudgement, Depth: 1, Criteria: "c", Verdict: "True", Reason: "r"},
			want:  "__________________________________\n| BinaryJudgementNode | Level == 1 |\n************************************************\nCriteria:\nc\n\nVerdict: True\nReason: r\n",
		},
		{
			name:  "verdict",
			entry: Entry{Kind: node.KindVerdict, Depth: 2, Verdict: "short", ScoringMode: "Deterministic"},
			want:  "________________________\n| VerdictNode | Level == 2 |\n**********************************\nVerdict: short\nType: Deterministic",
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.entry.Render())
		})
	}
}

func TestLogConcurrentAppend(t *testing.T) {
	t.Parallel()
	var l Log
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Append(Entry{Kind: node.KindVerdict, Depth: i})
		}(i)
	}
	wg.Wait()

	entries := l.Entries()
	assert.Equal(t, 50, l.Len())
	for i, e := range entries {
		assert.Equal(t, i, e.Seq)
	}
	depths := make([]int, len(entries))
	for i, e := range entries {
		depths[i] = e.Depth
	}
	want := make([]int, 50)
	for i := range want {
		want[i] = i
	}
	if diff := cmp.Diff(want, depths, cmpopts.SortSlices(func(a, b int) bool { return a < b })); diff != "" {
		t.Errorf("depths mismatch (-want +got):\n%s", diff)
	}
}

func TestLogRenderJoinsBlocks(t *testing.T) {
	t.Parallel()
	var l Log
	l.Append(Entry{Kind: node.KindVerdict, Verdict: "a", ScoringMode: "Deterministic"})
	l.Append(Entry{Kind: node.KindVerdict, Verdict: "b", ScoringMode: "GEval"})

	out := l.Render()
	assert.Contains(t, out, "Type: Deterministic\n\n________________________")
	assert.Len(t, l.Blocks(), 2)
}
