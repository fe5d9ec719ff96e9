// Package auditlog records, in execution order, what every non-pruned node
// decided during an evaluation pass.
package auditlog

import (
	"fmt"
	"strings"
	"sync"

	"github.com/specialistvlad/dagjudge/internal/node"
)

// Entry is one node's contribution to the log. Only the fields relevant to
// Kind are set.
type Entry struct {
	Seq          int
	Kind         node.Kind
	Address      string
	Depth        int
	Criteria     string
	Instructions string
	OutputLabel  string
	Output       string
	Verdict      string
	Reason       string
	ScoringMode  string
}

// Render returns the human-readable block for the entry.
func (e Entry) Render() string {
	switch e.Kind {
	case node.KindBinaryJudgement, node.KindNonBinaryJudgement:
		underscores, stars := 34, 48
		if e.Kind == node.KindNonBinaryJudgement {
			underscores, stars = 37, 56
		}
		return fmt.Sprintf("%s\n| %s | Level == %d |\n%s\nCriteria:\n%s\n\nVerdict: %s\nReason: %s\n",
			strings.Repeat("_", underscores), e.Kind, e.Depth, strings.Repeat("*", stars),
			e.Criteria, e.Verdict, e.Reason)
	case node.KindTask:
		return fmt.Sprintf("______________________\n| TaskNode | Level == %d |\n*******************************\nInstructions:\n%s\n\n%s:\n%s\n",
			e.Depth, e.Instructions, e.OutputLabel, e.Output)
	case node.KindVerdict:
		return fmt.Sprintf("________________________\n| VerdictNode | Level == %d |\n**********************************\nVerdict: %s\nType: %s",
			e.Depth, e.Verdict, e.ScoringMode)
	default:
		return ""
	}
}

// Log is an append-only, concurrency-safe sequence of entries. The zero
// value is ready to use.
type Log struct {
	mu      sync.Mutex
	entries []Entry
}

// Append adds e and returns its sequence number.
func (l *Log) Append(e Entry) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.Seq = len(l.entries)
	l.entries = append(l.entries, e)
	return e.Seq
}

// Entries returns a snapshot of the log.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Blocks renders every entry.
func (l *Log) Blocks() []string {
	entries := l.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Render()
	}
	return out
}

// Render joins every rendered entry with blank lines.
func (l *Log) Render() string {
	return strings.Join(l.Blocks(), "\n\n")
}
