// Package judgetest provides a scripted judge for tests.
package judgetest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/specialistvlad/dagjudge/internal/judge"
)

// Call is one recorded invocation.
type Call struct {
	Prompt string
	Schema *judge.Schema
}

type rule struct {
	contains string
	text     string
	err      error
}

// Judge answers prompts from a script. A prompt is matched against rules in
// registration order; the first rule whose substring occurs in the prompt wins.
type Judge struct {
	name          string
	rejectSchemas bool
	delay         time.Duration

	mu    sync.Mutex
	rules []rule
	calls []Call
}

var _ judge.Judge = (*Judge)(nil)

// Option configures a Judge.
type Option func(*Judge)

// WithName sets the judge name.
func WithName(name string) Option {
	return func(j *Judge) { j.name = name }
}

// RejectingSchemas makes the judge answer every schema constrained call with
// judge.ErrSchemaUnsupported. Free-text replies that are JSON objects are then
// wrapped in prose, the way chatty models answer.
func RejectingSchemas() Option {
	return func(j *Judge) { j.rejectSchemas = true }
}

// WithDelay makes every call sleep for d, or until the context is done.
func WithDelay(d time.Duration) Option {
	return func(j *Judge) { j.delay = d }
}

// New returns a generic scripted judge.
func New(opts ...Option) *Judge {
	j := &Judge{name: "scripted"}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// On scripts text as the reply to prompts containing substr.
func (j *Judge) On(substr, text string) *Judge {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.rules = append(j.rules, rule{contains: substr, text: text})
	return j
}

// OnError scripts err as the reply to prompts containing substr.
func (j *Judge) OnError(substr string, err error) *Judge {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.rules = append(j.rules, rule{contains: substr, err: err})
	return j
}

// Calls returns a copy of every recorded invocation.
func (j *Judge) Calls() []Call {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]Call(nil), j.calls...)
}

// CallsContaining counts recorded invocations whose prompt contains substr.
func (j *Judge) CallsContaining(substr string) int {
	n := 0
	for _, c := range j.Calls() {
		if strings.Contains(c.Prompt, substr) {
			n++
		}
	}
	return n
}

func (j *Judge) Name() string { return j.name }

func (j *Judge) Generate(ctx context.Context, prompt string, schema *judge.Schema) (string, error) {
	j.mu.Lock()
	j.calls = append(j.calls, Call{Prompt: prompt, Schema: schema})
	rules := j.rules
	j.mu.Unlock()

	if j.delay > 0 {
		select {
		case <-time.After(j.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if schema != nil && j.rejectSchemas {
		return "", judge.ErrSchemaUnsupported
	}

	for _, r := range rules {
		if !strings.Contains(prompt, r.contains) {
			continue
		}
		if r.err != nil {
			return "", r.err
		}
		if schema == nil && j.rejectSchemas && strings.HasPrefix(strings.TrimSpace(r.text), "{") {
			return "Sure! Here is the JSON you asked for:\n```json\n" + r.text + "\n```\nLet me know if you need anything else.", nil
		}
		return r.text, nil
	}
	return "", fmt.Errorf("judgetest: no scripted reply for prompt %q", truncate(prompt, 80))
}

// Native is a scripted judge using the native call convention. Every call
// costs CostPerCall.
type Native struct {
	*Judge
	CostPerCall float64
}

var _ judge.NativeJudge = (*Native)(nil)

// NewNative returns a native scripted judge.
func NewNative(costPerCall float64, opts ...Option) *Native {
	n := &Native{Judge: New(opts...), CostPerCall: costPerCall}
	n.rejectSchemas = false
	return n
}

// On scripts text as the reply to prompts containing substr.
func (n *Native) On(substr, text string) *Native {
	n.Judge.On(substr, text)
	return n
}

// OnError scripts err as the reply to prompts containing substr.
func (n *Native) OnError(substr string, err error) *Native {
	n.Judge.OnError(substr, err)
	return n
}

func (n *Native) GenerateWithCost(ctx context.Context, prompt string, schema *judge.Schema) (string, float64, error) {
	out, err := n.Judge.Generate(ctx, prompt, schema)
	if err != nil {
		return "", 0, err
	}
	return out, n.CostPerCall, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
