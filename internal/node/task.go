package node

import (
	"sync"

	"github.com/specialistvlad/dagjudge/internal/testcase"
)

// TaskSpec describes a Task node.
type TaskSpec struct {
	Name             string
	Instructions     string
	OutputLabel      string
	EvaluationParams []testcase.Param
	Children         []Node
}

// Task asks the judge to derive a text artifact (e.g. "extract the headings")
// that descendants receive as context under OutputLabel.
type Task struct {
	base
	Instructions     string
	OutputLabel      string
	EvaluationParams []testcase.Param
	children         []Node

	mu     sync.RWMutex
	output *string
}

var _ Node = (*Task)(nil)

// NewTask validates spec and wires the task to its children.
func NewTask(spec TaskSpec) (*Task, error) {
	for i, child := range spec.Children {
		if child == nil {
			return nil, invalidf(KindTask, spec.Name, "child %d is nil", i)
		}
		if child.Kind() == KindVerdict {
			return nil, invalidf(KindTask, spec.Name, "a TaskNode must not have a VerdictNode as one of its children")
		}
	}
	for _, p := range spec.EvaluationParams {
		if !p.Valid() {
			return nil, invalidf(KindTask, spec.Name, "unknown evaluation parameter %q", p)
		}
	}

	t := &Task{
		base:             base{name: spec.Name, link: joinedLink()},
		Instructions:     spec.Instructions,
		OutputLabel:      spec.OutputLabel,
		EvaluationParams: append([]testcase.Param(nil), spec.EvaluationParams...),
		children:         append([]Node(nil), spec.Children...),
	}
	link(t, t.children)
	return t, nil
}

func (t *Task) Kind() Kind        { return KindTask }
func (t *Task) Children() []Node { return t.children }

// Output returns the generated artifact and whether it has been produced yet.
func (t *Task) Output() (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.output == nil {
		return "", false
	}
	return *t.output, true
}

// SetOutput stores the generated artifact.
func (t *Task) SetOutput(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.output = &s
}
