package testcase

import (
	"fmt"
	"strings"
)

// Param names one semantic role of a test case.
type Param string

const (
	Input            Param = "input"
	ActualOutput     Param = "actual_output"
	ExpectedOutput   Param = "expected_output"
	Context          Param = "context"
	RetrievalContext Param = "retrieval_context"
	ToolsCalled      Param = "tools_called"
	ExpectedTools    Param = "expected_tools"
)

// labels holds the human-readable names used when a parameter is rendered
// into a prompt.
var labels = map[Param]string{
	Input:            "Input",
	ActualOutput:     "Actual Output",
	ExpectedOutput:   "Expected Output",
	Context:          "Context",
	RetrievalContext: "Retrieval Context",
	ToolsCalled:      "Tools Called",
	ExpectedTools:    "Expected Tools",
}

// AllParams lists every known parameter in canonical order.
func AllParams() []Param {
	return []Param{Input, ActualOutput, ExpectedOutput, Context, RetrievalContext, ToolsCalled, ExpectedTools}
}

// Label returns the prompt label for p. Unknown parameters render as their raw name.
func (p Param) Label() string {
	if l, ok := labels[p]; ok {
		return l
	}
	return string(p)
}

// Valid reports whether p is one of the known parameters.
func (p Param) Valid() bool {
	_, ok := labels[p]
	return ok
}

// ParseParam converts a configuration string such as "actual_output" into a Param.
func ParseParam(s string) (Param, error) {
	p := Param(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown evaluation parameter %q", s)
	}
	return p, nil
}

// ParseParams converts a list of configuration strings, failing on the first unknown one.
func ParseParams(ss []string) ([]Param, error) {
	if len(ss) == 0 {
		return nil, nil
	}
	out := make([]Param, 0, len(ss))
	for _, s := range ss {
		p, err := ParseParam(s)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
