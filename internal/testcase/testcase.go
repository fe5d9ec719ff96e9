package testcase

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ToolCall records a single tool invocation made (or expected) by the system under test.
type ToolCall struct {
	Name            string         `yaml:"name" json:"name"`
	Description     string         `yaml:"description,omitempty" json:"description,omitempty"`
	Reasoning       string         `yaml:"reasoning,omitempty" json:"reasoning,omitempty"`
	InputParameters map[string]any `yaml:"input_parameters,omitempty" json:"input_parameters,omitempty"`
	Output          any            `yaml:"output,omitempty" json:"output,omitempty"`
}

// String renders the canonical form used when a tool call is placed in a prompt.
// Map keys are emitted in sorted order so the rendering is stable.
func (tc ToolCall) String() string {
	var sb strings.Builder
	sb.WriteString("ToolCall(\n")
	fmt.Fprintf(&sb, "    name=%q", tc.Name)
	if tc.Description != "" {
		fmt.Fprintf(&sb, ",\n    description=%q", tc.Description)
	}
	if tc.Reasoning != "" {
		fmt.Fprintf(&sb, ",\n    reasoning=%q", tc.Reasoning)
	}
	if len(tc.InputParameters) > 0 {
		keys := make([]string, 0, len(tc.InputParameters))
		for k := range tc.InputParameters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%q: %v", k, tc.InputParameters[k]))
		}
		fmt.Fprintf(&sb, ",\n    input_parameters={%s}", strings.Join(parts, ", "))
	}
	if tc.Output != nil {
		fmt.Fprintf(&sb, ",\n    output=%v", tc.Output)
	}
	sb.WriteString("\n)")
	return sb.String()
}

// TestCase is the read-only input of one evaluation pass.
type TestCase struct {
	Name             string     `yaml:"name,omitempty" json:"name,omitempty"`
	Input            string     `yaml:"input" json:"input"`
	ActualOutput     string     `yaml:"actual_output" json:"actual_output"`
	ExpectedOutput   string     `yaml:"expected_output,omitempty" json:"expected_output,omitempty"`
	Context          []string   `yaml:"context,omitempty" json:"context,omitempty"`
	RetrievalContext []string   `yaml:"retrieval_context,omitempty" json:"retrieval_context,omitempty"`
	ToolsCalled      []ToolCall `yaml:"tools_called,omitempty" json:"tools_called,omitempty"`
	ExpectedTools    []ToolCall `yaml:"expected_tools,omitempty" json:"expected_tools,omitempty"`
}

// Value renders the value of p for use in a prompt. The boolean is false when
// the case carries no value for p.
func (tc *TestCase) Value(p Param) (string, bool) {
	switch p {
	case Input:
		return tc.Input, tc.Input != ""
	case ActualOutput:
		return tc.ActualOutput, tc.ActualOutput != ""
	case ExpectedOutput:
		return tc.ExpectedOutput, tc.ExpectedOutput != ""
	case Context:
		return renderStrings(tc.Context), len(tc.Context) > 0
	case RetrievalContext:
		return renderStrings(tc.RetrievalContext), len(tc.RetrievalContext) > 0
	case ToolsCalled:
		return renderToolCalls(tc.ToolsCalled), len(tc.ToolsCalled) > 0
	case ExpectedTools:
		return renderToolCalls(tc.ExpectedTools), len(tc.ExpectedTools) > 0
	default:
		return "", false
	}
}

// Missing returns the parameters from params that the case has no value for,
// without duplicates and in first-seen order.
func (tc *TestCase) Missing(params []Param) []Param {
	var missing []Param
	seen := make(map[Param]struct{}, len(params))
	for _, p := range params {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		if _, ok := tc.Value(p); !ok {
			missing = append(missing, p)
		}
	}
	return missing
}

func renderStrings(ss []string) string {
	if len(ss) == 0 {
		return "[]"
	}
	quoted := make([]string, len(ss))
	for i, s := range ss {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func renderToolCalls(calls []ToolCall) string {
	if len(calls) == 0 {
		return "[]"
	}
	parts := make([]string, len(calls))
	for i, c := range calls {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Load reads a single test case from a YAML file.
func Load(path string) (*TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read test case %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a test case from YAML bytes. Unknown keys are rejected.
func Parse(data []byte) (*TestCase, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var tc TestCase
	if err := dec.Decode(&tc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("failed to decode test case: document is empty")
		}
		return nil, fmt.Errorf("failed to decode test case: %w", err)
	}
	return &tc, nil
}
