package judge

import (
	"fmt"
	"slices"
	"strings"
)

// FieldType is the JSON type of a schema field.
type FieldType int

const (
	FieldString FieldType = iota
	FieldBoolean
	FieldNumber
	FieldStringList
)

func (t FieldType) String() string {
	switch t {
	case FieldString:
		return "string"
	case FieldBoolean:
		return "boolean"
	case FieldNumber:
		return "number"
	case FieldStringList:
		return "array of strings"
	default:
		return "unknown"
	}
}

// Field is one required property of a structured answer.
type Field struct {
	Name        string
	Type        FieldType
	Description string
	// AllowedValues restricts a string field to a fixed set of labels.
	AllowedValues []string
	// Min and Max bound a number field when Bounded is set.
	Bounded  bool
	Min, Max float64
}

// Schema is a data-level description of the JSON object a judge must return.
// Every field is required and no other properties are allowed.
type Schema struct {
	Name   string
	Fields []Field
}

// Field returns the named field.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Check verifies that obj, a decoded JSON object, satisfies the schema.
func (s *Schema) Check(obj map[string]any) error {
	for _, f := range s.Fields {
		v, ok := obj[f.Name]
		if !ok {
			return fmt.Errorf("missing required field %q", f.Name)
		}
		if err := f.check(v); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
	}
	return nil
}

func (f Field) check(v any) error {
	switch f.Type {
	case FieldString:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
		if len(f.AllowedValues) > 0 && !slices.Contains(f.AllowedValues, s) {
			return fmt.Errorf("value %q is not one of [%s]", s, strings.Join(f.AllowedValues, ", "))
		}
	case FieldBoolean:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("expected boolean, got %T", v)
		}
	case FieldNumber:
		n, ok := v.(float64)
		if !ok {
			return fmt.Errorf("expected number, got %T", v)
		}
		if f.Bounded && (n < f.Min || n > f.Max) {
			return fmt.Errorf("value %v is outside [%v, %v]", n, f.Min, f.Max)
		}
	case FieldStringList:
		items, ok := v.([]any)
		if !ok {
			return fmt.Errorf("expected array, got %T", v)
		}
		for i, item := range items {
			if _, ok := item.(string); !ok {
				return fmt.Errorf("item %d: expected string, got %T", i, item)
			}
		}
	default:
		return fmt.Errorf("unsupported field type %d", f.Type)
	}
	return nil
}

// BinaryVerdictSchema describes {"verdict": bool, "reason": string}.
func BinaryVerdictSchema() *Schema {
	return &Schema{
		Name: "binary_judgement_verdict",
		Fields: []Field{
			{Name: "verdict", Type: FieldBoolean, Description: "Whether the criteria is met."},
			{Name: "reason", Type: FieldString, Description: "Why the verdict was chosen."},
		},
	}
}

// NonBinaryVerdictSchema describes {"verdict": one of labels, "reason": string}.
func NonBinaryVerdictSchema(labels []string) *Schema {
	return &Schema{
		Name: "non_binary_judgement_verdict",
		Fields: []Field{
			{
				Name:          "verdict",
				Type:          FieldString,
				Description:   "The option that best matches the criteria.",
				AllowedValues: slices.Clone(labels),
			},
			{Name: "reason", Type: FieldString, Description: "Why the verdict was chosen."},
		},
	}
}

// ReasonSchema describes {"reason": string}.
func ReasonSchema() *Schema {
	return &Schema{
		Name: "reason",
		Fields: []Field{
			{Name: "reason", Type: FieldString, Description: "Concise explanation of the score."},
		},
	}
}

// StepsSchema describes {"steps": [string]}.
func StepsSchema() *Schema {
	return &Schema{
		Name: "evaluation_steps",
		Fields: []Field{
			{Name: "steps", Type: FieldStringList, Description: "Ordered evaluation steps."},
		},
	}
}

// ScoreReasonSchema describes {"score": number in [0, max], "reason": string}.
func ScoreReasonSchema(max float64) *Schema {
	return &Schema{
		Name: "score_reason",
		Fields: []Field{
			{Name: "score", Type: FieldNumber, Description: "The score.", Bounded: true, Min: 0, Max: max},
			{Name: "reason", Type: FieldString, Description: "Why the score was given."},
		},
	}
}
