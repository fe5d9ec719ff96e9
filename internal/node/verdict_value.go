package node

import "strconv"

// VerdictValue is the static label a Verdict node represents: a boolean for
// children of a BinaryJudgement, a string for children of a NonBinaryJudgement.
type VerdictValue struct {
	isBool bool
	b      bool
	s      string
}

// BoolVerdict returns a boolean verdict label.
func BoolVerdict(b bool) VerdictValue { return VerdictValue{isBool: true, b: b} }

// LabelVerdict returns a string verdict label.
func LabelVerdict(s string) VerdictValue { return VerdictValue{s: s} }

// IsBool reports whether the label is boolean.
func (v VerdictValue) IsBool() bool { return v.isBool }

// Bool returns the boolean label. It is false for string labels.
func (v VerdictValue) Bool() bool { return v.isBool && v.b }

// Label returns the string label. It is empty for boolean labels.
func (v VerdictValue) Label() string {
	if v.isBool {
		return ""
	}
	return v.s
}

// Equal reports whether both labels have the same type and value.
func (v VerdictValue) Equal(o VerdictValue) bool {
	if v.isBool != o.isBool {
		return false
	}
	if v.isBool {
		return v.b == o.b
	}
	return v.s == o.s
}

// String renders the label the way it appears in audit logs.
func (v VerdictValue) String() string {
	if v.isBool {
		if v.b {
			return "True"
		}
		return "False"
	}
	return v.s
}

// Raw returns the label as a bool or string.
func (v VerdictValue) Raw() any {
	if v.isBool {
		return v.b
	}
	return v.s
}

// GoString is used by %#v.
func (v VerdictValue) GoString() string {
	if v.isBool {
		return "BoolVerdict(" + strconv.FormatBool(v.b) + ")"
	}
	return "LabelVerdict(" + strconv.Quote(v.s) + ")"
}
