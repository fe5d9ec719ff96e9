package node

import (
	"errors"
	"fmt"
)

// ErrInvalidNode is the kind of every construction failure.
var ErrInvalidNode = errors.New("invalid node")

// ConstructionError reports a structural invariant violated while building a
// node. A graph that fails construction is never usable.
type ConstructionError struct {
	Kind Kind
	Name string
	Msg  string
}

func (e *ConstructionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Name == "" {
		return fmt.Sprintf("%s: %s: %s", ErrInvalidNode, e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s %q: %s", ErrInvalidNode, e.Kind, e.Name, e.Msg)
}

func (e *ConstructionError) Unwrap() error { return ErrInvalidNode }

func invalidf(kind Kind, name, format string, args ...any) error {
	return &ConstructionError{Kind: kind, Name: name, Msg: fmt.Sprintf(format, args...)}
}
