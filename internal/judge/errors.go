package judge

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaUnsupported is returned by a generic judge that cannot honor a
	// schema constraint. Structured recovers from it with a single fallback.
	ErrSchemaUnsupported = errors.New("judge does not support schema constrained generation")
	// ErrExtraction is the kind of every failure to recover a structured
	// answer from judge output.
	ErrExtraction = errors.New("failed to extract structured output")
	// ErrInvocation is the kind of every failed judge call.
	ErrInvocation = errors.New("judge invocation failed")
	// ErrNilSchema is returned by Structured when no schema is given.
	ErrNilSchema = errors.New("structured generation requires a schema")
)

// ExtractionError carries the raw judge text that could not be parsed.
type ExtractionError struct {
	Raw string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %v; the judge returned an invalid JSON object, try a more capable model", ErrExtraction, e.Err)
}

func (e *ExtractionError) Unwrap() []error { return []error{ErrExtraction, e.Err} }

// InvocationError is a transport or provider failure surfaced by a judge.
type InvocationError struct {
	Judge string
	Err   error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrInvocation, e.Judge, e.Err)
}

func (e *InvocationError) Unwrap() []error { return []error{ErrInvocation, e.Err} }

func invocationErr(j Judge, err error) error {
	var ie *InvocationError
	if errors.As(err, &ie) {
		return err
	}
	return &InvocationError{Judge: j.Name(), Err: err}
}
