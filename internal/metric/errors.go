package metric

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/dagjudge/internal/auditlog"
	"github.com/specialistvlad/dagjudge/internal/testcase"
)

var (
	// ErrNoScore is returned when a pass reached no Verdict node.
	ErrNoScore = errors.New("evaluation finished without reaching a verdict")
	// ErrMissingParams is returned when the test case lacks a parameter the graph uses.
	ErrMissingParams = errors.New("test case is missing required parameters")
)

// MissingParamsError lists the parameters the test case does not carry.
type MissingParamsError struct {
	Missing []testcase.Param
}

func (e *MissingParamsError) Error() string {
	labels := make([]string, len(e.Missing))
	for i, p := range e.Missing {
		labels[i] = p.Label()
	}
	return fmt.Sprintf("%s: %v", ErrMissingParams, labels)
}

func (e *MissingParamsError) Unwrap() error { return ErrMissingParams }

// EvaluationError is returned by Measure when a pass fails. It keeps what the
// pass logged before the failure.
type EvaluationError struct {
	Metric string
	RunID  string
	Log    []auditlog.Entry
	Err    error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("metric %q (run %s): %v", e.Metric, e.RunID, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// PartialLog returns the audit log entries recorded before err, if err came
// from Measure.
func PartialLog(err error) []auditlog.Entry {
	var eerr *EvaluationError
	if errors.As(err, &eerr) {
		return eerr.Log
	}
	return nil
}
