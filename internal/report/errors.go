package report

import (
	"errors"
	"fmt"
)

// ErrMalformedReport matches every *MalformedReportError via errors.Is.
var ErrMalformedReport = errors.New("malformed report")

// MalformedReportError describes why a report document could not be parsed.
// Index is the offending element of the top-level notices array, or -1 when
// the problem is with the document itself.
type MalformedReportError struct {
	Index  int
	Field  string
	Reason string
	Err    error
}

func (e *MalformedReportError) Error() string {
	msg := "malformed report"
	if e.Index >= 0 {
		msg += fmt.Sprintf(": notices[%d]", e.Index)
	}
	if e.Field != "" {
		msg += fmt.Sprintf(": field %q", e.Field)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedReportError) Unwrap() error {
	return e.Err
}

func (e *MalformedReportError) Is(target error) bool {
	return target == ErrMalformedReport
}

func malformed(index int, field, reason string, err error) *MalformedReportError {
	return &MalformedReportError{Index: index, Field: field, Reason: reason, Err: err}
}
