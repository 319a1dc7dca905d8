package schema

import (
	"errors"
	"fmt"
	"strings"
)

// MismatchError reports a value that does not match its declared type.
type MismatchError struct {
	Variable string
	Expected string
	Reason   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("variable %q: declared %s: %s", e.Variable, e.Expected, e.Reason)
}

// AggregateError represents multiple mismatches.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d type errors:", len(e.Errors))
	for _, err := range e.Errors {
		b.WriteString("\n  - ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Mismatches returns every mismatch carried by err.
func Mismatches(err error) []*MismatchError {
	var out []*MismatchError
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		for _, e := range aggr.Errors {
			var m *MismatchError
			if errors.As(e, &m) {
				out = append(out, m)
			}
		}
		return out
	}
	var m *MismatchError
	if errors.As(err, &m) {
		out = append(out, m)
	}
	return out
}
