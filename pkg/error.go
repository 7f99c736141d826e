package pkg

import (
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// Error aggregates independent failures.
//
// The CLI uses it to report every failing input file instead of only the
// first.
type Error []error

// MakeError constructs an Error from the given errors, in order.
// Nil errors are skipped; an empty Error is returned if nothing remains.
// Callers should check the length before returning it as an error.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		if err != nil {
			e = append(e, err)
		}
	}

	return e
}

// Error returns the messages of all errors separated by "; ".
func (e Error) Error() string {
	var sb strings.Builder

	for i, err := range slices.All(e) {
		if i > 0 {
			sb.WriteString("; ")
		}

		sb.WriteString(err.Error())
	}

	return sb.String()
}

// Unwrap returns the slice of errors contained in the receiver.
func (e Error) Unwrap() []error {
	return e
}

// LogValue groups the errors under their index so that structured
// attributes of each one survive logging.
func (e Error) LogValue() slog.Value {
	if len(e) == 1 {
		return slog.AnyValue(e[0])
	}

	attrs := make([]slog.Attr, len(e))
	for i, err := range e {
		attrs[i] = slog.Any(strconv.Itoa(i), err)
	}

	return slog.GroupValue(attrs...)
}
