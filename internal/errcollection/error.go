package errcollection

import (
	"strings"
)

const delimiter = "; "

// ErrorCollection gathers errors from independent steps so a batch can
// continue and still report every failure at the end.
type ErrorCollection struct {
	errorList []error
}

// Add inserts err into the collection. Nil errors are ignored.
func (e *ErrorCollection) Add(err error) {
	if err == nil {
		return
	}
	e.errorList = append(e.errorList, err)
}

// Len returns the number of collected errors.
func (e *ErrorCollection) Len() int {
	return len(e.errorList)
}

// Errors returns the collected errors in insertion order.
func (e *ErrorCollection) Errors() []error {
	return append([]error(nil), e.errorList...)
}

// GetErrIfAny returns an error combining every collected message, or nil.
// A single collected error is returned as is; several are returned as a
// MultiError that errors.Is and errors.As see through.
func (e *ErrorCollection) GetErrIfAny() error {
	switch len(e.errorList) {
	case 0:
		return nil
	case 1:
		return e.errorList[0]
	}
	return &MultiError{errs: e.Errors()}
}

// MultiError joins several collected errors.
type MultiError struct {
	errs []error
}

func (m *MultiError) Error() string {
	msgs := make([]string, len(m.errs))
	for i, err := range m.errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, delimiter)
}

// Unwrap exposes every collected error.
func (m *MultiError) Unwrap() []error {
	return m.errs
}
