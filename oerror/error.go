package oerror

import "fmt"

type OomphError struct {
	Err string
}

// New returns an *OomphError with a message formatted from the format and arguments passed.
func New(format string, args ...any) *OomphError {
	if len(args) == 0 {
		return &OomphError{Err: format}
	}
	return &OomphError{Err: fmt.Sprintf(format, args...)}
}

func (e *OomphError) Error() string {
	return e.Err
}
