package diag

import (
	"errors"
	"fmt"
)

// Error is a fatal generator condition.
type Error struct {
	Code    Code
	Subject string // offending function, provider label, file...
	Message string
	Err     error
}

// Errorf builds an *Error with a formatted message.
func Errorf(code Code, subject, format string, args ...any) *Error {
	return &Error{Code: code, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches an underlying cause.
func Wrap(code Code, subject string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Subject: subject, Message: err.Error(), Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Subject == "" {
		return fmt.Sprintf("%s: %s", e.Code.ID(), e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code.ID(), e.Subject, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches another *Error or a bare Code with the same code.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	switch t := target.(type) {
	case Code:
		return e.Code == t
	case *Error:
		return t != nil && e.Code == t.Code
	}
	return false
}

// CodeOf extracts the code of the first *Error in err's chain.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return UnknownCode
}
