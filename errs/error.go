package errs

import (
	"errors"
	"fmt"
)

// Application error codes. They map the failure modes of the services
// onto a small machine-readable vocabulary that the http layer can
// translate into status codes.
const (
	ECONFLICT     = "conflict"     // action conflicts with existing state
	EINTERNAL     = "internal"     // unexpected fault, details stay in the logs
	EINVALID      = "invalid"      // validation failed on user input
	ENOTFOUND     = "not_found"    // slug, username or id did not resolve
	EUNAUTHORIZED = "unauthorized" // caller may not perform this action
)

// Error is an application error carrying a machine-readable code and a
// human-readable message that is safe to show to the end user.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("blog error: code=%s message=%s", e.Code, e.Message)
}

// Errorf constructs an Error with the given code and formatted message.
func Errorf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps the application code of an error. Non-application
// errors count as internal faults.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps the user-facing message of an error.
// Non-application errors only get a generic message, their details
// must not leak out of the logs.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}
