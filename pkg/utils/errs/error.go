package errs

import (
	"errors"
	"fmt"
	"strings"
)

// CustomError represents a custom error with additional arguments and wrapping capability.
type CustomError struct {
	message string
	args    map[string]interface{}
	wrapped error
}

// New creates a new CustomError instance.
func New(message string) *CustomError {
	return &CustomError{
		message: message,
		args:    make(map[string]interface{}),
	}
}

// Error implements the error interface.
func (e *CustomError) Error() string {
	return e.fullErrorString()
}

// Arg adds an argument to the error.
func (e *CustomError) Arg(key string, value interface{}) *CustomError {
	e.args[key] = value
	return e
}

// Wrap wraps another error (can be of the same type or a standard error).
func (e *CustomError) Wrap(err error) *CustomError {
	if err != nil {
		e.wrapped = err
	}
	return e
}

// Unwrap returns the wrapped error if any.
func (e *CustomError) Unwrap() error {
	return e.wrapped
}

// fullErrorString builds the error string in the format
// "{msg: <message>, args: <args>, wrappedError: {<wrapped error>}}".
func (e *CustomError) fullErrorString() string {
	var builder strings.Builder

	builder.WriteString("{msg: ")
	builder.WriteString(e.message)

	if len(e.args) > 0 {
		builder.WriteString(fmt.Sprintf(", args: %v", e.args))
	}

	if e.wrapped != nil {
		var wrappedErr *CustomError
		if errors.As(e.wrapped, &wrappedErr) {
			builder.WriteString(fmt.Sprintf(", wrappedError: %s", wrappedErr.fullErrorString()))
		} else {
			builder.WriteString(fmt.Sprintf(", wrappedError: {%v}", e.wrapped.Error()))
		}
	}

	builder.WriteString("}")

	return builder.String()
}
