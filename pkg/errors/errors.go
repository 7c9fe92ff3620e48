// Package errors provides structured error handling for hconf.
//
// Every failure that can abort a run is reported as an *Error carrying a
// category, a message, the underlying cause and free-form details. The CLI
// turns the category into the exit message; the pipeline logs the details.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
)

// ErrorType names the category a failure belongs to.
type ErrorType string

// Categories reported by hconf.
const (
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeValidation ErrorType = "validation" // invalid run configuration
	ErrorTypeNotFound   ErrorType = "not_found"  // unknown format, sink or profile
	ErrorTypeConfig     ErrorType = "config"     // broken profile definitions, e.g. a cycle
	ErrorTypeData       ErrorType = "data"       // unparseable input
	ErrorTypeFile       ErrorType = "file"
	ErrorTypeConnection ErrorType = "connection" // object store failures
	ErrorTypeCapability ErrorType = "capability" // unsupported format, scheme or codec
)

// Error is a categorized failure with an optional cause.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame is one caller recorded when the error was created.
type StackFrame struct {
	Function string
	File     string
	Line     int
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Type) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// WithDetail attaches key=value to the error and returns it for chaining.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = map[string]interface{}{}
	}
	e.Details[key] = value
	return e
}

// DetailKeys returns the detail keys in sorted order.
func (e *Error) DetailKeys() []string {
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// New returns an error of the given category.
func New(errType ErrorType, message string) *Error {
	return &Error{Type: errType, Message: message, Stack: callers(3)}
}

// Newf is New with a formatted message.
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: errType, Message: fmt.Sprintf(format, args...), Stack: callers(3)}
}

// Wrap records err as the cause of a new categorized error. A nil err
// yields nil. When err already carries a stack, that stack is kept.
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}
	wrapped := &Error{Type: errType, Message: message, Cause: err}
	if inner, ok := as(err); ok {
		wrapped.Stack = inner.Stack
	} else {
		wrapped.Stack = callers(3)
	}
	return wrapped
}

// IsType reports whether the outermost *Error in err's chain has the given
// category.
func IsType(err error, errType ErrorType) bool {
	e, ok := as(err)
	return ok && e.Type == errType
}

// TypeOf returns the category of the outermost *Error in err's chain, or
// ErrorTypeInternal when there is none.
func TypeOf(err error) ErrorType {
	if e, ok := as(err); ok {
		return e.Type
	}
	return ErrorTypeInternal
}

func as(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

const maxStackDepth = 32

// callers records up to maxStackDepth frames, skipping the first skip
// (runtime.Callers itself counts as one).
func callers(skip int) []StackFrame {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return nil
	}

	stack := make([]StackFrame, 0, n)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		stack = append(stack, StackFrame{Function: f.Function, File: f.File, Line: f.Line})
		if !more {
			break
		}
	}
	return stack
}
