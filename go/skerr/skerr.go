// Package skerr provides errors that carry a call stack, in the style
// used throughout this repository: every error that crosses a package
// boundary is produced by Fmt, Wrap, or Wrapf so that a failure can be
// traced back to where it originated without a debugger attached.
package skerr

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// StackTrace is a single call-site captured by CallStack.
type StackTrace struct {
	File string
	Line int
}

// String renders a StackTrace as "file.go:line".
func (s StackTrace) String() string {
	return fmt.Sprintf("%s:%d", s.File, s.Line)
}

// CallStack captures up to depth call frames, skipping skip frames above
// the caller of CallStack itself. With skip 0, frame 0 is the function
// that called CallStack.
func CallStack(depth, skip int) []StackTrace {
	frames := make([]StackTrace, 0, depth)
	// +1: skip this function's own frame.
	for i := 0; i < depth; i++ {
		_, file, line, ok := runtime.Caller(skip + i + 1)
		if !ok {
			break
		}
		frames = append(frames, StackTrace{File: filepath.Base(file), Line: line})
	}
	return frames
}

// withStack wraps an error with the call stack captured at the point it
// was created or first wrapped, plus an optional context message.
type withStack struct {
	cause   error
	message string
	stack   []StackTrace
}

func (e *withStack) Error() string {
	var b strings.Builder
	if e.message != "" {
		b.WriteString(e.message)
		b.WriteString(". ")
	} else {
		b.WriteString(e.cause.Error())
		b.WriteString(". ")
	}
	b.WriteString("At ")
	for i, f := range e.stack {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(f.String())
	}
	return b.String()
}

func (e *withStack) Unwrap() error { return e.cause }

// Unwrap returns the innermost error beneath any skerr wrapping, or err
// itself if it was not produced by this package.
func Unwrap(err error) error {
	for {
		ws, ok := err.(*withStack)
		if !ok {
			return err
		}
		err = ws.cause
	}
}

const stackDepth = 8

// Fmt creates a new error, formatted like fmt.Errorf, annotated with the
// call stack of its creation site.
func Fmt(format string, args ...interface{}) error {
	return &withStack{
		cause:   fmt.Errorf(format, args...),
		message: fmt.Sprintf(format, args...),
		stack:   CallStack(stackDepth, 1),
	}
}

// Wrap annotates err with the call stack of the wrap site. err is
// preserved for errors.Is/errors.As via Unwrap.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return &withStack{
		cause: err,
		stack: CallStack(stackDepth, 1),
	}
}

// Wrapf is like Wrap but prepends a formatted context message, e.g.
// skerr.Wrapf(err, "loading dataset %s", name).
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	return &withStack{
		cause:   err,
		message: fmt.Sprintf("%s: %s", msg, err.Error()),
		stack:   CallStack(stackDepth, 1),
	}
}

// Is reports whether target is somewhere in err's chain, accounting for
// skerr's own wrapping as well as the standard errors.Is chain.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
