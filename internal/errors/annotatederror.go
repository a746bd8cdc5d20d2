// Package errors is a drop-in replacement for the standard errors package that annotates errors with the call site
// and structured logging attributes.
package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// annotatedError carries a message, the wrapped error, slog attributes and the source location where it was created.
type annotatedError struct {
	msg    string
	err    error
	attrs  []slog.Attr
	source string
}

func (e *annotatedError) Error() string {
	switch {
	case e.err == nil:
		return e.msg
	case e.msg == "":
		return e.err.Error()
	default:
		return e.msg + ": " + e.err.Error()
	}
}

func (e *annotatedError) Unwrap() error {
	return e.err
}

// callSite describes the function skip frames above the caller of callSite.
func callSite(skip int) string {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return ""
	}
	var function string
	if fn := runtime.FuncForPC(pc); fn != nil {
		function = fn.Name()
	}
	return formatSource(function, file, line)
}

func formatSource(function, file string, line int) string {
	if i := strings.LastIndex(function, "/"); i >= 0 {
		function = function[i+1:]
	}
	return fmt.Sprintf("%s %s:%d", function, file, line)
}

// New returns an error annotated with the call site and attrs.
//
// Use NewSentinel for package level sentinel errors that are compared with Is.
func New(msg string, attrs ...slog.Attr) error {
	return &annotatedError{msg: msg, err: nil, attrs: attrs, source: callSite(1)}
}

// NewSentinel returns a plain comparable error without call site information.
func NewSentinel(msg string) error {
	return stderrors.New(msg) //nolint:err113 // this is the sentinel constructor.
}

// Wrap annotates err with msg, the call site and attrs. Wrap returns nil if err is nil.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	return &annotatedError{msg: msg, err: err, attrs: attrs, source: callSite(1)}
}

// DecoratePanic converts a value recovered from a panic into an error pointing at the panicking line.
func DecoratePanic(excp any) error {
	if excp == nil {
		return nil
	}
	source := panicSite()
	if err, ok := excp.(error); ok {
		return &annotatedError{msg: "panic", err: err, attrs: nil, source: source}
	}
	return &annotatedError{msg: fmt.Sprintf("panic: %v", excp), err: nil, attrs: nil, source: source}
}

// panicSite finds the frame that called panic by looking for the frame after runtime.gopanic.
func panicSite() string {
	const maxDepth = 32
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(1, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	sawPanic := false
	for {
		frame, more := frames.Next()
		if sawPanic {
			return formatSource(frame.Function, frame.File, frame.Line)
		}
		if frame.Function == "runtime.gopanic" {
			sawPanic = true
		}
		if !more {
			break
		}
	}
	return callSite(2) //nolint:mnd // fall back to the caller of DecoratePanic.
}

// SlogError renders err as an "error" group containing the message, the annotations collected from the chain and
// the source of the innermost annotation. A nil error renders as an empty attribute that slog drops.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}

	var (
		annotations []any
		source      string
	)
	for cur := err; cur != nil; cur = stderrors.Unwrap(cur) {
		var ae *annotatedError
		if !stderrors.As(cur, &ae) {
			break
		}
		for _, a := range ae.attrs {
			annotations = append(annotations, a)
		}
		if ae.source != "" {
			source = ae.source
		}
		cur = ae
	}

	args := []any{slog.String("message", err.Error())}
	if len(annotations) > 0 {
		args = append(args, slog.Group("annotations", annotations...))
	}
	if source != "" {
		args = append(args, slog.String("source", source))
	}
	return slog.Group("error", args...)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err.
func Unwrap(err error) error {
	return stderrors.Unwrap(err)
}

// Join returns an error that wraps the given errors, discarding nils.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}
