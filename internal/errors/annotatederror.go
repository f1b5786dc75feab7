// Package errors is a drop-in companion to the standard library errors package.
//
// Errors wrapped with [Wrap] remember where they were wrapped and carry [slog.Attr] annotations that
// [SlogError] expands into structured log attributes.
package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
)

type annotatedError struct {
	msg         string
	cause       error
	annotations []slog.Attr
	source      string
}

func (e *annotatedError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.cause
}

// New is an alias for the standard library errors.New.
func New(text string) error {
	return stderrors.New(text) //nolint:err113 // we are the errors package.
}

// NewSentinel creates an error intended to be compared with [Is].
//
// Sentinels do not record a source location since they are usually declared as package level variables.
func NewSentinel(text string) error {
	return stderrors.New(text) //nolint:err113 // sentinel constructor.
}

// Wrap annotates err with msg and attrs and records the caller location.
//
// Wrap returns nil if err is nil.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	return &annotatedError{
		msg:         msg,
		cause:       err,
		annotations: attrs,
		source:      callerSource(2), //nolint:mnd // skip callerSource and Wrap.
	}
}

// DecoratePanic converts a recovered panic value into an error pointing to the line that panicked.
func DecoratePanic(excp any) error {
	if excp == nil {
		return nil
	}
	return &annotatedError{
		msg:         fmt.Sprintf("panic: %v", excp),
		cause:       nil,
		annotations: nil,
		source:      panicSource(),
	}
}

// SlogError returns an attribute group describing err for use with [slog.Logger.LogAttrs].
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}

	var (
		annotations []any
		source      string
		current     = err
	)
	for current != nil {
		var ae *annotatedError
		if !stderrors.As(current, &ae) {
			break
		}
		for _, a := range ae.annotations {
			annotations = append(annotations, a)
		}
		// The innermost wrap is closest to the root cause.
		if ae.source != "" {
			source = ae.source
		}
		current = ae.cause
	}

	attrs := []any{slog.String("message", err.Error())}
	if len(annotations) > 0 {
		attrs = append(attrs, slog.Group("annotations", annotations...))
	}
	if source != "" {
		attrs = append(attrs, slog.String("source", source))
	}
	return slog.Group("error", attrs...)
}

func callerSource(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	return file + ":" + strconv.Itoa(line)
}

// panicSource finds the frame that called panic from inside a deferred recover.
func panicSource() string {
	const maxDepth = 32
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(1, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	afterPanic := false
	for {
		frame, more := frames.Next()
		if afterPanic && !strings.HasPrefix(frame.Function, "runtime.") {
			return frame.File + ":" + strconv.Itoa(frame.Line)
		}
		if frame.Function == "runtime.gopanic" {
			afterPanic = true
		}
		if !more {
			return ""
		}
	}
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

// Join returns an error that wraps the given errors.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}
