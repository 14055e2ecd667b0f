// Package errortypes classifies the failures of the summarization service
// so transports can map them to statuses and logs can carry their context.
package errortypes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"runtime"
	"slices"
	"strings"
)

// ErrorType represents the type of error that occurred
type ErrorType string

// Error types
const (
	ErrorTypeInput          ErrorType = "input"
	ErrorTypeRemoteCall     ErrorType = "remote_call"
	ErrorTypeRecursionLimit ErrorType = "recursion_limit"
	ErrorTypeRanking        ErrorType = "ranking"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeDatabase       ErrorType = "database"
	ErrorTypeConfig         ErrorType = "config"
	ErrorTypeInternal       ErrorType = "internal"
)

// errUnknown stands in for a nil cause.
var errUnknown = errors.New("unknown error")

// AppError is a classified failure with the message shown to callers,
// the underlying cause and structured context for logs.
type AppError struct {
	Err       error
	Type      ErrorType
	Message   string
	StackInfo string
	Fields    map[string]any
}

func (e *AppError) Error() string {
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error { return e.Err }

// WithField attaches one key to the error's log context.
func (e *AppError) WithField(key string, value any) *AppError {
	return e.WithFields(map[string]any{key: value})
}

// WithFields attaches several keys to the error's log context.
func (e *AppError) WithFields(fields map[string]any) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]any, len(fields))
	}
	maps.Copy(e.Fields, fields)
	return e
}

// stackTrace renders the caller chain above the constructor without
// runtime or test harness frames.
func stackTrace() string {
	pcs := make([]uintptr, 32)
	pcs = pcs[:runtime.Callers(4, pcs)]

	var b strings.Builder
	frames := runtime.CallersFrames(pcs)
	for {
		f, more := frames.Next()
		if keepFrame(f) {
			fmt.Fprintf(&b, "%s:%d %s\n", f.File, f.Line, f.Function)
		}
		if !more {
			return b.String()
		}
	}
}

func keepFrame(f runtime.Frame) bool {
	return !strings.HasPrefix(f.Function, "runtime.") && !strings.HasPrefix(f.Function, "testing.")
}

func classify(kind ErrorType, err error, message string) *AppError {
	if err == nil {
		err = errUnknown
	}
	return &AppError{
		Err:       err,
		Type:      kind,
		Message:   message,
		StackInfo: stackTrace(),
		Fields:    map[string]any{},
	}
}

// InputError creates an error for empty or unusable input documents.
// Input errors are terminal: the pipeline does not run.
func InputError(err error, message string) *AppError {
	return classify(ErrorTypeInput, err, message)
}

// RemoteCallError creates an error for a failed chat, summarization or
// embedding call (network, non-2xx status, malformed payload, timeout).
func RemoteCallError(err error, message string) *AppError {
	return classify(ErrorTypeRemoteCall, err, message)
}

// RecursionLimitError creates an error for a summarization that did not
// fit the model window within the allowed recursion depth.
func RecursionLimitError(err error, message string) *AppError {
	return classify(ErrorTypeRecursionLimit, err, message)
}

// RankingError creates an error for a failed extractive ranking.
func RankingError(err error, message string) *AppError {
	return classify(ErrorTypeRanking, err, message)
}

// NotFoundError is returned for unknown or expired sessions.
func NotFoundError(err error, message string) *AppError {
	return classify(ErrorTypeNotFound, err, message)
}

// DatabaseError wraps session store failures.
func DatabaseError(err error, message string) *AppError {
	return classify(ErrorTypeDatabase, err, message)
}

// ConfigError wraps invalid settings and missing collaborators.
func ConfigError(err error, message string) *AppError {
	return classify(ErrorTypeConfig, err, message)
}

// InternalError wraps everything else.
func InternalError(err error, message string) *AppError {
	return classify(ErrorTypeInternal, err, message)
}

// LogError logs err at error level. For an AppError the record carries its
// type, cause, stack and fields, with fields in key order.
func LogError(logger *slog.Logger, err error) {
	if logger == nil {
		logger = slog.Default()
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		logger.Error(err.Error(), "error", err)
		return
	}

	attrs := []slog.Attr{
		slog.String("type", string(appErr.Type)),
		slog.String("original_error", appErr.Err.Error()),
	}
	if appErr.StackInfo != "" {
		attrs = append(attrs, slog.String("stack", appErr.StackInfo))
	}
	for _, k := range slices.Sorted(maps.Keys(appErr.Fields)) {
		attrs = append(attrs, slog.Any(k, appErr.Fields[k]))
	}
	logger.LogAttrs(context.Background(), slog.LevelError, appErr.Message, attrs...)
}

// FieldsOf returns a copy of the fields of the outermost AppError in the
// chain, or nil.
func FieldsOf(err error) map[string]any {
	var appErr *AppError
	if !errors.As(err, &appErr) || len(appErr.Fields) == 0 {
		return nil
	}
	return maps.Clone(appErr.Fields)
}

// TypeOf returns the ErrorType of the outermost AppError in the chain,
// or an empty string when err carries none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

func IsInputError(err error) bool          { return TypeOf(err) == ErrorTypeInput }
func IsRemoteCallError(err error) bool     { return TypeOf(err) == ErrorTypeRemoteCall }
func IsRecursionLimitError(err error) bool { return TypeOf(err) == ErrorTypeRecursionLimit }
func IsRankingError(err error) bool        { return TypeOf(err) == ErrorTypeRanking }
func IsNotFoundError(err error) bool       { return TypeOf(err) == ErrorTypeNotFound }
func IsDatabaseError(err error) bool       { return TypeOf(err) == ErrorTypeDatabase }
func IsConfigError(err error) bool         { return TypeOf(err) == ErrorTypeConfig }
