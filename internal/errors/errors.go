// Package errors defines the driver's error taxonomy. Every failure the
// pipeline can produce is a DriverError carrying a kind, a stable code, and
// an optional wrapped cause. All kinds are fatal to the current build.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a DriverError.
type Kind int

// The zero Kind is deliberately unused so a zero-valued DriverError target
// never matches a real error through Is.
const (
	ConfigError Kind = iota + 1
	UsageError
	CompileError
	LinkError
	LibraryBuildError
	TranslationError
	TransformHookError
	TemplateError
)

func (k Kind) String() string {
	switch k {
	case ConfigError:
		return "config error"
	case UsageError:
		return "usage error"
	case CompileError:
		return "compile error"
	case LinkError:
		return "link error"
	case LibraryBuildError:
		return "library build error"
	case TranslationError:
		return "translation error"
	case TransformHookError:
		return "transform hook error"
	case TemplateError:
		return "template error"
	default:
		return "error"
	}
}

// DriverError is the single error type crossing package boundaries in the
// pipeline. It wraps an optional cause and is errors.Is/As compatible.
type DriverError struct {
	Kind    Kind
	Code    string // stable code like E0001
	Message string
	Err     error // wrapped cause, may be nil
}

func (e *DriverError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s[%s]: %s: %v", e.Kind, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s[%s]: %s", e.Kind, e.Code, e.Message)
}

func (e *DriverError) Unwrap() error {
	return e.Err
}

// Is matches on kind so callers can write errors.Is(err, &DriverError{Kind: LinkError}).
func (e *DriverError) Is(target error) bool {
	t, ok := target.(*DriverError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && (t.Code == "" || e.Code == t.Code)
}

func newError(kind Kind, code, format string, args ...interface{}) *DriverError {
	return &DriverError{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Config reports a malformed or invalid build configuration.
func Config(code, format string, args ...interface{}) *DriverError {
	return newError(ConfigError, code, format, args...)
}

// Usage reports an incompatible flag combination.
func Usage(format string, args ...interface{}) *DriverError {
	return newError(UsageError, ErrorBadUsage, format, args...)
}

// Compile reports a frontend failure.
func Compile(cause error, format string, args ...interface{}) *DriverError {
	err := newError(CompileError, ErrorCompileFailed, format, args...)
	err.Err = cause
	return err
}

// Link reports a bitcode link failure.
func Link(cause error, format string, args ...interface{}) *DriverError {
	err := newError(LinkError, ErrorLinkFailed, format, args...)
	err.Err = cause
	return err
}

// LibraryBuild reports a support-library builder failure.
func LibraryBuild(cause error, format string, args ...interface{}) *DriverError {
	err := newError(LibraryBuildError, ErrorLibraryBuild, format, args...)
	err.Err = cause
	return err
}

// Translation reports a bitcode-to-script translation failure.
func Translation(cause error, format string, args ...interface{}) *DriverError {
	err := newError(TranslationError, ErrorTranslateFailed, format, args...)
	err.Err = cause
	return err
}

// TransformHook reports a failed external transform command.
func TransformHook(cause error, format string, args ...interface{}) *DriverError {
	err := newError(TransformHookError, ErrorTransformHook, format, args...)
	err.Err = cause
	return err
}

// Template reports a shell template with no placeholder token.
func Template(format string, args ...interface{}) *DriverError {
	return newError(TemplateError, ErrorTemplateToken, format, args...)
}

// IsKind reports whether err (or anything it wraps) is a DriverError of kind k.
func IsKind(err error, k Kind) bool {
	var de *DriverError
	if errors.As(err, &de) {
		return de.Kind == k
	}
	return false
}
