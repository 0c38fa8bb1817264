package fpmatch

import (
	"github.com/pkg/errors"

	"github.com/npillmayer/fpmatch/bind"
	"github.com/npillmayer/fpmatch/compile"
	"github.com/npillmayer/fpmatch/diag"
	"github.com/npillmayer/fpmatch/pattern"
)

// BuildError is returned for malformed cases, at construction time.
type BuildError = compile.BuildError

// IsBuildError is true if err is or wraps a *BuildError.
func IsBuildError(err error) bool {
	return compile.IsBuildError(err)
}

// NoMatchError is returned by Match if no case matched a value.
// The error message is the text of the diagnostic.
type NoMatchError struct {
	Value      any
	Diagnostic *diag.Diagnostic
}

func (e *NoMatchError) Error() string {
	return e.Diagnostic.String()
}

// Unwrap returns the errors raised by patterns, guards and results while
// matching, or nil.
func (e *NoMatchError) Unwrap() error {
	return e.Diagnostic.Errors()
}

// Is makes errors.Is(err, pattern.ErrNoMatch) hold.
func (e *NoMatchError) Is(target error) bool {
	return target == pattern.ErrNoMatch
}

// IsNoMatch is true if err is or wraps a *NoMatchError.
func IsNoMatch(err error) bool {
	var nm *NoMatchError
	return errors.As(err, &nm)
}

// GuardEvaluationError is recorded if a guard of a matching case failed to
// run, e.g. because the captures did not fit its parameters.
type GuardEvaluationError struct {
	Case  int // 1-based
	Guard bind.Callable
	Err   error
}

func (e *GuardEvaluationError) Error() string {
	return e.Err.Error()
}

func (e *GuardEvaluationError) Unwrap() error {
	return e.Err
}

// ResultEvaluationError is recorded if the result of a matching case could
// not be computed.
type ResultEvaluationError struct {
	Case int // 1-based
	Err  error
}

func (e *ResultEvaluationError) Error() string {
	return e.Err.Error()
}

func (e *ResultEvaluationError) Unwrap() error {
	return e.Err
}
