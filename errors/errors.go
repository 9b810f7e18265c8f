// Package errors provides error handling for zorsh-gen.
//
// This package re-exports github.com/cockroachdb/errors, providing stack traces,
// wrapping and user-facing hints. It also defines the sentinel errors that
// classify every failure the generator can report:
//
//	// Wrap with context
//	if err := load(dir); err != nil {
//	    return errors.Wrapf(err, "failed to load %s", dir)
//	}
//
//	// Tell the user how to fix the source declaration
//	return errors.WithHint(err, "annotate the type with //zorsh:generate")
//
//	// Classify
//	if errors.Is(err, errors.ErrDependencyCycle) {
//	    // ...
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
	"go.uber.org/multierr"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint      = crdb.WithHint
	WithHintf     = crdb.WithHintf
	WithDetail    = crdb.WithDetail
	WithDetailf   = crdb.WithDetailf
	GetAllHints   = crdb.GetAllHints
	GetAllDetails = crdb.GetAllDetails
	FlattenHints  = crdb.FlattenHints
)

// Error inspection
var (
	Is        = crdb.Is
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Assertions
var AssertionFailedf = crdb.AssertionFailedf

// Sentinel errors classifying generator failures.
// Typed errors in the typegen packages report these through their Is method.
var (
	// ErrExtraction indicates a Go declaration could not be mapped to the type model
	ErrExtraction = New("extraction error")

	// ErrDuplicateDeclaration indicates two declarations share a fully-qualified name
	ErrDuplicateDeclaration = New("duplicate declaration")

	// ErrUnresolvedReference indicates a field references an undeclared type
	ErrUnresolvedReference = New("unresolved reference")

	// ErrDependencyCycle indicates a structural containment cycle between types
	ErrDependencyCycle = New("dependency cycle")

	// ErrEmission indicates an internal invariant violation while rendering schemas
	ErrEmission = New("emission error")

	// ErrStaleOutput indicates generated files on disk differ from a fresh generation
	ErrStaleOutput = New("generated output is stale")
)

// Append collects err into a batch of errors. Nil errors are ignored.
// The generator reports every problem of a run at once instead of stopping at the
// first one, so most stages accumulate with Append and return Combine'd batches.
func Append(into, err error) error {
	return multierr.Append(into, err)
}

// Combine merges errors into one, dropping nils. Returns nil when nothing remains.
func Combine(errs ...error) error {
	return multierr.Combine(errs...)
}

// Flatten splits a batch created by Append/Combine into its individual errors.
func Flatten(err error) []error {
	return multierr.Errors(err)
}

// IsUserError reports whether err was caused by the input declarations (as opposed
// to I/O failures or internal defects). Works on batches.
func IsUserError(err error) bool {
	if err == nil {
		return false
	}
	for _, e := range Flatten(err) {
		if !(Is(e, ErrExtraction) || Is(e, ErrDuplicateDeclaration) ||
			Is(e, ErrUnresolvedReference) || Is(e, ErrDependencyCycle)) {
			return false
		}
	}
	return true
}
