// Package errs implements the error taxonomy of spec §7. Every error the
// engine raises is fatal to the current invocation: runtime.Dispatch
// catches it at the outer boundary, writes a diagnostic via the host's
// panic op, and does not flush (spec §7 "Propagation policy").
package errs

import "fmt"

// Kind identifies one of the taxonomy's conceptual error categories.
type Kind string

const (
	AlreadyInitialized Kind = "AlreadyInitialized"
	NotInitialized     Kind = "NotInitialized"
	UnknownMethod      Kind = "UnknownMethod"
	InvalidArguments   Kind = "InvalidArguments"
	InvalidID          Kind = "InvalidId"
	OutOfBounds        Kind = "OutOfBounds"
	InvalidAmount      Kind = "InvalidAmount"
	FrozenViolation    Kind = "FrozenViolation"
	HostError          Kind = "HostError"
	Deserialization    Kind = "Deserialization"
	Application        Kind = "Application"
)

// Error is the concrete type carried by every error this module returns
// for a taxonomy-classified failure.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New constructs a taxonomy error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs a taxonomy error that carries an underlying cause (used
// for HostError, which must retain the host's own diagnostic string per
// spec §7 "Host errors surfaced through the bridge contain the host's
// diagnostic string for debuggability").
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether err is a *Error of the given kind, unwrapping as
// needed. Mirrors the standard errors.Is contract without requiring
// callers to import errors for this common case.
func Is(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.Kind == kind {
				return true
			}
			err = e.Cause
			continue
		}
		return false
	}
	return false
}
