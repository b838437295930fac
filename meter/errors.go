// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package meter

import "fmt"

// ErrorKind classifies why an operation was aborted.
type ErrorKind uint8

const (
	KindUnauthorized ErrorKind = iota + 1
	KindInvalidState
	KindValidationFailure
	KindExternalDependencyFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthorized:
		return "Unauthorized"
	case KindInvalidState:
		return "InvalidState"
	case KindValidationFailure:
		return "ValidationFailure"
	case KindExternalDependencyFailure:
		return "ExternalDependencyFailure"
	default:
		return "Unknown"
	}
}

// Error is an operation failure with a kind and a specific reason.
// Two errors match under errors.Is when their reasons are equal, and any
// error matches the bare sentinel of its kind.
type Error struct {
	Kind   ErrorKind
	Reason string
}

// NewError creates an error of the given kind.
func NewError(kind ErrorKind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Is supports errors.Is against kind sentinels and named sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Reason == "" {
		return e.Kind == t.Kind
	}
	return e.Kind == t.Kind && e.Reason == t.Reason
}

// Kind sentinels.
var (
	ErrUnauthorized              = &Error{Kind: KindUnauthorized}
	ErrInvalidState              = &Error{Kind: KindInvalidState}
	ErrValidationFailure         = &Error{Kind: KindValidationFailure}
	ErrExternalDependencyFailure = &Error{Kind: KindExternalDependencyFailure}
)

// Shared sentinels used by more than one module.
var (
	ErrTransferFailed      = NewError(KindExternalDependencyFailure, "transfer failed")
	ErrInsufficientBalance = NewError(KindValidationFailure, "insufficient balance")
)

// KindOf returns the kind carried by err, or zero if err carries none.
func KindOf(err error) ErrorKind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return 0
		}
		err = u.Unwrap()
	}
	return 0
}
