// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package reporterr defines the error taxonomy shared by every stage of
// report package generation.
//
// All failures are fatal to the unit of work that raised them; callers
// classify them with IsKind rather than retrying.
package reporterr

import (
	"errors"
	"fmt"
)

// Kind represents the category of a report signing failure.
type Kind int

const (
	// KindUnknown indicates an unclassified error.
	KindUnknown Kind = iota

	// KindIO indicates an unreadable or unwritable path.
	KindIO

	// KindLayout indicates that an expected directory or file structure was
	// not found.
	KindLayout

	// KindSigning indicates that no signature could be produced.
	KindSigning

	// KindStructural indicates that a package violates a shape invariant.
	KindStructural

	// KindFaultPrecondition indicates that a fault kind cannot be applied to
	// the given manifest.
	KindFaultPrecondition

	// KindConfiguration indicates invalid settings or key material.
	KindConfiguration

	// KindVerification indicates that package content does not match its
	// manifest.
	KindVerification
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindIO:
		return "IOError"
	case KindLayout:
		return "LayoutError"
	case KindSigning:
		return "SigningError"
	case KindStructural:
		return "StructuralError"
	case KindFaultPrecondition:
		return "FaultPreconditionError"
	case KindConfiguration:
		return "ConfigurationError"
	case KindVerification:
		return "VerificationError"
	default:
		return "UnknownError"
	}
}

// Error is a structured error carrying the operation attempted and the
// offending path.
//
// Example usage:
//
//	var rerr *reporterr.Error
//	if errors.As(err, &rerr) {
//	    log.Printf("op=%s kind=%s path=%s", rerr.Op, rerr.Kind, rerr.Path)
//	}
type Error struct {
	// Kind categorizes the error for programmatic handling.
	Kind Kind

	// Op names the operation that failed, e.g. "manifest.build".
	Op string

	// Path is the file or archive involved (optional).
	Path string

	// Message is a human-readable description of what went wrong.
	Message string

	// Cause is the underlying error (optional).
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s (path: %s)", msg, e.Path)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for error chain unwrapping.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an error without a path.
func New(kind Kind, op, message string, cause error) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
		Cause:   cause,
	}
}

// NewWithPath creates an error bound to a path.
func NewWithPath(kind Kind, op, path, message string, cause error) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Path:    path,
		Message: message,
		Cause:   cause,
	}
}

// IO wraps a filesystem failure on path.
func IO(op, path string, cause error) *Error {
	return NewWithPath(KindIO, op, path, "filesystem operation failed", cause)
}

// IsKind reports whether any error in err's chain is an *Error of kind.
func IsKind(err error, kind Kind) bool {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind == kind
	}
	return false
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindUnknown.
func KindOf(err error) Kind {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind
	}
	return KindUnknown
}
