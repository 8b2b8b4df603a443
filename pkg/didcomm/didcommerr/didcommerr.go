/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package didcommerr defines the stable error kinds surfaced by the
// pack/unpack pipeline, so callers can branch on failure category without
// string-matching error messages.
package didcommerr

import (
	"errors"
	"fmt"
)

// Kind classifies a pack/unpack failure.
type Kind string

// Error kinds.
const (
	// DIDNotResolved means the DID resolver could not find a DID document for a DID.
	DIDNotResolved Kind = "did_not_resolved"
	// DIDUrlNotFound means a DID document was resolved but it had no matching DID URL/verification method.
	DIDUrlNotFound Kind = "did_url_not_found"
	// SecretNotFound means the secrets resolver had no key material for a requested kid.
	SecretNotFound Kind = "secret_not_found"
	// Malformed means the input message or envelope is not well-formed JSON/JOSE.
	Malformed Kind = "malformed"
	// IoError wraps a failure from a resolver call or other external I/O.
	IoError Kind = "io_error" //nolint:stylecheck
	// InvalidState means the pipeline reached a state that should be unreachable given the inputs.
	InvalidState Kind = "invalid_state"
	// NoCompatibleCrypto means no shared key-agreement/signature algorithm could be found for the
	// sender and recipients involved.
	NoCompatibleCrypto Kind = "no_compatible_crypto"
	// Unsupported means the operation or algorithm requested is recognized but not implemented.
	Unsupported Kind = "unsupported"
	// IllegalArgument means the caller passed an invalid combination of options or arguments.
	IllegalArgument Kind = "illegal_argument"
)

// Error is the error type returned by pack/unpack operations.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap supports errors.Is/errors.As against the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a *Error with the same Kind, so callers can do
// errors.Is(err, didcommerr.New(didcommerr.SecretNotFound, "", nil)) or simpler, errors.As + Kind check.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t.Kind == e.Kind
}

// New creates an *Error of the given kind.
func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Wrapf creates an *Error of the given kind with a formatted message wrapping cause.
func Wrapf(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Of reports the Kind of err if it is (or wraps) a *Error, and ok=false otherwise.
func Of(err error) (Kind, bool) {
	var e *Error

	if errors.As(err, &e) {
		return e.Kind, true
	}

	return "", false
}

// Is reports whether err is tagged with the given kind.
func Is(err error, kind Kind) bool {
	k, ok := Of(err)
	return ok && k == kind
}
