// Package common defines shared constants and sentinel errors used across
// client and server layers of groupfeed. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Validation errors: rejected input, reported synchronously before any I/O.
	ErrValidation = errors.New("validation error")

	// Transport errors: a subscribe, append or store against an external
	// service failed. The operation either committed or it did not; there is
	// no partial state to clean up on the remote side.
	ErrTransport = errors.New("transport error")

	// Decode errors: a single malformed feed entry. Handled per entry and
	// never aborts processing of the rest of a snapshot.
	ErrDecode = errors.New("decode error")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")
)
