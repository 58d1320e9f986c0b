package models

import "errors"

// Error kinds surfaced by the engine. Operation failures are additionally
// recorded per track in OperationStatus.Error; none of these are fatal.
var (
	// ErrProviderUnavailable means no client/credential was configured for an
	// external provider; the operation is never attempted.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrTransport covers network failures and non-2xx provider responses.
	ErrTransport = errors.New("provider request failed")

	// ErrEmptyResponse means the provider answered successfully but returned
	// no usable content.
	ErrEmptyResponse = errors.New("empty provider response")

	// ErrInvalidInput means caller-supplied parameters were missing or empty.
	ErrInvalidInput = errors.New("invalid input")

	ErrDuplicateEmail = errors.New("user with this email already exists")
	ErrBadCredentials = errors.New("invalid email or credential")
)
