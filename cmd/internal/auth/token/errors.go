package token

import "errors"

var (
	// ErrNotFound is returned when a token id does not match any record.
	ErrNotFound = errors.New("token not found")

	// ErrAlreadyExpired is returned when Extend is invoked on an
	// expired token. The token is not mutated.
	ErrAlreadyExpired = errors.New("token already expired")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid token config")
)
