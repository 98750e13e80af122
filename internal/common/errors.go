// Package common defines shared constants and sentinel errors used across
// the cloudstore server. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Auth errors. Every token failure wraps ErrUnauthenticated.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrTokenExpired    = fmt.Errorf("%w: token expired", ErrUnauthenticated)
	ErrInvalidToken    = fmt.Errorf("%w: invalid token", ErrUnauthenticated)
	ErrMalformedToken  = fmt.Errorf("%w: malformed token", ErrUnauthenticated)

	// Storage errors.
	ErrAccessDenied     = errors.New("access denied")
	ErrConflict         = errors.New("conflict")
	ErrSizeExceeded     = errors.New("size exceeded")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrConsistencyFault = errors.New("consistency fault")
	ErrIOFailure        = errors.New("io failure")
)
