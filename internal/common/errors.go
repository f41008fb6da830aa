// Package common defines shared constants and sentinel errors used across
// client and server layers of gophgram. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")
	ErrValidation = errors.New("validation error")

	// Session errors.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrUnauthenticated    = errors.New("unauthenticated")

	// Token lifecycle errors. Both are reported to callers as ErrUnauthenticated.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Social graph errors.
	ErrSelfFollow = errors.New("you cannot follow or unfollow yourself")

	// Realtime errors.
	ErrTransportFailure = errors.New("transport failure")
)
