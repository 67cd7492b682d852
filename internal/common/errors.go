// Package common defines shared constants and sentinel errors used across
// the client and server layers of shiftbook. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// ErrEmptySegmentsRejected is the safety-net rejection: an upload that
	// would replace a day's route segments with none, without the explicit
	// force-clear override. Never retried as-is.
	ErrEmptySegmentsRejected = errors.New("empty segments rejected")
)
