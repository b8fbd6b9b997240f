// Package common contains shared constants, sentinel errors, and random
// token helpers used across Shelfmark components.
package common

import "errors"

var (

	// repository specific errors
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// service specific errors
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")

	// shared-link resolution outcomes, checked in this order after not-found
	ErrorLinkExpired      = errors.New("link expired")
	ErrorLinkRevoked      = errors.New("link revoked")
	ErrorPasswordRequired = errors.New("password required")
	ErrorInvalidPassword  = errors.New("invalid password")

	// auth/session errors
	ErrorInvalidToken        = errors.New("invalid token")
	ErrTokenExpired          = errors.New("token expired")
	ErrRefreshTokenExpired   = errors.New("refresh token expired")
	ErrSessionEnded          = errors.New("session ended")
	ErrTokenRetriesExhausted = errors.New("token generation retries exhausted")
)
