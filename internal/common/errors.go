// Package common defines sentinel errors shared by repositories, services
// and the HTTP layer. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")
	ErrorTooLarge   = errors.New("payload too large")
	ErrorDelivery   = errors.New("delivery failed")

	// Auth errors.
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrAccountNotVerified = errors.New("account not verified")

	// One-time passcode errors. Missing and mismatched codes are reported
	// the same way.
	ErrOTPInvalid = errors.New("invalid or missing otp")
	ErrOTPExpired = errors.New("otp expired")

	// The mutation was applied but its audit entry was not written.
	ErrChangeLogNotRecorded = errors.New("change log not recorded")
)
