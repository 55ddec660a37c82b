package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrWrongPassword       = errors.New("wrong password")

	ErrUserNotVerified     = errors.New("user email is not verified")
	ErrUserAlreadyVerified = errors.New("user email is already verified")

	ErrInvalidOTPCode = errors.New("invalid one-time code")
	ErrOTPExpired     = errors.New("one-time code is expired")

	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")

	ErrValidationInvalidEmail  = errors.New("invalid email address")
	ErrValidationWeakPassword  = errors.New("password must be at least 8 characters")
	ErrValidationInvalidKind   = errors.New("kind must be either income or expense")
	ErrValidationInvalidAmount = errors.New("amount must be a positive number")
	ErrValidationMissingFields = errors.New("required fields are missing")
)
