package errors

import (
	"errors"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrAccountAlreadyActive = errors.New("account already active")
	ErrAccountInactive      = errors.New("account not active, complete registration first")
	ErrUserNotFound         = errors.New("user not found")
	ErrOTPNotFound          = errors.New("invalid otp")
	ErrOTPExpired           = errors.New("otp expired")
	ErrInvalidCode          = errors.New("incorrect code")
	ErrTooManyAttempts      = errors.New("too many attempts")
	ErrInvalidResetToken    = errors.New("invalid or already used reset token")
	ErrNotificationFailed   = errors.New("could not send the code, try again later")
)
