package domain

import "time"

type Purpose string

const (
	PurposeRegister      Purpose = "register"
	PurposeLogin         Purpose = "login"
	PurposePasswordReset Purpose = "password-reset"
)

func (p Purpose) Valid() bool {
	switch p {
	case PurposeRegister, PurposeLogin, PurposePasswordReset:
		return true
	}
	return false
}

// OneTimeCode is the live code record for a (user, purpose) pair. Re-issuance
// replaces the record wholesale; there is never more than one per pair.
type OneTimeCode struct {
	UserID      string
	Email       string
	Code        string
	Purpose     Purpose
	ExpiresAt   time.Time
	Attempts    int
	MaxAttempts int
	ResetToken  string
}
