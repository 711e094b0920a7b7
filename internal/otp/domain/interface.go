package domain

//go:generate mockgen -destination=../../mocks/mock_user_repository.go -package=mocks github.com/tahachak1/e-biblio/internal/otp/domain UserRepository
//go:generate mockgen -destination=../../mocks/mock_otp_repository.go -package=mocks github.com/tahachak1/e-biblio/internal/otp/domain OTPRepository
//go:generate mockgen -destination=../../mocks/mock_notifier.go -package=mocks github.com/tahachak1/e-biblio/internal/otp/domain Notifier

import "context"

// UserRepository lookups return (nil, nil) when no matching record exists.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, user *User) error
	// ResetPending overwrites name and password of an unverified account and
	// puts it back into the pending state.
	ResetPending(ctx context.Context, user *User) error
	Activate(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// OTPRepository lookups return (nil, nil) when no matching record exists.
type OTPRepository interface {
	// Upsert replaces the live record for (UserID, Purpose); the previous
	// code, attempt counter and reset token are discarded.
	Upsert(ctx context.Context, code *OneTimeCode) error
	// GetLatest returns the most recently issued code across all purposes,
	// highest expiry timestamp first.
	GetLatest(ctx context.Context, userID string) (*OneTimeCode, error)
	GetLatestByPurpose(ctx context.Context, userID string, purpose Purpose) (*OneTimeCode, error)
	IncrementAttempts(ctx context.Context, userID string, purpose Purpose) error
	SetResetToken(ctx context.Context, userID string, purpose Purpose, token string) error
	GetByResetToken(ctx context.Context, token string) (*OneTimeCode, error)
	Delete(ctx context.Context, userID string, purpose Purpose) error
}

// Notifier delivers one-time codes to the account's mailbox.
type Notifier interface {
	// Configured reports whether transport credentials are present. When they
	// are not, issuance skips delivery instead of failing (sandbox mode).
	Configured() bool
	SendCode(ctx context.Context, to, code string, purpose Purpose) error
}
