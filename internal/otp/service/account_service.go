package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/tahachak1/e-biblio/config"
	autherror "github.com/tahachak1/e-biblio/internal/errors"
	"github.com/tahachak1/e-biblio/internal/otp/domain"
	"github.com/tahachak1/e-biblio/internal/otp/dto"
	"github.com/tahachak1/e-biblio/pkg/constant"
)

// notifySendTimeout bounds the outbound email call so a slow mail transport
// cannot stall registration.
const notifySendTimeout = 5 * time.Second

// AccountService owns the user-account lifecycle and one-time-code issuance,
// verification and expiry. It is the only writer of both stores.
type AccountService struct {
	users    domain.UserRepository
	otps     domain.OTPRepository
	tokens   TokenGenerator
	notifier domain.Notifier
	cfg      *config.Config
}

func NewAccountService(users domain.UserRepository, otps domain.OTPRepository,
	tokens TokenGenerator, notifier domain.Notifier, cfg *config.Config) *AccountService {
	return &AccountService{
		users:    users,
		otps:     otps,
		tokens:   tokens,
		notifier: notifier,
		cfg:      cfg,
	}
}

// Register creates a pending account (or recycles an abandoned one) and sends
// a register code. It never issues a token: the account is still unverified.
func (s *AccountService) Register(ctx context.Context, input dto.RegisterInput) (string, error) {
	email := normalizeEmail(input.Email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user != nil && user.IsActive {
		return "", autherror.ErrAccountAlreadyActive
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	if user != nil {
		// Abandoned registration: overwrite in place and go back to pending.
		user.FirstName = input.FirstName
		user.LastName = input.LastName
		user.PasswordHash = string(hashed)
		user.IsActive = false
		user.FirstLoginCompleted = false
		user.Status = constant.StatusPending

		if err := s.users.ResetPending(ctx, user); err != nil {
			return "", err
		}
	} else {
		now := time.Now()
		user = &domain.User{
			ID:           uuid.NewString(),
			Email:        email,
			FirstName:    input.FirstName,
			LastName:     input.LastName,
			PasswordHash: string(hashed),
			Role:         constant.DefaultUserRole,
			Status:       constant.StatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := s.users.Create(ctx, user); err != nil {
			return "", err
		}
	}

	if _, err := s.IssueCode(ctx, user.ID, user.Email, domain.PurposeRegister, ""); err != nil {
		return "", err
	}

	return user.ID, nil
}

// IssueCode upserts the live code for (userID, purpose) and mails it. An
// explicit code skips generation (internal/test use only). The returned code
// must never reach a production response body.
func (s *AccountService) IssueCode(ctx context.Context, userID, email string, purpose domain.Purpose, explicitCode string) (string, error) {
	code := explicitCode
	if code == "" {
		var err error
		code, err = generateCode()
		if err != nil {
			return "", err
		}
	}

	record := &domain.OneTimeCode{
		UserID:      userID,
		Email:       email,
		Code:        code,
		Purpose:     purpose,
		ExpiresAt:   time.Now().Add(time.Duration(s.cfg.OTPExpiryMin) * time.Minute),
		Attempts:    0,
		MaxAttempts: s.cfg.OTPMaxAttempts,
	}

	if err := s.otps.Upsert(ctx, record); err != nil {
		return "", err
	}

	if !s.notifier.Configured() {
		// Sandbox mode: tolerate the missing transport to keep the flow
		// testable, and say so loudly.
		log.Warn().Str("email", email).Str("purpose", string(purpose)).
			Msg("otp email skipped: notifier credentials not configured (sandbox mode)")
		return code, nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, notifySendTimeout)
	defer cancel()

	if err := s.notifier.SendCode(sendCtx, email, code, purpose); err != nil {
		// The stored record persists; a resend can recover.
		log.Error().Err(err).Str("email", email).Str("purpose", string(purpose)).
			Msg("otp email delivery failed")
		return "", autherror.ErrNotificationFailed
	}

	return code, nil
}

// Verify checks a submitted code and, for register and login codes, activates
// the account. The matched record is consumed regardless of purpose.
func (s *AccountService) Verify(ctx context.Context, input dto.VerifyInput) (string, *dto.UserOutput, error) {
	var (
		record *domain.OneTimeCode
		err    error
	)
	if input.Purpose != "" {
		record, err = s.otps.GetLatestByPurpose(ctx, input.UserID, domain.Purpose(input.Purpose))
	} else {
		record, err = s.otps.GetLatest(ctx, input.UserID)
	}
	if err != nil {
		return "", nil, err
	}
	if record == nil {
		return "", nil, autherror.ErrOTPNotFound
	}

	if record.Attempts >= record.MaxAttempts {
		return "", nil, autherror.ErrTooManyAttempts
	}
	if time.Now().After(record.ExpiresAt) {
		return "", nil, autherror.ErrOTPExpired
	}
	if record.Code != input.OTP {
		if err := s.otps.IncrementAttempts(ctx, record.UserID, record.Purpose); err != nil {
			return "", nil, err
		}
		return "", nil, autherror.ErrInvalidCode
	}

	user, err := s.users.GetByID(ctx, input.UserID)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, autherror.ErrUserNotFound
	}

	if record.Purpose == domain.PurposeRegister || record.Purpose == domain.PurposeLogin {
		if err := s.users.Activate(ctx, user.ID); err != nil {
			return "", nil, err
		}
		user.IsActive = true
		user.FirstLoginCompleted = true
		user.Status = constant.StatusActive
	}

	// Single use: the matched record is gone even for password-reset codes.
	if err := s.otps.Delete(ctx, record.UserID, record.Purpose); err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return "", nil, err
	}

	return token, dto.NewUserOutput(user), nil
}

// RequestLoginCode issues a login code for an active account.
func (s *AccountService) RequestLoginCode(ctx context.Context, identifier string) (string, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(identifier))
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", autherror.ErrUserNotFound
	}
	if !user.IsActive {
		return "", autherror.ErrAccountInactive
	}

	if _, err := s.IssueCode(ctx, user.ID, user.Email, domain.PurposeLogin, ""); err != nil {
		return "", err
	}

	return user.ID, nil
}

// Resend re-issues a code. When the purpose is omitted it is derived from the
// latest live code, falling back to login for active accounts and register for
// pending ones.
func (s *AccountService) Resend(ctx context.Context, input dto.ResendInput) (string, error) {
	user, err := s.users.GetByID(ctx, input.UserID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", autherror.ErrUserNotFound
	}

	purpose := domain.Purpose(input.Purpose)
	if purpose == "" {
		last, err := s.otps.GetLatest(ctx, user.ID)
		if err != nil {
			return "", err
		}
		switch {
		case last != nil:
			purpose = last.Purpose
		case user.IsActive:
			purpose = domain.PurposeLogin
		default:
			purpose = domain.PurposeRegister
		}
	}

	if _, err := s.IssueCode(ctx, user.ID, user.Email, purpose, ""); err != nil {
		return "", err
	}

	return user.ID, nil
}

// RequestPasswordReset issues a password-reset code.
func (s *AccountService) RequestPasswordReset(ctx context.Context, identifier string) (string, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(identifier))
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", autherror.ErrUserNotFound
	}

	if _, err := s.IssueCode(ctx, user.ID, user.Email, domain.PurposePasswordReset, ""); err != nil {
		return "", err
	}

	return user.ID, nil
}

// VerifyPasswordResetCode exchanges a valid reset code for a single-use reset
// token. The code record stays alive, bounded by its original expiry, until
// the completion step consumes it.
func (s *AccountService) VerifyPasswordResetCode(ctx context.Context, input dto.PasswordResetVerifyInput) (string, error) {
	record, err := s.otps.GetLatestByPurpose(ctx, input.UserID, domain.PurposePasswordReset)
	if err != nil {
		return "", err
	}
	if record == nil {
		return "", autherror.ErrOTPNotFound
	}

	if record.Attempts >= record.MaxAttempts {
		return "", autherror.ErrTooManyAttempts
	}
	if time.Now().After(record.ExpiresAt) {
		return "", autherror.ErrOTPExpired
	}
	if record.Code != input.OTP {
		if err := s.otps.IncrementAttempts(ctx, record.UserID, record.Purpose); err != nil {
			return "", err
		}
		return "", autherror.ErrInvalidCode
	}

	token, err := generateResetToken()
	if err != nil {
		return "", err
	}

	if err := s.otps.SetResetToken(ctx, record.UserID, record.Purpose, token); err != nil {
		return "", err
	}

	return token, nil
}

// CompletePasswordReset redeems a reset token for exactly one password change.
func (s *AccountService) CompletePasswordReset(ctx context.Context, input dto.PasswordResetCompleteInput) error {
	record, err := s.otps.GetByResetToken(ctx, input.ResetToken)
	if err != nil {
		return err
	}
	if record == nil {
		return autherror.ErrInvalidResetToken
	}
	// The original code's expiry window bounds the token's validity too.
	if time.Now().After(record.ExpiresAt) {
		return autherror.ErrOTPExpired
	}

	user, err := s.users.GetByID(ctx, record.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return autherror.ErrUserNotFound
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, user.ID, string(hashed)); err != nil {
		return err
	}
	if err := s.users.Activate(ctx, user.ID); err != nil {
		return err
	}

	return s.otps.Delete(ctx, record.UserID, record.Purpose)
}

// generateCode draws a uniformly random zero-padded 6-digit code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// generateResetToken returns 128 bits of entropy as a hex string.
func generateResetToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
