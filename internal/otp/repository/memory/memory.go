// Package memory holds in-memory store implementations used by the
// service-level flow tests.
package memory

import (
	"context"
	"sync"

	"github.com/tahachak1/e-biblio/internal/otp/domain"
)

type UserRepo struct {
	mu      sync.RWMutex
	users   map[string]*domain.User // id -> user
	byEmail map[string]string       // email -> id
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		users:   make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	u := *r.users[id]
	return &u, nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (r *UserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.ID] = &copied
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *UserRepo) ResetPending(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
	if !ok {
		return nil
	}
	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.PasswordHash = user.PasswordHash
	stored.IsActive = false
	stored.FirstLoginCompleted = false
	stored.Status = "pending"
	return nil
}

func (r *UserRepo) Activate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.IsActive = true
		u.FirstLoginCompleted = true
		u.Status = "active"
	}
	return nil
}

func (r *UserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

type otpKey struct {
	userID  string
	purpose domain.Purpose
}

type OTPRepo struct {
	mu    sync.RWMutex
	codes map[otpKey]*domain.OneTimeCode
}

func NewOTPRepo() *OTPRepo {
	return &OTPRepo{codes: make(map[otpKey]*domain.OneTimeCode)}
}

func (r *OTPRepo) Upsert(_ context.Context, code *domain.OneTimeCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *code
	r.codes[otpKey{code.UserID, code.Purpose}] = &copied
	return nil
}

func (r *OTPRepo) GetLatest(_ context.Context, userID string) (*domain.OneTimeCode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *domain.OneTimeCode
	for k, c := range r.codes {
		if k.userID != userID {
			continue
		}
		if latest == nil || c.ExpiresAt.After(latest.ExpiresAt) {
			latest = c
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (r *OTPRepo) GetLatestByPurpose(_ context.Context, userID string, purpose domain.Purpose) (*domain.OneTimeCode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codes[otpKey{userID, purpose}]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (r *OTPRepo) IncrementAttempts(_ context.Context, userID string, purpose domain.Purpose) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.codes[otpKey{userID, purpose}]; ok {
		c.Attempts++
	}
	return nil
}

func (r *OTPRepo) SetResetToken(_ context.Context, userID string, purpose domain.Purpose, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.codes[otpKey{userID, purpose}]; ok {
		c.ResetToken = token
	}
	return nil
}

func (r *OTPRepo) GetByResetToken(_ context.Context, token string) (*domain.OneTimeCode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.codes {
		if c.ResetToken != "" && c.ResetToken == token {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *OTPRepo) Delete(_ context.Context, userID string, purpose domain.Purpose) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.codes, otpKey{userID, purpose})
	return nil
}
