package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tahachak1/e-biblio/internal/otp/domain"
)

// expiredRetention keeps records around past their expiry so verification can
// report "expired" instead of "not found".
const expiredRetention = time.Hour

var purposes = []domain.Purpose{
	domain.PurposeRegister,
	domain.PurposeLogin,
	domain.PurposePasswordReset,
}

// OTPRedisRepository implements domain.OTPRepository on Redis hashes. Users
// stay in Postgres; only the short-lived code records move here.
type OTPRedisRepository struct {
	client *redis.Client
}

func NewOTPRedisRepository(addr, password string, db int) *OTPRedisRepository {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &OTPRedisRepository{client: rdb}
}

func key(userID string, purpose domain.Purpose) string {
	return fmt.Sprintf("otp:%s:%s", userID, purpose)
}

func resetKey(token string) string {
	return "otp-reset:" + token
}

func (r *OTPRedisRepository) Upsert(ctx context.Context, code *domain.OneTimeCode) error {
	k := key(code.UserID, code.Purpose)

	// Drop the index of any previously issued reset token for this record.
	if old, err := r.client.HGet(ctx, k, "reset_token").Result(); err == nil && old != "" {
		if err := r.client.Del(ctx, resetKey(old)).Err(); err != nil {
			return err
		}
	} else if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	fields := map[string]string{
		"user_id":      code.UserID,
		"email":        code.Email,
		"code":         code.Code,
		"purpose":      string(code.Purpose),
		"expires_at":   code.ExpiresAt.UTC().Format(time.RFC3339Nano),
		"attempts":     strconv.Itoa(code.Attempts),
		"max_attempts": strconv.Itoa(code.MaxAttempts),
		"reset_token":  "",
	}
	if err := r.client.HSet(ctx, k, fields).Err(); err != nil {
		return err
	}

	return r.client.Expire(ctx, k, time.Until(code.ExpiresAt)+expiredRetention).Err()
}

func (r *OTPRedisRepository) GetLatest(ctx context.Context, userID string) (*domain.OneTimeCode, error) {
	var latest *domain.OneTimeCode
	for _, p := range purposes {
		code, err := r.load(ctx, key(userID, p))
		if err != nil {
			return nil, err
		}
		if code != nil && (latest == nil || code.ExpiresAt.After(latest.ExpiresAt)) {
			latest = code
		}
	}
	return latest, nil
}

func (r *OTPRedisRepository) GetLatestByPurpose(ctx context.Context, userID string, purpose domain.Purpose) (*domain.OneTimeCode, error) {
	return r.load(ctx, key(userID, purpose))
}

func (r *OTPRedisRepository) IncrementAttempts(ctx context.Context, userID string, purpose domain.Purpose) error {
	return r.client.HIncrBy(ctx, key(userID, purpose), "attempts", 1).Err()
}

func (r *OTPRedisRepository) SetResetToken(ctx context.Context, userID string, purpose domain.Purpose, token string) error {
	k := key(userID, purpose)
	ttl, err := r.client.TTL(ctx, k).Result()
	if err != nil {
		return err
	}
	if err := r.client.HSet(ctx, k, "reset_token", token).Err(); err != nil {
		return err
	}
	return r.client.Set(ctx, resetKey(token), k, ttl).Err()
}

func (r *OTPRedisRepository) GetByResetToken(ctx context.Context, token string) (*domain.OneTimeCode, error) {
	k, err := r.client.Get(ctx, resetKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	code, err := r.load(ctx, k)
	if err != nil {
		return nil, err
	}
	// The record may have been re-issued since the token was minted.
	if code == nil || code.ResetToken != token {
		return nil, nil
	}
	return code, nil
}

func (r *OTPRedisRepository) Delete(ctx context.Context, userID string, purpose domain.Purpose) error {
	k := key(userID, purpose)

	if token, err := r.client.HGet(ctx, k, "reset_token").Result(); err == nil && token != "" {
		if err := r.client.Del(ctx, resetKey(token)).Err(); err != nil {
			return err
		}
	} else if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	return r.client.Del(ctx, k).Err()
}

func (r *OTPRedisRepository) load(ctx context.Context, k string) (*domain.OneTimeCode, error) {
	vals, err := r.client.HGetAll(ctx, k).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, nil
	}

	expiresAt, err := time.Parse(time.RFC3339Nano, vals["expires_at"])
	if err != nil {
		return nil, fmt.Errorf("malformed expires_at in %s: %w", k, err)
	}
	attempts, _ := strconv.Atoi(vals["attempts"])
	maxAttempts, _ := strconv.Atoi(vals["max_attempts"])

	return &domain.OneTimeCode{
		UserID:      vals["user_id"],
		Email:       vals["email"],
		Code:        vals["code"],
		Purpose:     domain.Purpose(vals["purpose"]),
		ExpiresAt:   expiresAt,
		Attempts:    attempts,
		MaxAttempts: maxAttempts,
		ResetToken:  vals["reset_token"],
	}, nil
}
