package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tahachak1/e-biblio/internal/otp/domain"
)

// PgxIface is the subset of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type PgxIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository implements both domain.UserRepository and
// domain.OTPRepository on top of a single pool.
type PostgresRepository struct {
	db PgxIface
}

func NewPostgresRepository(db PgxIface) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, email, first_name, last_name, password_hash, role, status,
		is_active, first_login_completed, created_at, updated_at`

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
		LIMIT 1;
	`
	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
		LIMIT 1;
	`
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName,
		&user.PasswordHash, &user.Role, &user.Status,
		&user.IsActive, &user.FirstLoginCompleted, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	return &user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, email, first_name, last_name, password_hash, role, status,
			is_active, first_login_completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, user.ID, user.Email, user.FirstName, user.LastName, user.PasswordHash,
		user.Role, user.Status, user.IsActive, user.FirstLoginCompleted,
		user.CreatedAt, user.UpdatedAt)

	return err
}

func (r *PostgresRepository) ResetPending(ctx context.Context, user *domain.User) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET first_name = $2,
			last_name = $3,
			password_hash = $4,
			is_active = FALSE,
			first_login_completed = FALSE,
			status = 'pending',
			updated_at = now()
		WHERE id = $1
	`, user.ID, user.FirstName, user.LastName, user.PasswordHash)

	return err
}

func (r *PostgresRepository) Activate(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET is_active = TRUE,
			first_login_completed = TRUE,
			status = 'active',
			updated_at = now()
		WHERE id = $1
	`, id)

	return err
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1
	`, id, passwordHash)

	return err
}

const otpColumns = `user_id, email, code, purpose, expires_at, attempts, max_attempts,
		COALESCE(reset_token, '')`

// Upsert is the single atomic replace that keeps at most one live code per
// (user, purpose) under concurrent issuance.
func (r *PostgresRepository) Upsert(ctx context.Context, code *domain.OneTimeCode) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO otps (user_id, email, code, purpose, expires_at, attempts, max_attempts, reset_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULL)
		ON CONFLICT (user_id, purpose)
		DO UPDATE SET
			email = EXCLUDED.email,
			code = EXCLUDED.code,
			expires_at = EXCLUDED.expires_at,
			attempts = EXCLUDED.attempts,
			max_attempts = EXCLUDED.max_attempts,
			reset_token = NULL
	`, code.UserID, code.Email, code.Code, code.Purpose, code.ExpiresAt,
		code.Attempts, code.MaxAttempts)

	return err
}

func (r *PostgresRepository) GetLatest(ctx context.Context, userID string) (*domain.OneTimeCode, error) {
	query := `
		SELECT ` + otpColumns + `
		FROM otps
		WHERE user_id = $1
		ORDER BY expires_at DESC
		LIMIT 1;
	`
	return r.scanOTP(r.db.QueryRow(ctx, query, userID))
}

func (r *PostgresRepository) GetLatestByPurpose(ctx context.Context, userID string, purpose domain.Purpose) (*domain.OneTimeCode, error) {
	query := `
		SELECT ` + otpColumns + `
		FROM otps
		WHERE user_id = $1 AND purpose = $2
		ORDER BY expires_at DESC
		LIMIT 1;
	`
	return r.scanOTP(r.db.QueryRow(ctx, query, userID, purpose))
}

func (r *PostgresRepository) GetByResetToken(ctx context.Context, token string) (*domain.OneTimeCode, error) {
	query := `
		SELECT ` + otpColumns + `
		FROM otps
		WHERE reset_token = $1 AND purpose = 'password-reset'
		LIMIT 1;
	`
	return r.scanOTP(r.db.QueryRow(ctx, query, token))
}

func (r *PostgresRepository) scanOTP(row pgx.Row) (*domain.OneTimeCode, error) {
	var code domain.OneTimeCode
	err := row.Scan(&code.UserID, &code.Email, &code.Code, &code.Purpose,
		&code.ExpiresAt, &code.Attempts, &code.MaxAttempts, &code.ResetToken)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan otp: %w", err)
	}

	return &code, nil
}

func (r *PostgresRepository) IncrementAttempts(ctx context.Context, userID string, purpose domain.Purpose) error {
	_, err := r.db.Exec(ctx, `
		UPDATE otps SET attempts = attempts + 1 WHERE user_id = $1 AND purpose = $2
	`, userID, purpose)

	return err
}

func (r *PostgresRepository) SetResetToken(ctx context.Context, userID string, purpose domain.Purpose, token string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE otps SET reset_token = $3 WHERE user_id = $1 AND purpose = $2
	`, userID, purpose, token)

	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, userID string, purpose domain.Purpose) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM otps WHERE user_id = $1 AND purpose = $2
	`, userID, purpose)

	return err
}
