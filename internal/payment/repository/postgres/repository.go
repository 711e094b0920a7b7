package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tahachak1/e-biblio/internal/payment/domain"
)

type PgxIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PaymentRepository struct {
	db PgxIface
}

func NewPaymentRepository(db PgxIface) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) ListMethods(ctx context.Context, userID string) ([]domain.PaymentMethod, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, type, brand, last4, cardholder_name, expires_at, is_default, status, created_at
		FROM payment_methods
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	defer rows.Close()

	methods := make([]domain.PaymentMethod, 0)
	for rows.Next() {
		var m domain.PaymentMethod
		if err := rows.Scan(&m.ID, &m.UserID, &m.Type, &m.Brand, &m.Last4,
			&m.CardholderName, &m.ExpiresAt, &m.IsDefault, &m.Status, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment method: %w", err)
		}
		methods = append(methods, m)
	}

	return methods, rows.Err()
}

func (r *PaymentRepository) CountMethods(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM payment_methods WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

func (r *PaymentRepository) CreateMethod(ctx context.Context, m *domain.PaymentMethod) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO payment_methods (id, user_id, type, brand, last4, cardholder_name,
			expires_at, is_default, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, m.ID, m.UserID, m.Type, m.Brand, m.Last4, m.CardholderName,
		m.ExpiresAt, m.IsDefault, m.Status, m.CreatedAt)

	return err
}

func (r *PaymentRepository) DeleteMethod(ctx context.Context, userID, methodID string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM payment_methods WHERE id = $1 AND user_id = $2
	`, methodID, userID)

	return err
}

func (r *PaymentRepository) DeleteAllMethods(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM payment_methods WHERE user_id = $1`, userID)
	return err
}

func (r *PaymentRepository) SetDefaultMethod(ctx context.Context, userID, methodID string) (bool, error) {
	if _, err := r.db.Exec(ctx, `
		UPDATE payment_methods SET is_default = FALSE WHERE user_id = $1
	`, userID); err != nil {
		return false, err
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE payment_methods SET is_default = TRUE WHERE id = $1 AND user_id = $2
	`, methodID, userID)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

func (r *PaymentRepository) CreateIntentRecord(ctx context.Context, rec *domain.PaymentIntentRecord) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO payment_intents (id, user_id, payment_intent_id, amount, currency,
			status, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rec.ID, rec.UserID, rec.PaymentIntentID, rec.Amount, rec.Currency,
		rec.Status, rec.Description, rec.CreatedAt)

	return err
}

func (r *PaymentRepository) ListIntentRecords(ctx context.Context, userID string) ([]domain.PaymentIntentRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, payment_intent_id, amount, currency, status, description, created_at
		FROM payment_intents
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment intents: %w", err)
	}
	defer rows.Close()

	records := make([]domain.PaymentIntentRecord, 0)
	for rows.Next() {
		var rec domain.PaymentIntentRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.PaymentIntentID, &rec.Amount,
			&rec.Currency, &rec.Status, &rec.Description, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment intent: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
