package domain

import (
	"context"
	"time"
)

type PaymentMethod struct {
	ID             string
	UserID         string
	Type           string
	Brand          string
	Last4          string
	CardholderName string
	ExpiresAt      string
	IsDefault      bool
	Status         string
	CreatedAt      time.Time
}

// PaymentIntentRecord is the local trace of an intent created at the card
// processor; the processor remains the source of truth for its status.
type PaymentIntentRecord struct {
	ID              string
	UserID          string
	PaymentIntentID string
	Amount          int64
	Currency        string
	Status          string
	Description     string
	CreatedAt       time.Time
}

type PaymentRepository interface {
	ListMethods(ctx context.Context, userID string) ([]PaymentMethod, error)
	CountMethods(ctx context.Context, userID string) (int, error)
	CreateMethod(ctx context.Context, method *PaymentMethod) error
	DeleteMethod(ctx context.Context, userID, methodID string) error
	DeleteAllMethods(ctx context.Context, userID string) error
	// SetDefaultMethod clears the default flag on every other method of the
	// user; it reports whether the target method existed.
	SetDefaultMethod(ctx context.Context, userID, methodID string) (bool, error)

	CreateIntentRecord(ctx context.Context, record *PaymentIntentRecord) error
	ListIntentRecords(ctx context.Context, userID string) ([]PaymentIntentRecord, error)
}
