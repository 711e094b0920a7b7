package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/tahachak1/e-biblio/internal/payment/domain"
	"github.com/tahachak1/e-biblio/internal/payment/dto"
)

var (
	ErrInvalidCard     = errors.New("invalid card number")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrInvalidCurrency = errors.New("currency must be a 3-letter code (ex: usd, eur)")
	ErrStripeDisabled  = errors.New("card processor is not configured")
	ErrMethodNotFound  = errors.New("payment method not found")
)

type PaymentService struct {
	repo            domain.PaymentRepository
	stripe          *client.API
	defaultCurrency string
}

func NewPaymentService(repo domain.PaymentRepository, stripeKey, defaultCurrency string) *PaymentService {
	var sc *client.API
	if stripeKey != "" {
		sc = &client.API{}
		sc.Init(stripeKey, nil)
	}
	return &PaymentService{
		repo:            repo,
		stripe:          sc,
		defaultCurrency: strings.ToLower(defaultCurrency),
	}
}

func (s *PaymentService) ListMethods(ctx context.Context, userID string) ([]domain.PaymentMethod, error) {
	return s.repo.ListMethods(ctx, userID)
}

func (s *PaymentService) AddMethod(ctx context.Context, userID string, input dto.PaymentMethodInput) (*domain.PaymentMethod, error) {
	digits := onlyDigits(input.CardNumber)
	if len(digits) < 4 {
		return nil, ErrInvalidCard
	}

	count, err := s.repo.CountMethods(ctx, userID)
	if err != nil {
		return nil, err
	}

	methodType := input.Type
	if methodType == "" {
		methodType = "carte"
	}

	method := &domain.PaymentMethod{
		ID:             uuid.NewString(),
		UserID:         userID,
		Type:           methodType,
		Brand:          DetectBrand(digits),
		Last4:          digits[len(digits)-4:],
		CardholderName: input.CardName,
		ExpiresAt:      input.CardExpiry,
		IsDefault:      count == 0, // first card becomes the default
		Status:         "valid",
		CreatedAt:      time.Now(),
	}

	if err := s.repo.CreateMethod(ctx, method); err != nil {
		return nil, err
	}

	return method, nil
}

func (s *PaymentService) DeleteMethod(ctx context.Context, userID, methodID string) error {
	return s.repo.DeleteMethod(ctx, userID, methodID)
}

func (s *PaymentService) DeleteAllMethods(ctx context.Context, userID string) error {
	return s.repo.DeleteAllMethods(ctx, userID)
}

func (s *PaymentService) SetDefaultMethod(ctx context.Context, userID, methodID string) error {
	found, err := s.repo.SetDefaultMethod(ctx, userID, methodID)
	if err != nil {
		return err
	}
	if !found {
		return ErrMethodNotFound
	}
	return nil
}

func (s *PaymentService) CreateIntent(ctx context.Context, userID string, input dto.PaymentIntentInput) (*dto.PaymentIntentOutput, error) {
	if s.stripe == nil {
		return nil, ErrStripeDisabled
	}

	amountCents, err := ToCents(input.Amount)
	if err != nil {
		return nil, err
	}

	currency := strings.ToLower(input.Currency)
	if currency == "" {
		currency = s.defaultCurrency
	}
	if len(currency) != 3 {
		return nil, ErrInvalidCurrency
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if input.Description != "" {
		params.Description = stripe.String(input.Description)
	}
	if input.PaymentMethodID != "" {
		params.PaymentMethod = stripe.String(input.PaymentMethodID)
		params.Confirm = stripe.Bool(input.Confirm)
	}
	for k, v := range input.Metadata {
		params.AddMetadata(k, v)
	}
	params.AddMetadata("userId", userID)

	intent, err := s.stripe.PaymentIntents.New(params)
	if err != nil {
		return nil, err
	}

	record := &domain.PaymentIntentRecord{
		ID:              uuid.NewString(),
		UserID:          userID,
		PaymentIntentID: intent.ID,
		Amount:          amountCents,
		Currency:        currency,
		Status:          string(intent.Status),
		Description:     input.Description,
		CreatedAt:       time.Now(),
	}
	if err := s.repo.CreateIntentRecord(ctx, record); err != nil {
		return nil, err
	}

	return &dto.PaymentIntentOutput{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Status:          string(intent.Status),
		Amount:          amountCents,
		Currency:        currency,
	}, nil
}

func (s *PaymentService) GetIntent(ctx context.Context, intentID string) (*stripe.PaymentIntent, error) {
	if s.stripe == nil {
		return nil, ErrStripeDisabled
	}
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	return s.stripe.PaymentIntents.Get(intentID, params)
}

func (s *PaymentService) ListIntents(ctx context.Context, userID string) ([]domain.PaymentIntentRecord, error) {
	return s.repo.ListIntentRecords(ctx, userID)
}

// ToCents converts a decimal amount to integer cents, rejecting non-positive
// values.
func ToCents(amount float64) (int64, error) {
	cents := int64(math.Round(amount * 100))
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// DetectBrand guesses the card network from the leading digits.
func DetectBrand(digits string) string {
	if strings.HasPrefix(digits, "4") {
		return "VISA"
	}
	if len(digits) >= 2 {
		switch digits[:2] {
		case "51", "52", "53", "54", "55":
			return "Mastercard"
		}
	}
	return "Carte"
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		}
	}
	return b.String()
}
