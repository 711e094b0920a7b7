package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v79"

	"github.com/tahachak1/e-biblio/internal/otp/service"
	"github.com/tahachak1/e-biblio/internal/payment/domain"
	"github.com/tahachak1/e-biblio/internal/payment/dto"
	paysvc "github.com/tahachak1/e-biblio/internal/payment/service"
)

var validate = validator.New()

const userIDKey = "userID"

type PaymentHandler struct {
	payments *paysvc.PaymentService
	tokens   service.TokenGenerator
}

func NewPaymentHandler(payments *paysvc.PaymentService, tokens service.TokenGenerator) *PaymentHandler {
	return &PaymentHandler{payments: payments, tokens: tokens}
}

// RequireAuth extracts and verifies the bearer token issued by the OTP
// service; both services share the signing secret.
func (h *PaymentHandler) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing token"})
		}

		claims, err := h.tokens.VerifyAccessToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil || claims.UserID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}

		c.Locals(userIDKey, claims.UserID)
		return c.Next()
	}
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

type methodOutput struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Type           string    `json:"type"`
	Brand          string    `json:"brand"`
	Last4          string    `json:"last4"`
	CardholderName string    `json:"cardholderName"`
	ExpiresAt      string    `json:"expiresAt"`
	IsDefault      bool      `json:"isDefault"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

func newMethodOutput(m domain.PaymentMethod) methodOutput {
	return methodOutput{
		ID:             m.ID,
		UserID:         m.UserID,
		Type:           m.Type,
		Brand:          m.Brand,
		Last4:          m.Last4,
		CardholderName: m.CardholderName,
		ExpiresAt:      m.ExpiresAt,
		IsDefault:      m.IsDefault,
		Status:         m.Status,
		CreatedAt:      m.CreatedAt,
	}
}

func (h *PaymentHandler) ListMethods(c *fiber.Ctx) error {
	methods, err := h.payments.ListMethods(c.Context(), userID(c))
	if err != nil {
		return internalError(c)
	}

	out := make([]methodOutput, 0, len(methods))
	for _, m := range methods {
		out = append(out, newMethodOutput(m))
	}
	return c.JSON(out)
}

func (h *PaymentHandler) AddMethod(c *fiber.Ctx) error {
	var input dto.PaymentMethodInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid input")
	}
	if err := validate.Struct(input); err != nil {
		return badRequest(c, err.Error())
	}

	method, err := h.payments.AddMethod(c.Context(), userID(c), input)
	if err != nil {
		if errors.Is(err, paysvc.ErrInvalidCard) {
			return badRequest(c, err.Error())
		}
		return internalError(c)
	}

	return c.JSON(newMethodOutput(*method))
}

func (h *PaymentHandler) DeleteMethod(c *fiber.Ctx) error {
	if err := h.payments.DeleteMethod(c.Context(), userID(c), c.Params("id")); err != nil {
		return internalError(c)
	}
	return c.JSON(fiber.Map{"message": "payment method deleted"})
}

func (h *PaymentHandler) DeleteAllMethods(c *fiber.Ctx) error {
	if err := h.payments.DeleteAllMethods(c.Context(), userID(c)); err != nil {
		return internalError(c)
	}
	return c.JSON(fiber.Map{"message": "payment methods deleted"})
}

func (h *PaymentHandler) SetDefaultMethod(c *fiber.Ctx) error {
	if err := h.payments.SetDefaultMethod(c.Context(), userID(c), c.Params("id")); err != nil {
		if errors.Is(err, paysvc.ErrMethodNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return internalError(c)
	}
	return c.JSON(fiber.Map{"message": "default payment method updated"})
}

func (h *PaymentHandler) CreateIntent(c *fiber.Ctx) error {
	var input dto.PaymentIntentInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid input")
	}
	if err := validate.Struct(input); err != nil {
		return badRequest(c, err.Error())
	}

	out, err := h.payments.CreateIntent(c.Context(), userID(c), input)
	if err != nil {
		return stripeFail(c, err)
	}

	return c.JSON(out)
}

func (h *PaymentHandler) GetIntent(c *fiber.Ctx) error {
	intent, err := h.payments.GetIntent(c.Context(), c.Params("id"))
	if err != nil {
		return stripeFail(c, err)
	}

	return c.JSON(fiber.Map{
		"id":          intent.ID,
		"status":      intent.Status,
		"amount":      intent.Amount,
		"currency":    intent.Currency,
		"description": intent.Description,
	})
}

func (h *PaymentHandler) ListIntents(c *fiber.Ctx) error {
	records, err := h.payments.ListIntents(c.Context(), userID(c))
	if err != nil {
		return internalError(c)
	}

	items := make([]fiber.Map, 0, len(records))
	for _, rec := range records {
		items = append(items, fiber.Map{
			"id":              rec.ID,
			"userId":          rec.UserID,
			"paymentIntentId": rec.PaymentIntentID,
			"amount":          rec.Amount,
			"currency":        rec.Currency,
			"status":          rec.Status,
			"description":     rec.Description,
			"createdAt":       rec.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"items": items})
}

func (h *PaymentHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "payment-service ok"})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}

// stripeFail surfaces processor rejections as 400s with the user-facing
// message when one exists.
func stripeFail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, paysvc.ErrInvalidAmount), errors.Is(err, paysvc.ErrInvalidCurrency):
		return badRequest(c, err.Error())
	case errors.Is(err, paysvc.ErrStripeDisabled):
		return internalError(c)
	}

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		msg := stripeErr.Msg
		if msg == "" {
			msg = "payment processor error"
		}
		return badRequest(c, msg)
	}

	return internalError(c)
}
