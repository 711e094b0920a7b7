package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	autherror "github.com/tahachak1/e-biblio/internal/errors"
	"github.com/tahachak1/e-biblio/internal/otp/dto"
	"github.com/tahachak1/e-biblio/internal/otp/service"
)

var validate = validator.New()

type OTPHandler struct {
	accounts *service.AccountService
}

func NewOTPHandler(accounts *service.AccountService) *OTPHandler {
	return &OTPHandler{accounts: accounts}
}

func (h *OTPHandler) Register(c *fiber.Ctx) error {
	var input dto.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid input")
	}
	if err := validate.Struct(input); err != nil {
		return badRequest(c, err.Error())
	}

	userID, err := h.accounts.Register(c.Context(), input)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Code OTP envoyé",
		"userId":  userID,
	})
}

func (h *OTPHandler) Verify(c *fiber.Ctx) error {
	var input dto.VerifyInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid input")
	}
	if err := validate.Struct(input); err != nil {
		return badRequest(c, err.Error())
	}

	token, user, err := h.accounts.Verify(c.Context(), input)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(dto.VerifyOutput{
		Success: true,
		Message: "Vérification réussie",
		Token:   token,
		User:    user,
	})
}

func (h *OTPHandler) RequestLoginCode(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid input")
	}
	if err := validate.Struct(input); err != nil {
		return badRequest(c, err.Error())
	}

	userID, err := h.accounts.RequestLoginCode(c.Context(), input.Identifier)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Code envoyé",
		"userId":  userID,
	})
}

func (h *OTPHandler) Resend(c *fiber.Ctx) error {
	var input dto.ResendInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid input")
	}
	if err := validate.Struct(input); err != nil {
		return badRequest(c, err.Error())
	}

	userID, err := h.accounts.Resend(c.Context(), input)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Nouveau code envoyé",
		"userId":  userID,
	})
}

func (h *OTPHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var input dto.PasswordResetRequestInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid input")
	}
	if err := validate.Struct(input); err != nil {
		return badRequest(c, err.Error())
	}

	userID, err := h.accounts.RequestPasswordReset(c.Context(), input.Identifier)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Code envoyé",
		"userId":  userID,
	})
}

func (h *OTPHandler) VerifyPasswordReset(c *fiber.Ctx) error {
	var input dto.PasswordResetVerifyInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid input")
	}
	if err := validate.Struct(input); err != nil {
		return badRequest(c, err.Error())
	}

	resetToken, err := h.accounts.VerifyPasswordResetCode(c.Context(), input)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":    true,
		"message":    "OTP vérifié",
		"resetToken": resetToken,
	})
}

func (h *OTPHandler) CompletePasswordReset(c *fiber.Ctx) error {
	var input dto.PasswordResetCompleteInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid input")
	}
	if err := validate.Struct(input); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.accounts.CompletePasswordReset(c.Context(), input); err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Mot de passe réinitialisé",
	})
}

func (h *OTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "otp-service ok"})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// fail maps service errors to the HTTP statuses of the public contract.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, autherror.ErrUserNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, autherror.ErrTooManyAttempts):
		status = fiber.StatusTooManyRequests
	case errors.Is(err, autherror.ErrAccountInactive):
		status = fiber.StatusForbidden
	case errors.Is(err, autherror.ErrAccountAlreadyActive),
		errors.Is(err, autherror.ErrOTPNotFound),
		errors.Is(err, autherror.ErrOTPExpired),
		errors.Is(err, autherror.ErrInvalidCode),
		errors.Is(err, autherror.ErrInvalidResetToken),
		errors.Is(err, autherror.ErrInvalidInput):
		status = fiber.StatusBadRequest
	case errors.Is(err, autherror.ErrNotificationFailed):
		status = fiber.StatusInternalServerError
	}

	if status != fiber.StatusInternalServerError || errors.Is(err, autherror.ErrNotificationFailed) {
		message = err.Error()
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}
