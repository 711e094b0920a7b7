package handler

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App, h *OTPHandler) {
	app.Get("/", h.Health)

	app.Post("/otp/register", h.Register)
	app.Post("/otp/verify", h.Verify)
	app.Post("/otp/login", h.RequestLoginCode)
	app.Post("/otp/resend", h.Resend)

	reset := app.Group("/otp/password-reset")
	reset.Post("/request", h.RequestPasswordReset)
	reset.Post("/verify", h.VerifyPasswordReset)
	reset.Post("/complete", h.CompletePasswordReset)
}
