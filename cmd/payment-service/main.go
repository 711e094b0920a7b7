package main

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog/log"

	"github.com/tahachak1/e-biblio/config"
	"github.com/tahachak1/e-biblio/db"
	otpservice "github.com/tahachak1/e-biblio/internal/otp/service"
	"github.com/tahachak1/e-biblio/internal/payment/handler"
	pgrepo "github.com/tahachak1/e-biblio/internal/payment/repository/postgres"
	"github.com/tahachak1/e-biblio/internal/payment/service"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	if err := db.Migrate(cfg.DBURL); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	dbPool, err := db.NewPostgresPool(ctx, cfg.DBURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer dbPool.Close()

	if cfg.StripeSecretKey == "" {
		log.Warn().Msg("STRIPE_SECRET_KEY not set, card processing disabled")
	}

	repo := pgrepo.NewPaymentRepository(dbPool)
	tokenService := otpservice.NewTokenService(cfg.JWTSecret, cfg.TokenExpiryMin)
	paymentService := service.NewPaymentService(repo, cfg.StripeSecretKey, cfg.StripeDefaultCurrency)
	paymentHandler := handler.NewPaymentHandler(paymentService, tokenService)

	app := fiber.New()
	app.Use(cors.New())
	handler.RegisterRoutes(app, paymentHandler)

	log.Info().Str("port", cfg.Port).Msg("payment-service listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
