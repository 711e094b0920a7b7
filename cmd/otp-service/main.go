package main

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog/log"

	"github.com/tahachak1/e-biblio/config"
	"github.com/tahachak1/e-biblio/db"
	"github.com/tahachak1/e-biblio/internal/notify"
	"github.com/tahachak1/e-biblio/internal/otp/domain"
	"github.com/tahachak1/e-biblio/internal/otp/handler"
	pgrepo "github.com/tahachak1/e-biblio/internal/otp/repository/postgres"
	redisrepo "github.com/tahachak1/e-biblio/internal/otp/repository/redis"
	"github.com/tahachak1/e-biblio/internal/otp/service"
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

	repo := pgrepo.NewPostgresRepository(dbPool)

	var otps domain.OTPRepository = repo
	if cfg.OTPStore == "redis" {
		otps = redisrepo.NewOTPRedisRepository(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis otp store")
	}

	mailer := notify.NewMailer(cfg.EmailHost, cfg.EmailPort, cfg.EmailUser, cfg.EmailPass, cfg.EmailFrom, cfg.OTPExpiryMin)
	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.TokenExpiryMin)
	accountService := service.NewAccountService(repo, otps, tokenService, mailer, cfg)
	otpHandler := handler.NewOTPHandler(accountService)

	app := fiber.New()
	app.Use(cors.New())
	handler.RegisterRoutes(app, otpHandler)

	log.Info().Str("port", cfg.Port).Msg("otp-service listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
