package main

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog/log"

	"github.com/tahachak1/e-biblio/config"
	"github.com/tahachak1/e-biblio/db"
	catalogdomain "github.com/tahachak1/e-biblio/internal/catalog/domain"
	catalogrepo "github.com/tahachak1/e-biblio/internal/catalog/repository/postgres"
	"github.com/tahachak1/e-biblio/internal/chat/handler"
	"github.com/tahachak1/e-biblio/internal/chat/service"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// Catalog grounding is best effort: without a database the assistant
	// still answers, just without the book context.
	var books catalogdomain.BookRepository
	dbPool, err := db.NewPostgresPool(ctx, cfg.DBURL)
	if err != nil {
		log.Warn().Err(err).Msg("database unavailable, catalog grounding disabled")
	} else {
		defer dbPool.Close()
		books = catalogrepo.NewBookRepository(dbPool)
	}

	if cfg.OpenAIAPIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY not set, /chat will reject requests")
	}

	chatService := service.NewChatService(cfg.OpenAIAPIKey, cfg.OpenAIModel, books)
	chatHandler := handler.NewChatHandler(chatService)

	app := fiber.New()
	app.Use(cors.New())
	handler.RegisterRoutes(app, chatHandler)

	log.Info().Str("port", cfg.Port).Msg("chat-service listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
