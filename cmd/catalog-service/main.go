package main

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog/log"

	"github.com/tahachak1/e-biblio/config"
	"github.com/tahachak1/e-biblio/db"
	"github.com/tahachak1/e-biblio/internal/catalog/handler"
	repo "github.com/tahachak1/e-biblio/internal/catalog/repository/postgres"
)

func main() {
	cfg := config.Load()

	dbPool, err := db.NewPostgresPool(context.Background(), cfg.DBURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer dbPool.Close()

	catalogHandler := handler.NewCatalogHandler(repo.NewBookRepository(dbPool))

	app := fiber.New()
	app.Use(cors.New())
	handler.RegisterRoutes(app, catalogHandler)

	log.Info().Str("port", cfg.Port).Msg("catalog-service listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
