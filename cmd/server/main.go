package main

import (
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/campusmart/internal/apperrors"
	"github.com/example/campusmart/internal/config"
	"github.com/example/campusmart/internal/database"
	"github.com/example/campusmart/internal/logger"
	"github.com/example/campusmart/internal/routes"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.DevMode)
	db := database.Connect(cfg.DatabaseURL)

	app := fiber.New(fiber.Config{
		AppName:      "CampusMart Backend",
		ErrorHandler: apperrors.ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())

	if err := routes.Register(app, db, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("failed to wire routes")
	}

	log.Info().Str("port", cfg.AppPort).Msg("starting server")
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatal().Err(err).Msg("fiber.Listen error")
	}
}
