package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"folderr-backend/internal/api"
	"folderr-backend/internal/config"
	"folderr-backend/internal/database"
	"folderr-backend/internal/models"
	"folderr-backend/internal/storage"
	"folderr-backend/internal/tasks"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	models.FolderEmailDomain = cfg.Folders.EmailDomain

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := database.Initialize(cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	if err := models.Migrate(database.GetDB()); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	if err := storage.Initialize(cfg.Storage); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize object storage")
	}

	if err := tasks.Connect(cfg.NATS.URL); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to NATS")
	}
	defer tasks.Close()

	router := gin.Default()
	api.SetupRoutes(router)

	log.Info().Str("port", cfg.Server.Port).Msg("starting API server")
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
