package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"folderr-backend/internal/config"
	"folderr-backend/internal/database"
	"folderr-backend/internal/mailer"
	"folderr-backend/internal/storage"
	"folderr-backend/internal/tasks"
	"folderr-backend/internal/worker"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if err := database.Initialize(cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	if err := storage.Initialize(cfg.Storage); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize object storage")
	}
	if err := tasks.Connect(cfg.NATS.URL); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to NATS")
	}
	defer tasks.Close()

	w := worker.New(mailer.New(cfg))
	if err := w.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start worker")
	}
	log.Info().Msg("worker running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("worker shutting down")
}
