package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/soundroom/soundroom/internal/api"
	"github.com/soundroom/soundroom/internal/config"
	"github.com/soundroom/soundroom/internal/database"
	"github.com/soundroom/soundroom/internal/janitor"
	"github.com/soundroom/soundroom/internal/logger"
	"github.com/soundroom/soundroom/internal/room"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Optional .env for local development; env vars feed viper.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	defer log.Close()

	log.Info().
		Str("logLevel", cfg.Logging.Level).
		Str("audioRoot", cfg.Audio.Root).
		Msg("starting soundroom")

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	hub := room.NewHub(log.Logger)
	go hub.Run()

	server := api.NewServer(db.Conn(), hub, cfg, log.Logger)

	jan, err := janitor.NewService(
		server.Store(),
		server.History(),
		time.Duration(cfg.Audio.RetentionHours)*time.Hour,
		log.Logger,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create janitor")
	}
	if err := jan.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start janitor")
	}

	go func() {
		log.Info().Str("address", cfg.Server.Address()).Msg("HTTP server listening")
		if err := server.Start(cfg.Server.Address()); err != nil {
			log.Info().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := jan.Stop(); err != nil {
		log.Warn().Err(err).Msg("janitor shutdown error")
	}
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
}
