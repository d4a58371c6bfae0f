package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/neologisms/internal/config"
	"github.com/robalobadob/neologisms/internal/httpserver"
	"github.com/robalobadob/neologisms/internal/realtime"
	"github.com/robalobadob/neologisms/internal/session"
	"github.com/robalobadob/neologisms/internal/store"
	"github.com/robalobadob/neologisms/internal/words"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := words.Init(cfg.WordsFile); err != nil {
		log.Fatal().Err(err).Msg("failed to load dictionary")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := store.Open(ctx, store.Options{
		Driver:   cfg.StoreDriver,
		RedisURL: cfg.RedisURL,
		DBPath:   cfg.DatabasePath,
	})
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	defer backend.Close()

	hub := realtime.NewHub()
	games := session.Serialize(session.New(store.NewGames(backend, cfg.KeyPrefix), hub))
	srv := httpserver.New(cfg, games, backend, hub)

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("starting server")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
