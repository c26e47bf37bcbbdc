package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arnavshah/club-teams-api/pkg/app"
	"github.com/arnavshah/club-teams-api/pkg/config"
	"github.com/arnavshah/club-teams-api/pkg/logger"
)

func main() {
	log := logger.New("info")
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}

	log = logger.New(cfg.LogLevel)

	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("could not start")
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           a.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("could not run server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("server shutdown")
	}

	if err := a.Close(); err != nil {
		log.Warn().Err(err).Msg("database close")
	}
	log.Info().Msg("server stopped")
}
