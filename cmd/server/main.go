package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/girrex/roster-web/internal/config"
	"github.com/girrex/roster-web/internal/girrex"
	httpapi "github.com/girrex/roster-web/internal/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "roster-web").Logger()

	var client girrex.Client
	if cfg.GirrexAPIURL == "" {
		client = girrex.NewMock()
		logger.Info().Msg("using mock GIRREX client")
	} else {
		client = &girrex.HTTPClient{
			BaseURL:   cfg.GirrexAPIURL,
			CSRFToken: cfg.GirrexCSRFToken,
			Client:    &http.Client{Timeout: cfg.RequestTimeout},
		}
	}

	router := httpapi.Router(cfg, client, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
