package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/MrChallah/cxhunt/internal/config"
	"github.com/MrChallah/cxhunt/internal/constants"
	fxmodules "github.com/MrChallah/cxhunt/internal/fx"
	applog "github.com/MrChallah/cxhunt/internal/logger"
	"github.com/MrChallah/cxhunt/internal/middleware"
	"github.com/MrChallah/cxhunt/internal/server"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	overlayServer *server.OverlayServer,
	cfg *config.Config,
	logger zerolog.Logger,
) {
	logger = applog.WithLevel(logger, cfg.LogLevel)

	mux := http.NewServeMux()
	overlayServer.Register(mux)

	// The overlay page is loaded as a browser source from anywhere.
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	handler := middleware.RequestID(logger)(c.Handler(mux))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: handler,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("overlay server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
