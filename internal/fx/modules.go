package fx

import (
	"github.com/MrChallah/cxhunt/internal/api"
	"github.com/MrChallah/cxhunt/internal/cache"
	"github.com/MrChallah/cxhunt/internal/config"
	"github.com/MrChallah/cxhunt/internal/leaderboard"
	"github.com/MrChallah/cxhunt/internal/logger"
	"github.com/MrChallah/cxhunt/internal/repository"
	"github.com/MrChallah/cxhunt/internal/server"
	"github.com/MrChallah/cxhunt/internal/service"
	"github.com/rs/zerolog"

	"go.uber.org/fx"
)

func ProvideCache(cfg *config.Config) *cache.Cache {
	return cache.New(cfg.CacheTTL)
}

func ProvideClient(cfg *config.Config, store *cache.Cache, log zerolog.Logger) *api.Client {
	return api.New(cfg.UpstreamTemplate, store, log)
}

func ProvideResolver(client *api.Client, log zerolog.Logger) *leaderboard.Resolver {
	return leaderboard.NewResolver(client, log)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(ProvideCache),
	// upstream client + leaderboard
	fx.Provide(ProvideClient),
	fx.Provide(ProvideResolver),
	// stale-result store
	fx.Provide(repository.NewOverlayStore),
	// pipeline
	fx.Provide(service.NewOverlayService),
	// http surface
	fx.Provide(server.NewOverlayServer),
)
