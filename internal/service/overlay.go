// Package service implements the enrichment pipeline that assembles the
// overlay payload from the three upstream sources.
package service

import (
	"context"

	"github.com/MrChallah/cxhunt/internal/api"
	"github.com/MrChallah/cxhunt/internal/constants"
	"github.com/MrChallah/cxhunt/internal/domain"
	"github.com/MrChallah/cxhunt/internal/leaderboard"
	"github.com/MrChallah/cxhunt/internal/repository"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type OverlayService struct {
	client   *api.Client
	resolver *leaderboard.Resolver
	store    *repository.OverlayStore
	logger   zerolog.Logger
}

func NewOverlayService(client *api.Client, resolver *leaderboard.Resolver, store *repository.OverlayStore, logger zerolog.Logger) *OverlayService {
	return &OverlayService{
		client:   client,
		resolver: resolver,
		store:    store,
		logger:   logger.With().Str("component", "overlay").Logger(),
	}
}

// BuildOverlay fetches the profile for slug, enriches it with channel
// live-status and leaderboard rank correction, and returns the merged
// payload. Only a primary profile failure is fatal; the channel and
// leaderboard sources degrade silently. On success the payload is recorded
// in the last-good store under both the requested and the resolved slug.
func (s *OverlayService) BuildOverlay(ctx context.Context, slug string) (domain.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	s.logger.Info().Str("slug", slug).Msg("building overlay")

	profileCtx, profileCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer profileCancel()

	profile, err := s.client.GetProfile(profileCtx, slug)
	if err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Msg("primary profile fetch failed")
		return nil, &EnrichmentError{Slug: slug, Cause: err}
	}

	effective := profile.Str("kick_slug")
	if effective == "" {
		effective = slug
	}

	// Channel status and leaderboard are independent and failure-absorbing,
	// so they run in parallel and the group never errors.
	var (
		channel domain.Record
		rows    []domain.Record
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		chCtx, chCancel := context.WithTimeout(gctx, constants.ExternalAPITimeout)
		defer chCancel()
		channel = s.client.GetChannel(chCtx, effective)
		return nil
	})
	g.Go(func() error {
		lbCtx, lbCancel := context.WithTimeout(gctx, constants.ExternalAPITimeout)
		defer lbCancel()
		rows = s.resolver.Rows(lbCtx)
		return nil
	})
	_ = g.Wait()

	var avatar any
	isLive := false
	if channel != nil {
		if user, ok := channel.At("user"); ok {
			if pic, ok := user.First("profile_pic"); ok {
				avatar = pic
			}
		}
		if stream, ok := channel.At("livestream"); ok {
			isLive = stream.Bool("is_live")
		}
	}

	payload := profile.Clone()

	if m, ok := leaderboard.FindRank(rows, profile); ok {
		payload["leaderboard_ranking"] = m.Rank
		if m.Points != nil {
			payload["points"] = m.Points
		}
		if m.Scans != nil {
			payload["rfids_scanned"] = m.Scans
		}
		s.logger.Debug().Str("slug", slug).Int("rank", m.Rank).Msg("leaderboard correction applied")
	}

	if rank, ok := payload.First(domain.RankKeys...); ok {
		payload["display_rank"] = rank
	}
	if scans, ok := payload.First(domain.ScanKeys...); ok {
		payload["rfids_scanned"] = scans
	}

	username := any(slug)
	if v, ok := payload.First(domain.UsernameKeys...); ok {
		username = v
	}
	payload["username"] = username

	payload["avatar"] = avatar
	payload["is_live"] = isLive

	s.store.Record(slug, payload)
	if effective != slug {
		s.store.Record(effective, payload)
	}

	s.logger.Info().Str("slug", slug).Str("resolved_slug", effective).Bool("is_live", isLive).Msg("overlay built")
	return payload, nil
}
