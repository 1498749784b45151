// Package leaderboard resolves the authoritative event leaderboard and
// computes a participant's corrected rank against it.
package leaderboard

import (
	"context"
	"sort"

	"github.com/MrChallah/cxhunt/internal/constants"
	"github.com/MrChallah/cxhunt/internal/domain"
	"github.com/rs/zerolog"
)

// Fetcher is the slice of the API client the resolver needs.
type Fetcher interface {
	GetJSON(ctx context.Context, url string) (any, error)
}

type Resolver struct {
	client  Fetcher
	sources []string
	logger  zerolog.Logger
}

type Option func(*Resolver)

// WithSources replaces the fixed candidate source URLs, used by tests.
func WithSources(urls ...string) Option {
	return func(r *Resolver) { r.sources = urls }
}

func NewResolver(client Fetcher, logger zerolog.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		client:  client,
		sources: constants.LeaderboardSources,
		logger:  logger.With().Str("component", "leaderboard").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rows fetches the leaderboard from the first candidate source that returns
// a non-empty list. A failing or empty source falls through to the next one;
// when every source is exhausted the result is empty, never an error.
func (r *Resolver) Rows(ctx context.Context) []domain.Record {
	for _, src := range r.sources {
		decoded, err := r.client.GetJSON(ctx, src)
		if err != nil {
			r.logger.Debug().Err(err).Str("source", src).Msg("leaderboard source failed, trying next")
			continue
		}

		list, ok := decoded.([]any)
		if !ok || len(list) == 0 {
			r.logger.Debug().Str("source", src).Msg("leaderboard source empty, trying next")
			continue
		}

		rows := make([]domain.Record, 0, len(list))
		for _, item := range list {
			if row, ok := domain.FromAny(item); ok {
				rows = append(rows, row)
			}
		}
		if len(rows) > 0 {
			r.logger.Debug().Str("source", src).Int("rows", len(rows)).Msg("leaderboard resolved")
			return rows
		}
	}
	return nil
}

// Match is the outcome of a successful rank computation.
type Match struct {
	// Rank is 1-based.
	Rank int

	// Points and Scans are the matched row's values, nil when the row
	// does not carry them.
	Points any
	Scans  any
}

// FindRank locates profile on the leaderboard. Preferred strategy is an
// exact points match against the rows sorted by points descending; identity
// matching on normalized username/slug is the fallback. Rows and profile are
// never modified.
func FindRank(rows []domain.Record, profile domain.Record) (*Match, bool) {
	if len(rows) == 0 {
		return nil, false
	}
	if m, ok := matchByPoints(rows, profile); ok {
		return m, true
	}
	return matchByIdentity(rows, profile)
}

type scoredRow struct {
	row    domain.Record
	points float64
}

func matchByPoints(rows []domain.Record, profile domain.Record) (*Match, bool) {
	target, ok := profile.Number("points")
	if !ok {
		return nil, false
	}

	ranked := make([]scoredRow, 0, len(rows))
	for _, row := range rows {
		if p, numeric := row.Number("points"); numeric {
			ranked = append(ranked, scoredRow{row: row, points: p})
		}
	}
	// Stable keeps ties in original leaderboard order, so the first of a
	// tied group wins.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].points > ranked[j].points
	})

	for i, s := range ranked {
		if s.points == target {
			return matchFromRow(s.row, i+1), true
		}
	}
	return nil, false
}

func matchByIdentity(rows []domain.Record, profile domain.Record) (*Match, bool) {
	name := domain.Normalize(profile["username"])
	slug := domain.Normalize(profile["kick_slug"])
	if slug == "" {
		slug = name
	}
	// A profile with no usable identity would otherwise match any row with
	// empty fields.
	if name == "" && slug == "" {
		return nil, false
	}

	for i, row := range rows {
		rowName := domain.Normalize(row["username"])
		rowSlug := domain.Normalize(row["slug"])
		if rowSlug == "" {
			rowSlug = domain.Normalize(row["kick_slug"])
		}
		if rowSlug == "" {
			rowSlug = rowName
		}
		if (name != "" && rowName == name) || (slug != "" && rowSlug == slug) {
			return matchFromRow(row, i+1), true
		}
	}

	// Last resort: username equality alone.
	if name != "" {
		for i, row := range rows {
			if domain.Normalize(row["username"]) == name {
				return matchFromRow(row, i+1), true
			}
		}
	}
	return nil, false
}

func matchFromRow(row domain.Record, rank int) *Match {
	m := &Match{Rank: rank}
	if v, ok := row["points"]; ok && v != nil {
		m.Points = v
	}
	if v, ok := row.First(domain.ScanKeys...); ok {
		m.Scans = v
	}
	return m
}
