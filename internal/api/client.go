// Package api implements the HTTP client for the upstream JSON APIs the
// overlay aggregates: the templated profile endpoint, the kick.com channel
// endpoint and the leaderboard sources.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MrChallah/cxhunt/internal/cache"
	"github.com/MrChallah/cxhunt/internal/constants"
	"github.com/MrChallah/cxhunt/internal/domain"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

type Client struct {
	http            *fasthttp.Client
	cache           *cache.Cache
	logger          zerolog.Logger
	profileTemplate string
	channelBase     string
}

// Option overrides a fixed endpoint, used by tests to point the client at
// stub servers.
type Option func(*Client)

func WithChannelBase(base string) Option {
	return func(c *Client) { c.channelBase = strings.TrimSuffix(base, "/") }
}

func WithProfileTemplate(template string) Option {
	return func(c *Client) { c.profileTemplate = template }
}

func New(profileTemplate string, store *cache.Cache, logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		http: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		cache:           store,
		logger:          logger.With().Str("component", "api").Logger(),
		profileTemplate: profileTemplate,
		channelBase:     constants.ChannelAPIBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON fetches and decodes url, consulting the cache first. The cache key
// is the exact resolved URL. One attempt only; retrying is the caller's call.
func (c *Client) GetJSON(ctx context.Context, rawURL string) (any, error) {
	if v, ok := c.cache.Get(rawURL); ok {
		c.logger.Debug().Str("url", rawURL).Msg("cache hit")
		return v, nil
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(rawURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	// Defeats intermediate HTTP caches, not our own cache.
	req.Header.Set(fasthttp.HeaderCacheControl, "no-cache")

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.http.DoDeadline(req, resp, deadline)
	} else {
		err = c.http.Do(req, resp)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreachable, rawURL, err)
	}

	status := resp.StatusCode()
	if status < fasthttp.StatusOK || status >= fasthttp.StatusMultipleChoices {
		return nil, &StatusError{URL: rawURL, Status: status}
	}

	var decoded any
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, rawURL, err)
	}

	c.cache.Set(rawURL, decoded)
	return decoded, nil
}

// GetProfile fetches the primary profile record for slug. This is the only
// upstream whose failure the enrichment pipeline treats as fatal.
func (c *Client) GetProfile(ctx context.Context, slug string) (domain.Record, error) {
	u := strings.ReplaceAll(c.profileTemplate, constants.SlugPlaceholder, url.PathEscape(slug))

	decoded, err := c.GetJSON(ctx, u)
	if err != nil {
		return nil, err
	}
	profile, ok := domain.FromAny(decoded)
	if !ok {
		return nil, fmt.Errorf("%w: %s: expected a JSON object", ErrMalformed, u)
	}
	return profile, nil
}

// GetChannel fetches the kick channel document for slug. It never fails:
// any network error, bad status or decode problem collapses to nil so the
// channel API's reliability cannot affect pipeline availability.
func (c *Client) GetChannel(ctx context.Context, slug string) domain.Record {
	u := c.channelBase + "/" + url.PathEscape(slug)

	decoded, err := c.GetJSON(ctx, u)
	if err != nil {
		c.logger.Debug().Err(err).Str("slug", slug).Msg("channel fetch failed, continuing without")
		return nil
	}
	channel, ok := domain.FromAny(decoded)
	if !ok {
		c.logger.Debug().Str("slug", slug).Msg("channel response was not an object, continuing without")
		return nil
	}
	return channel
}
