package constants

import "time"

const (
	// DefaultCacheTTL bounds how long upstream responses are reused.
	DefaultCacheTTL = 2 * time.Second

	ExternalAPITimeout = 10 * time.Second
	RequestTimeout     = 30 * time.Second
	ShutdownTimeout    = 5 * time.Second
)

const (
	// SlugPlaceholder is the token substituted in UPSTREAM_TEMPLATE.
	SlugPlaceholder = "{kick}"

	// ChannelAPIBase is the kick.com channel endpoint; the percent-encoded
	// slug is appended as a path segment.
	ChannelAPIBase = "https://kick.com/api/v2/channels"
)

// LeaderboardSources are tried in order; the first source that yields a
// non-empty list wins.
var LeaderboardSources = []string{
	"https://viewerapi.iceposeidon.com/viewer.leaderboard",
	"https://api.iceposeidon.com/viewer/leaderboard",
}
