package resolver

import (
	"context"
	"net/http"
	"time"
)

// Episode is a resolved audio source with display metadata.
type Episode struct {
	Title       string
	PodcastName string
	AudioURL    string
	PublishedAt string
	Duration    int // seconds, 0 when the source does not expose it
}

// Resolver locates the playable audio URL for an episode reference.
// The job pipeline treats it as an external collaborator: its failures
// surface through the normal step/error channel as ResolutionError.
type Resolver interface {
	// ResolveFeed finds the RSS feed URL for a podcast by name.
	ResolveFeed(ctx context.Context, podcastName string) (string, error)
	// ResolveEpisode picks the feed item best matching the episode
	// title. The duration hint is best-effort: the bonus only applies
	// when the caller has one and the feed exposes durations.
	ResolveEpisode(ctx context.Context, feedURL, episodeTitle string, durationHint int) (*Episode, error)
	// ResolvePage extracts the audio URL from an episode web page via
	// its OpenGraph tags.
	ResolvePage(ctx context.Context, pageURL string) (*Episode, error)
}

// HTTPResolver implements Resolver against the iTunes Search API,
// plain RSS feeds and OpenGraph-tagged episode pages.
type HTTPResolver struct {
	client    *http.Client
	searchURL string
}

// New returns a resolver with a bounded per-request timeout.
func New() *HTTPResolver {
	return &HTTPResolver{
		client:    &http.Client{Timeout: 30 * time.Second},
		searchURL: "https://itunes.apple.com/search",
	}
}

// NewWithClient is used by tests to point the resolver at a stub
// server.
func NewWithClient(client *http.Client, searchURL string) *HTTPResolver {
	return &HTTPResolver{client: client, searchURL: searchURL}
}
