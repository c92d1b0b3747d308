package resolver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	perrors "podscribe/internal/app/errors"
)

type itunesSearchResponse struct {
	ResultCount int                  `json:"resultCount"`
	Results     []itunesSearchResult `json:"results"`
}

type itunesSearchResult struct {
	Kind           string `json:"kind"`
	CollectionName string `json:"collectionName"`
	ArtistName     string `json:"artistName"`
	FeedURL        string `json:"feedUrl"`
}

// ResolveFeed searches the iTunes podcast directory and returns the
// first result that carries a feed URL.
func (r *HTTPResolver) ResolveFeed(ctx context.Context, podcastName string) (string, error) {
	query := url.Values{
		"term":  {podcastName},
		"media": {"podcast"},
		"limit": {"5"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.searchURL+"?"+query.Encode(), nil)
	if err != nil {
		return "", perrors.Wrap(err, perrors.KindResolution, "build podcast search request")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", perrors.Wrapf(err, perrors.KindResolution, "search podcast %q", podcastName)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", perrors.Resolution("podcast search for %q: unexpected status %s", podcastName, resp.Status)
	}

	var result itunesSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", perrors.Wrap(err, perrors.KindResolution, "decode podcast search response")
	}

	for _, item := range result.Results {
		if item.FeedURL != "" {
			return item.FeedURL, nil
		}
	}
	return "", perrors.Resolution("no feed found for podcast %q", podcastName)
}
