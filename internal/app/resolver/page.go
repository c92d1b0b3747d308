package resolver

import (
	"context"
	"net/http"

	"github.com/PuerkitoBio/goquery"

	perrors "podscribe/internal/app/errors"
)

// ResolvePage scrapes an episode web page for its OpenGraph audio and
// title tags. Podcast platforms that do not expose a feed still carry
// og:audio on their episode pages.
func (r *HTTPResolver) ResolvePage(ctx context.Context, pageURL string) (*Episode, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, perrors.Wrap(err, perrors.KindResolution, "build page request")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, perrors.Wrapf(err, perrors.KindResolution, "fetch episode page %s", pageURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, perrors.Resolution("fetch episode page %s: unexpected status %s", pageURL, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, perrors.Wrap(err, perrors.KindResolution, "parse episode page")
	}

	audioURL, _ := doc.Find(`meta[property="og:audio"]`).First().Attr("content")
	title, _ := doc.Find(`meta[property="og:title"]`).First().Attr("content")
	siteName, _ := doc.Find(`meta[property="og:site_name"]`).First().Attr("content")

	if audioURL == "" {
		return nil, perrors.Resolution("no og:audio tag on %s", pageURL)
	}

	return &Episode{
		Title:       title,
		PodcastName: siteName,
		AudioURL:    audioURL,
	}, nil
}
