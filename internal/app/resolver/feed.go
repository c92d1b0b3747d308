package resolver

import (
	"context"
	"encoding/xml"
	"net/http"
	"strconv"
	"strings"

	perrors "podscribe/internal/app/errors"
)

type rssFeed struct {
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title     string `xml:"title"`
	PubDate   string `xml:"pubDate"`
	Duration  string `xml:"duration"`
	Enclosure struct {
		URL string `xml:"url,attr"`
	} `xml:"enclosure"`
}

// Episode matching thresholds. Title overlap dominates; the duration
// bonus only contributes when both sides actually have a duration.
const (
	matchThreshold    = 0.4
	durationBonus     = 0.2
	durationSlackSecs = 60
)

// ResolveEpisode downloads the feed and returns the item whose title
// best matches episodeTitle, provided the match clears the threshold.
func (r *HTTPResolver) ResolveEpisode(ctx context.Context, feedURL, episodeTitle string, durationHint int) (*Episode, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, perrors.Wrap(err, perrors.KindResolution, "build feed request")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, perrors.Wrapf(err, perrors.KindResolution, "fetch feed %s", feedURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, perrors.Resolution("fetch feed %s: unexpected status %s", feedURL, resp.Status)
	}

	var feed rssFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, perrors.Wrap(err, perrors.KindResolution, "parse feed XML")
	}
	if len(feed.Channel.Items) == 0 {
		return nil, perrors.Resolution("feed %s has no episodes", feedURL)
	}

	var best *rssItem
	bestScore := 0.0
	for i := range feed.Channel.Items {
		item := &feed.Channel.Items[i]
		score := matchScore(episodeTitle, item.Title, durationHint, parseDuration(item.Duration))
		if score > bestScore {
			bestScore = score
			best = item
		}
	}

	if best == nil || bestScore < matchThreshold {
		return nil, perrors.Resolution("no episode in feed matches %q (best score %.2f)", episodeTitle, bestScore)
	}
	if best.Enclosure.URL == "" {
		return nil, perrors.Resolution("episode %q has no audio enclosure", best.Title)
	}

	return &Episode{
		Title:       best.Title,
		PodcastName: feed.Channel.Title,
		AudioURL:    best.Enclosure.URL,
		PublishedAt: best.PubDate,
		Duration:    parseDuration(best.Duration),
	}, nil
}

// matchScore combines normalized title token overlap with a fixed
// duration-closeness bonus.
func matchScore(want, got string, wantDuration, gotDuration int) float64 {
	score := tokenOverlap(normalizeTokens(want), normalizeTokens(got))
	if wantDuration > 0 && gotDuration > 0 {
		diff := wantDuration - gotDuration
		if diff < 0 {
			diff = -diff
		}
		if diff <= durationSlackSecs {
			score += durationBonus
		}
	}
	return score
}

func normalizeTokens(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?:;\"'()[]")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// tokenOverlap is the fraction of wanted tokens found in got.
func tokenOverlap(want, got []string) float64 {
	if len(want) == 0 {
		return 0
	}
	set := make(map[string]bool, len(got))
	for _, t := range got {
		set[t] = true
	}
	hits := 0
	for _, t := range want {
		if set[t] {
			hits++
		}
	}
	return float64(hits) / float64(len(want))
}

// parseDuration accepts plain seconds or HH:MM:SS / MM:SS clock forms,
// the two encodings feeds use for itunes:duration.
func parseDuration(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if !strings.Contains(s, ":") {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0
		}
		return n
	}
	parts := strings.Split(s, ":")
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0
		}
		total = total*60 + n
	}
	return total
}
