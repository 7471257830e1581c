package reviews

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"lunchgenie/internal/config"
	"lunchgenie/internal/provider"
)

// Config drives review fetching.
type Config struct {
	Provider    config.ProviderKind
	YelpAPIKey  string
	YelpBaseURL string
	Timeout     time.Duration
}

// Fetcher returns review texts for a venue. Failures degrade to no reviews.
type Fetcher struct {
	httpClient  *http.Client
	provider    config.ProviderKind
	yelpAPIKey  string
	yelpBaseURL string
}

// NewFetcher constructs a Fetcher with defaults applied.
func NewFetcher(cfg Config) *Fetcher {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.YelpBaseURL), "/")
	if baseURL == "" {
		baseURL = provider.DefaultYelpBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 7 * time.Second
	}
	return &Fetcher{
		httpClient:  &http.Client{Timeout: timeout},
		provider:    cfg.Provider,
		yelpAPIKey:  cfg.YelpAPIKey,
		yelpBaseURL: baseURL,
	}
}

// GetReviews returns the venue's embedded reviews when present. Otherwise, for
// Yelp, it calls the business reviews endpoint; any failure yields no reviews.
func (f *Fetcher) GetReviews(ctx context.Context, venue provider.Venue) []string {
	if len(venue.Reviews) > 0 {
		return venue.Reviews
	}
	if f.provider != config.ProviderYelp {
		return []string{}
	}
	texts, err := f.fetchYelp(ctx, venue.ID)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"venue_id": venue.ID,
			"venue":    venue.Name,
		}).Warn("fetch yelp reviews")
		return []string{}
	}
	return texts
}

func (f *Fetcher) fetchYelp(ctx context.Context, id string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/businesses/%s/reviews", f.yelpBaseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.yelpAPIKey)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yelp reviews status %d", resp.StatusCode)
	}

	var payload struct {
		Reviews []struct {
			Text string `json:"text"`
		} `json:"reviews"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode yelp reviews: %w", err)
	}
	texts := make([]string, 0, len(payload.Reviews))
	for _, r := range payload.Reviews {
		texts = append(texts, r.Text)
	}
	return texts, nil
}
