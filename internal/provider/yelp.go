package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"lunchgenie/internal/location"
)

const (
	// DefaultYelpBaseURL is the Yelp Fusion API root.
	DefaultYelpBaseURL = "https://api.yelp.com/v3"
	yelpResultLimit    = 10
)

// YelpConfig drives the Yelp Fusion provider.
type YelpConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Yelp searches the Yelp Fusion business search endpoint. The API cannot filter
// by rating, so results below the minimum rating are dropped locally.
type Yelp struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewYelp constructs a Yelp provider if an API key is configured.
func NewYelp(cfg YelpConfig) (*Yelp, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &Error{Msg: "Missing Yelp API key in config/environment", Err: ErrMissingCredentials}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultYelpBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Yelp{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
	}, nil
}

// Name identifies the provider in logs.
func (y *Yelp) Name() string {
	return "yelp"
}

// SearchRestaurants runs one rating-sorted search capped at ten results.
func (y *Yelp) SearchRestaurants(ctx context.Context, query, place string, criteria Criteria, center *location.Point) ([]Venue, error) {
	params := url.Values{}
	term := query
	if term == "" {
		term = "restaurants"
	}
	radius := criteria.Radius
	if radius <= 0 {
		radius = defaultRadius
	}
	params.Set("term", term)
	params.Set("categories", criteria.Categories)
	params.Set("radius", strconv.Itoa(radius))
	params.Set("sort_by", "rating")
	params.Set("limit", strconv.Itoa(yelpResultLimit))
	if center != nil {
		params.Set("latitude", strconv.FormatFloat(center.Latitude, 'f', -1, 64))
		params.Set("longitude", strconv.FormatFloat(center.Longitude, 'f', -1, 64))
	} else {
		if place == "" {
			place = location.DefaultPlace
		}
		params.Set("location", place)
	}

	logrus.WithFields(logrus.Fields{
		"provider":   y.Name(),
		"categories": criteria.Categories,
		"radius":     radius,
		"by_coords":  center != nil,
	}).Debug("yelp search")

	businesses, err := y.search(ctx, params)
	if err != nil {
		return nil, &Error{Msg: "Yelp API request failed", Err: err}
	}

	results := make([]Venue, 0, len(businesses))
	for _, b := range businesses {
		if b.Rating < criteria.MinRating {
			continue
		}
		categories := make([]string, 0, len(b.Categories))
		for _, cat := range b.Categories {
			categories = append(categories, cat.Title)
		}
		results = append(results, Venue{
			ID:          b.ID,
			Name:        b.Name,
			Address:     strings.Join(b.Location.DisplayAddress, " "),
			Rating:      b.Rating,
			ReviewCount: b.ReviewCount,
			Categories:  categories,
			URL:         b.URL,
			DistanceM:   int(b.Distance),
		})
	}
	logrus.WithFields(logrus.Fields{
		"provider": y.Name(),
		"returned": len(businesses),
		"kept":     len(results),
	}).Debug("yelp search finished")
	return results, nil
}

func (y *Yelp) search(ctx context.Context, params url.Values) ([]yelpBusiness, error) {
	endpoint := y.baseURL + "/businesses/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+y.apiKey)

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yelp status %d", resp.StatusCode)
	}

	var payload yelpSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode yelp response: %w", err)
	}
	return payload.Businesses, nil
}

type yelpSearchResponse struct {
	Businesses []yelpBusiness `json:"businesses"`
}

type yelpBusiness struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	URL         string  `json:"url"`
	Distance    float64 `json:"distance"`
	Categories  []struct {
		Title string `json:"title"`
	} `json:"categories"`
	Location struct {
		DisplayAddress []string `json:"display_address"`
	} `json:"location"`
}
