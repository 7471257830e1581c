package provider

import (
	"context"
	"encoding/json"
	"errors"
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
	// DefaultGoogleBaseURL is the Places API (legacy) root.
	DefaultGoogleBaseURL = "https://maps.googleapis.com/maps/api/place"
	googleDetailFields   = "name,rating,user_ratings_total,reviews,formatted_address,geometry,url,types"
)

// FallbackCenter is searched when no coordinates are supplied. Place text is not geocoded.
var FallbackCenter = location.Point{Latitude: -37.816375, Longitude: 144.960934}

// GoogleConfig drives the Google Places provider.
type GoogleConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Google runs a keyword nearby search and enriches each hit with a details call.
type Google struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewGoogle constructs a Google Places provider if an API key is configured.
func NewGoogle(cfg GoogleConfig) (*Google, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &Error{Msg: "Missing Google Places API key in config/environment", Err: ErrMissingCredentials}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultGoogleBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 7 * time.Second
	}
	return &Google{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
	}, nil
}

// Name identifies the provider in logs.
func (g *Google) Name() string {
	return "google"
}

// SearchRestaurants searches around center (or FallbackCenter), keeps places at
// or above the minimum rating, and drops any whose computed distance exceeds the radius.
func (g *Google) SearchRestaurants(ctx context.Context, query, place string, criteria Criteria, center *location.Point) ([]Venue, error) {
	origin := FallbackCenter
	if center != nil {
		origin = *center
	} else if place != "" {
		logrus.WithField("place", place).Debug("google provider does not geocode place text, using fallback center")
	}
	radius := criteria.Radius
	if radius <= 0 {
		radius = defaultRadius
	}

	keyword := query
	if criteria.Categories != "" {
		keyword = strings.TrimSpace(keyword + " " + strings.ReplaceAll(criteria.Categories, ",", " "))
	}

	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("location", formatLatLng(origin))
	params.Set("radius", strconv.Itoa(radius))
	params.Set("type", "restaurant")
	params.Set("keyword", keyword)

	logrus.WithFields(logrus.Fields{
		"provider": g.Name(),
		"keyword":  keyword,
		"radius":   radius,
	}).Debug("google nearby search")

	places, err := g.nearby(ctx, params)
	if err != nil {
		return nil, &Error{Msg: "Google Places API request failed", Err: err}
	}

	results := make([]Venue, 0, len(places))
	for _, p := range places {
		if p.Rating < criteria.MinRating {
			continue
		}
		detail := g.details(ctx, p.PlaceID)

		loc := detail.Geometry.Location
		if loc == nil {
			loc = p.Geometry.Location
		}
		target := origin
		if loc != nil {
			if loc.Lat != nil {
				target.Latitude = *loc.Lat
			}
			if loc.Lng != nil {
				target.Longitude = *loc.Lng
			}
		}
		distance := int(Haversine(origin, target))
		if distance > radius {
			continue
		}

		name := p.Name
		if name == "" {
			name = detail.Name
		}
		reviewCount := 0
		switch {
		case p.UserRatingsTotal != nil:
			reviewCount = *p.UserRatingsTotal
		case detail.UserRatingsTotal != nil:
			reviewCount = *detail.UserRatingsTotal
		}
		reviews := make([]string, 0, len(detail.Reviews))
		for _, rv := range detail.Reviews {
			if rv.Text != "" {
				reviews = append(reviews, rv.Text)
			}
		}
		categories := p.Types
		if categories == nil {
			categories = []string{}
		}

		results = append(results, Venue{
			ID:          p.PlaceID,
			Name:        name,
			Address:     detail.FormattedAddress,
			Rating:      p.Rating,
			ReviewCount: reviewCount,
			Categories:  categories,
			URL:         detail.URL,
			DistanceM:   distance,
			Reviews:     reviews,
		})
	}
	logrus.WithFields(logrus.Fields{
		"provider": g.Name(),
		"returned": len(places),
		"kept":     len(results),
	}).Debug("google search finished")
	return results, nil
}

func (g *Google) nearby(ctx context.Context, params url.Values) ([]googlePlace, error) {
	var payload googleNearbyResponse
	if err := g.getJSON(ctx, "/nearbysearch/json", params, &payload); err != nil {
		return nil, err
	}
	if payload.Status != "OK" {
		return nil, fmt.Errorf("google places api error: %s. %s", payload.Status, payload.ErrorMessage)
	}
	return payload.Results, nil
}

// details returns an empty detail when the call fails; the venue keeps its summary fields.
func (g *Google) details(ctx context.Context, placeID string) googleDetail {
	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("place_id", placeID)
	params.Set("fields", googleDetailFields)

	var payload googleDetailResponse
	if err := g.getJSON(ctx, "/details/json", params, &payload); err != nil {
		logrus.WithError(err).WithField("place_id", placeID).Warn("google place details failed")
		return googleDetail{}
	}
	if payload.Status != "OK" {
		logrus.WithFields(logrus.Fields{
			"place_id": placeID,
			"status":   payload.Status,
		}).Warn("google place details not ok")
		return googleDetail{}
	}
	return payload.Result
}

func (g *Google) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		// url.Error embeds the request URL, which carries the API key.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return urlErr.Err
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("google places status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode google places response: %w", err)
	}
	return nil
}

func formatLatLng(p location.Point) string {
	return strconv.FormatFloat(p.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(p.Longitude, 'f', -1, 64)
}

type googleLatLng struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type googleGeometry struct {
	Location *googleLatLng `json:"location"`
}

type googleNearbyResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
	Results      []googlePlace `json:"results"`
}

type googlePlace struct {
	PlaceID          string         `json:"place_id"`
	Name             string         `json:"name"`
	Rating           float64        `json:"rating"`
	UserRatingsTotal *int           `json:"user_ratings_total"`
	Types            []string       `json:"types"`
	Geometry         googleGeometry `json:"geometry"`
}

type googleDetailResponse struct {
	Status string       `json:"status"`
	Result googleDetail `json:"result"`
}

type googleDetail struct {
	Name             string         `json:"name"`
	FormattedAddress string         `json:"formatted_address"`
	URL              string         `json:"url"`
	UserRatingsTotal *int           `json:"user_ratings_total"`
	Geometry         googleGeometry `json:"geometry"`
	Reviews          []struct {
		Text string `json:"text"`
	} `json:"reviews"`
}
