package provider

import (
	"context"
	"errors"
	"fmt"

	"lunchgenie/internal/config"
	"lunchgenie/internal/location"
)

// Venue is one candidate lunch venue normalised across providers.
type Venue struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Address       string   `json:"address"`
	Rating        float64  `json:"rating"`
	ReviewCount   int      `json:"review_count"`
	Categories    []string `json:"categories"`
	URL           string   `json:"url"`
	DistanceM     int      `json:"distance_m"`
	Reviews       []string `json:"reviews,omitempty"`
	ReviewSummary string   `json:"review_summary,omitempty"`
}

// Criteria narrows a search. Categories is a comma-joined list of cuisine tags.
type Criteria struct {
	Categories string
	MinRating  float64
	Radius     int
}

// defaultRadius applies when criteria carry no radius (about a 15 minute walk).
const defaultRadius = 1200

// Provider searches a restaurant backend. A nil center means search by place text.
type Provider interface {
	Name() string
	SearchRestaurants(ctx context.Context, query, place string, criteria Criteria, center *location.Point) ([]Venue, error)
}

// Error is returned by providers for transport failures, non-success status
// codes and backend-reported errors.
type Error struct {
	Msg string
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsProviderError reports whether err is (or wraps) a provider Error.
func IsProviderError(err error) bool {
	var pErr *Error
	return errors.As(err, &pErr)
}

// ErrMissingCredentials is wrapped when a provider is selected without its API key.
var ErrMissingCredentials = errors.New("provider missing api key")

// New constructs the provider selected by kind.
func New(kind config.ProviderKind, cfg *config.Config) (Provider, error) {
	if cfg == nil {
		return nil, errors.New("provider: config is nil")
	}
	switch kind {
	case config.ProviderYelp:
		return NewYelp(YelpConfig{APIKey: cfg.YelpAPIKey})
	case config.ProviderGoogle:
		return NewGoogle(GoogleConfig{APIKey: cfg.GooglePlacesAPIKey})
	default:
		return nil, fmt.Errorf("provider: unknown kind %q", kind)
	}
}
