package provider

import (
	"errors"
	"testing"

	"lunchgenie/internal/config"
)

func TestNewSelectsVariant(t *testing.T) {
	cfg := &config.Config{YelpAPIKey: "y", GooglePlacesAPIKey: "g"}

	tests := []struct {
		kind config.ProviderKind
		name string
	}{
		{config.ProviderYelp, "yelp"},
		{config.ProviderGoogle, "google"},
	}
	for _, tc := range tests {
		t.Run(string(tc.kind), func(t *testing.T) {
			p, err := New(tc.kind, cfg)
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			if p.Name() != tc.name {
				t.Fatalf("expected %s got %s", tc.name, p.Name())
			}
		})
	}
}

func TestNewMissingKey(t *testing.T) {
	_, err := New(config.ProviderGoogle, &config.Config{YelpAPIKey: "y"})
	if !IsProviderError(err) || !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected missing credential provider error got %v", err)
	}
}

func TestNewUnknownKind(t *testing.T) {
	if _, err := New(config.ProviderKind("bing"), &config.Config{}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
