package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"lunchgenie/internal/location"
)

const yelpSearchFixture = `{"businesses": [
	{"id": "a", "name": "Dumpling House", "rating": 4.5, "review_count": 120, "url": "https://yelp.test/a",
	 "distance": 350.7, "categories": [{"title": "Chinese"}, {"title": "Dumplings"}],
	 "location": {"display_address": ["1 Little Bourke St", "Melbourne VIC 3000"]}},
	{"id": "b", "name": "Curry Corner", "rating": 3.5, "review_count": 40, "url": "https://yelp.test/b",
	 "distance": 800, "categories": [{"title": "Indian"}], "location": {"display_address": ["2 Swanston St"]}},
	{"id": "c", "name": "Laksa King", "rating": 4.0, "review_count": 900, "url": "https://yelp.test/c",
	 "distance": 1200, "categories": [{"title": "Malaysian"}], "location": {"display_address": []}}
]}`

func TestYelpSearchFiltersByRating(t *testing.T) {
	var gotQuery map[string]string
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/businesses/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(yelpSearchFixture))
	}))
	defer srv.Close()

	yelp, err := NewYelp(YelpConfig{APIKey: "yelp-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new yelp: %v", err)
	}

	venues, err := yelp.SearchRestaurants(context.Background(), "team lunch", "Fitzroy",
		Criteria{Categories: "chinese,indian", MinRating: 4.0, Radius: 3000}, nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if gotAuth != "Bearer yelp-key" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	want := map[string]string{
		"term":       "team lunch",
		"categories": "chinese,indian",
		"radius":     "3000",
		"sort_by":    "rating",
		"limit":      "10",
		"location":   "Fitzroy",
	}
	for key, value := range want {
		if gotQuery[key] != value {
			t.Fatalf("param %s: expected %q got %q", key, value, gotQuery[key])
		}
	}
	if _, ok := gotQuery["latitude"]; ok {
		t.Fatal("latitude should not be sent for place search")
	}

	if len(venues) != 2 {
		t.Fatalf("expected 2 venues got %d", len(venues))
	}
	first := venues[0]
	if first.ID != "a" || first.Name != "Dumpling House" {
		t.Fatalf("unexpected first venue %+v", first)
	}
	if first.Address != "1 Little Bourke St Melbourne VIC 3000" {
		t.Fatalf("unexpected address %q", first.Address)
	}
	if first.DistanceM != 350 {
		t.Fatalf("expected truncated distance 350 got %d", first.DistanceM)
	}
	if len(first.Categories) != 2 || first.Categories[1] != "Dumplings" {
		t.Fatalf("unexpected categories %v", first.Categories)
	}
	if venues[1].ID != "c" {
		t.Fatalf("expected rating-equal venue c kept, got %s", venues[1].ID)
	}
}

func TestYelpSearchByCoordinates(t *testing.T) {
	var lat, lon, loc string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lat = r.URL.Query().Get("latitude")
		lon = r.URL.Query().Get("longitude")
		loc = r.URL.Query().Get("location")
		_, _ = w.Write([]byte(`{"businesses": []}`))
	}))
	defer srv.Close()

	yelp, err := NewYelp(YelpConfig{APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new yelp: %v", err)
	}
	venues, err := yelp.SearchRestaurants(context.Background(), "", "",
		Criteria{}, &location.Point{Latitude: -37.8, Longitude: 144.9})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(venues) != 0 {
		t.Fatalf("expected no venues got %d", len(venues))
	}
	if lat != "-37.8" || lon != "144.9" || loc != "" {
		t.Fatalf("unexpected coordinates lat=%q lon=%q location=%q", lat, lon, loc)
	}
}

func TestYelpSearchDefaultsPlace(t *testing.T) {
	var loc, radius, term string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loc = r.URL.Query().Get("location")
		radius = r.URL.Query().Get("radius")
		term = r.URL.Query().Get("term")
		_, _ = w.Write([]byte(`{"businesses": []}`))
	}))
	defer srv.Close()

	yelp, _ := NewYelp(YelpConfig{APIKey: "k", BaseURL: srv.URL})
	if _, err := yelp.SearchRestaurants(context.Background(), "", "", Criteria{}, nil); err != nil {
		t.Fatalf("search: %v", err)
	}
	if loc != location.DefaultPlace || radius != "1200" || term != "restaurants" {
		t.Fatalf("unexpected defaults location=%q radius=%q term=%q", loc, radius, term)
	}
}

func TestYelpSearchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"businesses": [`))
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			yelp, _ := NewYelp(YelpConfig{APIKey: "k", BaseURL: srv.URL})
			venues, err := yelp.SearchRestaurants(context.Background(), "q", "", Criteria{}, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if !IsProviderError(err) {
				t.Fatalf("expected provider error got %T: %v", err, err)
			}
			if venues != nil {
				t.Fatalf("expected no partial results got %v", venues)
			}
		})
	}
}

func TestYelpSearchTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	yelp, _ := NewYelp(YelpConfig{APIKey: "k", BaseURL: baseURL})
	_, err := yelp.SearchRestaurants(context.Background(), "q", "", Criteria{}, nil)
	if !IsProviderError(err) {
		t.Fatalf("expected provider error got %v", err)
	}
}

func TestNewYelpRequiresKey(t *testing.T) {
	_, err := NewYelp(YelpConfig{})
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials got %v", err)
	}
}
