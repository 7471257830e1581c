package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lunchgenie/internal/agent"
	"lunchgenie/internal/location"
)

func TestParseRecommendFlagsDefaults(t *testing.T) {
	opts, err := parseRecommendFlags(nil, io.Discard)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	req := opts.request
	if opts.envPath != ".env" {
		t.Fatalf("expected .env got %q", opts.envPath)
	}
	if strings.Join(req.Cuisines, ",") != "chinese,indian,malaysian,italian" {
		t.Fatalf("unexpected default cuisines %v", req.Cuisines)
	}
	if req.MinRating != agent.DefaultMinRating || req.MaxDistanceM != agent.DefaultMaxDistanceM {
		t.Fatalf("unexpected defaults %+v", req)
	}
	if req.Location != location.DefaultPlace || req.Latitude != nil || req.Longitude != nil {
		t.Fatalf("unexpected location defaults %+v", req)
	}
}

func TestParseRecommendFlags(t *testing.T) {
	args := []string{
		"-cuisines", "thai, vietnamese",
		"-cuisines", "korean",
		"-min-rating", "4.5",
		"-max-distance", "800",
		"-location", "Carlton",
		"-lat", "-37.8",
		"-lon", "144.96",
		"-env", "",
	}
	opts, err := parseRecommendFlags(args, io.Discard)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	req := opts.request
	if strings.Join(req.Cuisines, ",") != "thai,vietnamese,korean" {
		t.Fatalf("unexpected cuisines %v", req.Cuisines)
	}
	if req.MinRating != 4.5 || req.MaxDistanceM != 800 || req.Location != "Carlton" {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.Latitude == nil || *req.Latitude != -37.8 || req.Longitude == nil || *req.Longitude != 144.96 {
		t.Fatalf("unexpected coordinates %+v", req)
	}
	if opts.envPath != "" {
		t.Fatalf("expected empty env path got %q", opts.envPath)
	}
	if len(agent.DefaultCuisines) != 4 {
		t.Fatalf("defaults were mutated: %v", agent.DefaultCuisines)
	}
}

func TestParseRecommendFlagsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "lat without lon", args: []string{"-lat", "-37.8"}},
		{name: "bad coordinate", args: []string{"-lat", "north", "-lon", "1"}},
		{name: "rating range", args: []string{"-min-rating", "7"}},
		{name: "distance", args: []string{"-max-distance", "0"}},
		{name: "empty cuisines", args: []string{"-cuisines", " , "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseRecommendFlags(tt.args, io.Discard); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRunPing(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": "Hello, world!"}}},
		})
	}))
	defer srv.Close()

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", srv.URL)
	t.Setenv("RESTAURANT_PROVIDER", "")
	t.Setenv("APP_ENV", "production")

	var stdout bytes.Buffer
	code := run(context.Background(), []string{"ping", "-env", ""}, &stdout, io.Discard)
	if code != 0 {
		t.Fatalf("expected exit 0 got %d: %s", code, stdout.String())
	}
	if stdout.String() != "LLM Response: Hello, world!\n" {
		t.Fatalf("unexpected output %q", stdout.String())
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
}

func TestRunReportsConfigurationError(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	for _, args := range [][]string{{"-env", ""}, {"recommend", "-env", ""}} {
		var stdout bytes.Buffer
		if code := run(context.Background(), args, &stdout, io.Discard); code != 1 {
			t.Fatalf("%v: expected exit 1 got %d", args, code)
		}
		if !strings.HasPrefix(stdout.String(), "Configuration error: ") || !strings.Contains(stdout.String(), "OPENAI_API_KEY") {
			t.Fatalf("%v: unexpected output %q", args, stdout.String())
		}
	}
}

func TestRunMissingProviderKeyIsConfigurationError(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("RESTAURANT_PROVIDER", "google")
	t.Setenv("GOOGLE_PLACES_API_KEY", "")
	t.Setenv("APP_ENV", "production")

	var stdout bytes.Buffer
	if code := run(context.Background(), []string{"recommend", "-env", ""}, &stdout, io.Discard); code != 1 {
		t.Fatalf("expected exit 1 got %d", code)
	}
	if !strings.HasPrefix(stdout.String(), "Configuration error: ") {
		t.Fatalf("unexpected output %q", stdout.String())
	}
}

func TestRunUnknownCommand(t *testing.T) {
	var stderr bytes.Buffer
	if code := run(context.Background(), []string{"dance"}, io.Discard, &stderr); code != 2 {
		t.Fatalf("expected exit 2 got %d", code)
	}
	if !strings.Contains(stderr.String(), "dance") {
		t.Fatalf("unexpected stderr %q", stderr.String())
	}
}
