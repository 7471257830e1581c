package location

import "testing"

func floatPtr(v float64) *float64 {
	return &v
}

func TestResolve(t *testing.T) {
	melbourne := Defaults{Latitude: "-37.8", Longitude: "144.9"}

	tests := []struct {
		name         string
		defaults     Defaults
		place        string
		lat, lon     *float64
		wantLocation string
		wantCenter   *Point
	}{
		{
			name:       "explicit coordinates win over defaults",
			defaults:   melbourne,
			place:      "Sydney",
			lat:        floatPtr(10.0),
			lon:        floatPtr(20.0),
			wantCenter: &Point{Latitude: 10.0, Longitude: 20.0},
		},
		{
			name:       "explicit coordinates without defaults",
			place:      DefaultPlace,
			lat:        floatPtr(10.0),
			lon:        floatPtr(20.0),
			wantCenter: &Point{Latitude: 10.0, Longitude: 20.0},
		},
		{
			name:       "default place uses configured coordinates",
			defaults:   melbourne,
			place:      DefaultPlace,
			wantCenter: &Point{Latitude: -37.8, Longitude: 144.9},
		},
		{
			name:       "empty place uses configured coordinates",
			defaults:   melbourne,
			wantCenter: &Point{Latitude: -37.8, Longitude: 144.9},
		},
		{
			name:         "custom place keeps text",
			defaults:     melbourne,
			place:        "Fitzroy",
			wantLocation: "Fitzroy",
		},
		{
			name:         "unparseable default latitude falls back to text",
			defaults:     Defaults{Latitude: "not-a-number", Longitude: "144.9"},
			place:        DefaultPlace,
			wantLocation: DefaultPlace,
		},
		{
			name:         "unparseable default longitude falls back to text",
			defaults:     Defaults{Latitude: "-37.8", Longitude: "east"},
			place:        DefaultPlace,
			wantLocation: DefaultPlace,
		},
		{
			name:         "only one default configured",
			defaults:     Defaults{Latitude: "-37.8"},
			place:        DefaultPlace,
			wantLocation: DefaultPlace,
		},
		{
			name:       "latitude alone is not explicit",
			defaults:   melbourne,
			place:      DefaultPlace,
			lat:        floatPtr(1.5),
			wantCenter: &Point{Latitude: -37.8, Longitude: 144.9},
		},
		{
			name:         "latitude alone without defaults",
			place:        "Carlton",
			lat:          floatPtr(1.5),
			wantLocation: "Carlton",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Resolve(tc.defaults, tc.place, tc.lat, tc.lon)
			if got.Location != tc.wantLocation {
				t.Fatalf("expected location %q got %q", tc.wantLocation, got.Location)
			}
			switch {
			case tc.wantCenter == nil && got.Center != nil:
				t.Fatalf("expected no center got %+v", *got.Center)
			case tc.wantCenter != nil && got.Center == nil:
				t.Fatalf("expected center %+v got none", *tc.wantCenter)
			case tc.wantCenter != nil && *got.Center != *tc.wantCenter:
				t.Fatalf("expected center %+v got %+v", *tc.wantCenter, *got.Center)
			}
		})
	}
}

func TestResolveIsRepeatable(t *testing.T) {
	defaults := Defaults{Latitude: "-37.8", Longitude: "144.9"}
	first := Resolve(defaults, DefaultPlace, nil, nil)
	second := Resolve(defaults, DefaultPlace, nil, nil)
	if first.Location != second.Location || *first.Center != *second.Center {
		t.Fatalf("resolve not repeatable: %+v vs %+v", first, second)
	}
}
