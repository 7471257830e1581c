package location

import (
	"strconv"
	"strings"
)

// DefaultPlace is the place name that callers pass when they have not chosen one.
const DefaultPlace = "Melbourne"

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Defaults carries the configured fallback coordinates as raw text.
type Defaults struct {
	Latitude  string
	Longitude string
}

// Resolution is the effective search center for one request. Exactly one of
// Location and Center is meaningful: Center is nil when searching by place name.
type Resolution struct {
	Location string
	Center   *Point
}

// Resolve picks the search center. Explicit coordinates win, then configured
// defaults when the caller left the place empty or at DefaultPlace, then the
// caller's place text. Defaults that fail to parse are ignored.
func Resolve(defaults Defaults, place string, latitude, longitude *float64) Resolution {
	if latitude != nil && longitude != nil {
		return Resolution{Center: &Point{Latitude: *latitude, Longitude: *longitude}}
	}

	if defaults.Latitude != "" && defaults.Longitude != "" && (place == "" || place == DefaultPlace) {
		lat, latErr := strconv.ParseFloat(strings.TrimSpace(defaults.Latitude), 64)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(defaults.Longitude), 64)
		if latErr == nil && lonErr == nil {
			return Resolution{Center: &Point{Latitude: lat, Longitude: lon}}
		}
	}

	return Resolution{Location: place}
}
