package store

import (
	"encoding/json"
	"strings"
	"time"
)

// Run records one finished recommendation request.
type Run struct {
	ID             uint   `gorm:"primaryKey"`
	RunID          string `gorm:"size:64;uniqueIndex"`
	Provider       string `gorm:"size:32;index"`
	CuisinesJSON   string `gorm:"type:text"`
	MinRating      float64
	MaxDistanceM   int
	Location       string `gorm:"size:255"`
	Latitude       *float64
	Longitude      *float64
	Outcome        string `gorm:"size:32;index"`
	Message        string `gorm:"type:text"`
	Candidates     int
	Recommended    int
	ProcessingTime int64
	Venues         []RunVenue `gorm:"foreignKey:RunRef;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time  `gorm:"autoCreateTime;index"`
}

// RunVenue is one recommended venue belonging to a Run, in ranked order.
type RunVenue struct {
	ID             uint `gorm:"primaryKey"`
	RunRef         uint `gorm:"index"`
	Position       int
	VenueID        string `gorm:"size:255"`
	Name           string `gorm:"size:255"`
	Address        string `gorm:"size:512"`
	Rating         float64
	ReviewCount    int
	CategoriesJSON string `gorm:"type:text"`
	URL            string `gorm:"size:1024"`
	DistanceM      int
	ReviewSummary  string `gorm:"type:text"`
}

// SetCuisines persists the cuisine list as JSON.
func (r *Run) SetCuisines(cuisines []string) {
	r.CuisinesJSON = encodeStrings(cuisines)
}

// Cuisines returns the decoded cuisine list.
func (r *Run) Cuisines() []string {
	return decodeStrings(r.CuisinesJSON)
}

// SetCategories persists the category labels as JSON.
func (v *RunVenue) SetCategories(categories []string) {
	v.CategoriesJSON = encodeStrings(categories)
}

// Categories returns the decoded category labels.
func (v *RunVenue) Categories() []string {
	return decodeStrings(v.CategoriesJSON)
}

func encodeStrings(values []string) string {
	if values == nil {
		return "[]"
	}
	payload, _ := json.Marshal(values)
	return string(payload)
}

func decodeStrings(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
