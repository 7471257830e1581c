package api

import (
	"time"

	"lunchgenie/internal/provider"
	"lunchgenie/internal/store"
)

// RecommendRequest is the JSON body of POST /api/recommend. Every field is optional.
type RecommendRequest struct {
	Cuisines     []string `json:"cuisines"`
	MinRating    *float64 `json:"min_rating"`
	MaxDistanceM *int     `json:"max_distance_m"`
	Location     string   `json:"location"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

// RecommendResponse reports the outcome of one pipeline run.
type RecommendResponse struct {
	RunID      string     `json:"run_id"`
	Outcome    string     `json:"outcome"`
	Message    string     `json:"message,omitempty"`
	Location   string     `json:"location"`
	Candidates int        `json:"candidates"`
	Venues     []VenueDTO `json:"venues"`
}

// VenueDTO is the API form of a recommended venue.
type VenueDTO struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Address       string   `json:"address"`
	Rating        float64  `json:"rating"`
	ReviewCount   int      `json:"review_count"`
	Categories    []string `json:"categories"`
	URL           string   `json:"url"`
	DistanceM     int      `json:"distance_m"`
	ReviewSummary string   `json:"review_summary,omitempty"`
}

// RunDTO summarises a stored run.
type RunDTO struct {
	RunID          string     `json:"run_id"`
	Provider       string     `json:"provider"`
	Cuisines       []string   `json:"cuisines"`
	MinRating      float64    `json:"min_rating"`
	MaxDistanceM   int        `json:"max_distance_m"`
	Location       string     `json:"location"`
	Latitude       *float64   `json:"latitude,omitempty"`
	Longitude      *float64   `json:"longitude,omitempty"`
	Outcome        string     `json:"outcome"`
	Message        string     `json:"message,omitempty"`
	Candidates     int        `json:"candidates"`
	Recommended    int        `json:"recommended"`
	ProcessingTime int64      `json:"processing_time_ms"`
	CreatedAt      time.Time  `json:"created_at"`
	Venues         []VenueDTO `json:"venues,omitempty"`
}

// RunsResponse is a page of run history.
type RunsResponse struct {
	Items []RunDTO `json:"items"`
	Total int64    `json:"total"`
}

// VenueFromProvider converts a pipeline venue.
func VenueFromProvider(v provider.Venue) VenueDTO {
	categories := v.Categories
	if categories == nil {
		categories = []string{}
	}
	return VenueDTO{
		ID:            v.ID,
		Name:          v.Name,
		Address:       v.Address,
		Rating:        v.Rating,
		ReviewCount:   v.ReviewCount,
		Categories:    categories,
		URL:           v.URL,
		DistanceM:     v.DistanceM,
		ReviewSummary: v.ReviewSummary,
	}
}

// VenueFromModel converts a stored venue.
func VenueFromModel(v store.RunVenue) VenueDTO {
	categories := v.Categories()
	if categories == nil {
		categories = []string{}
	}
	return VenueDTO{
		ID:            v.VenueID,
		Name:          v.Name,
		Address:       v.Address,
		Rating:        v.Rating,
		ReviewCount:   v.ReviewCount,
		Categories:    categories,
		URL:           v.URL,
		DistanceM:     v.DistanceM,
		ReviewSummary: v.ReviewSummary,
	}
}

// RunFromModel converts a stored run. Venues are included when preloaded.
func RunFromModel(r store.Run) RunDTO {
	cuisines := r.Cuisines()
	if cuisines == nil {
		cuisines = []string{}
	}
	dto := RunDTO{
		RunID:          r.RunID,
		Provider:       r.Provider,
		Cuisines:       cuisines,
		MinRating:      r.MinRating,
		MaxDistanceM:   r.MaxDistanceM,
		Location:       r.Location,
		Latitude:       r.Latitude,
		Longitude:      r.Longitude,
		Outcome:        r.Outcome,
		Message:        r.Message,
		Candidates:     r.Candidates,
		Recommended:    r.Recommended,
		ProcessingTime: r.ProcessingTime,
		CreatedAt:      r.CreatedAt,
	}
	if len(r.Venues) > 0 {
		dto.Venues = make([]VenueDTO, 0, len(r.Venues))
		for _, v := range r.Venues {
			dto.Venues = append(dto.Venues, VenueFromModel(v))
		}
	}
	return dto
}
