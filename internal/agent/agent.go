package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"lunchgenie/internal/ai"
	"lunchgenie/internal/location"
	"lunchgenie/internal/provider"
)

const (
	// SearchQuery is the search term sent to every provider.
	SearchQuery = "ambient places for team lunch"

	// MaxRecommendations caps the returned venues.
	MaxRecommendations = 5

	DefaultMinRating    = 4.0
	DefaultMaxDistanceM = 3000

	// candidatePause spaces out review and model calls per candidate.
	candidatePause = 700 * time.Millisecond
)

// DefaultCuisines are searched when a request names none.
var DefaultCuisines = []string{"chinese", "indian", "malaysian", "italian"}

// ReviewSource returns review texts for a venue.
type ReviewSource interface {
	GetReviews(ctx context.Context, venue provider.Venue) []string
}

// SafetyAnalyzer judges a venue's reviews.
type SafetyAnalyzer interface {
	DetectRedFlags(ctx context.Context, reviews []string) (ai.Verdict, error)
}

// Request describes one recommendation. Nil coordinates are absent.
type Request struct {
	Cuisines     []string
	MinRating    float64
	MaxDistanceM int
	Location     string
	Latitude     *float64
	Longitude    *float64

	// Progress, when set, is called synchronously as the pipeline advances.
	Progress func(Progress)
}

// DefaultRequest returns the request used when the caller supplies nothing.
func DefaultRequest() Request {
	return Request{
		Cuisines:     append([]string(nil), DefaultCuisines...),
		MinRating:    DefaultMinRating,
		MaxDistanceM: DefaultMaxDistanceM,
		Location:     location.DefaultPlace,
	}
}

// OutcomeKind discriminates the result of a recommendation.
type OutcomeKind string

const (
	OutcomeOK             OutcomeKind = "ok"
	OutcomeNoCandidates   OutcomeKind = "no_candidates"
	OutcomeAllRejected    OutcomeKind = "all_rejected"
	OutcomeProviderFailed OutcomeKind = "provider_failed"
)

// Outcome is the tagged result of Recommend. Venues is set only for OutcomeOK,
// Message only for OutcomeProviderFailed.
type Outcome struct {
	Kind       OutcomeKind
	Venues     []provider.Venue
	Message    string
	Err        error
	Resolution location.Resolution
	Candidates int
}

// Progress reports pipeline advancement.
type Progress struct {
	Stage   string
	Venue   string
	Index   int
	Total   int
	Reviews int
	Safe    bool
	Summary string
}

const (
	StageSearched = "searched"
	StageAnalyzed = "analyzed"
)

// Agent composes location resolution, search, review fetching and red-flag
// analysis into a recommendation. It holds no per-request state.
type Agent struct {
	provider provider.Provider
	reviews  ReviewSource
	analyzer SafetyAnalyzer
	defaults location.Defaults
	pause    time.Duration
}

// New wires an Agent.
func New(p provider.Provider, reviews ReviewSource, analyzer SafetyAnalyzer, defaults location.Defaults) *Agent {
	return &Agent{
		provider: p,
		reviews:  reviews,
		analyzer: analyzer,
		defaults: defaults,
		pause:    candidatePause,
	}
}

// Recommend runs the pipeline once. Provider failures are reported through
// the Outcome; the returned error is reserved for model failures and context
// cancellation, which abort the request.
func (a *Agent) Recommend(ctx context.Context, req Request) (Outcome, error) {
	resolution := location.Resolve(a.defaults, req.Location, req.Latitude, req.Longitude)
	criteria := provider.Criteria{
		Categories: strings.Join(req.Cuisines, ","),
		MinRating:  req.MinRating,
		Radius:     req.MaxDistanceM,
	}

	log := logrus.WithFields(logrus.Fields{
		"provider":   a.provider.Name(),
		"categories": criteria.Categories,
		"min_rating": criteria.MinRating,
		"radius":     criteria.Radius,
		"location":   resolution.Location,
		"by_coords":  resolution.Center != nil,
	})
	log.Info("searching for lunch candidates")

	candidates, err := a.provider.SearchRestaurants(ctx, SearchQuery, resolution.Location, criteria, resolution.Center)
	if err != nil {
		message := err.Error()
		if !provider.IsProviderError(err) {
			message = fmt.Sprintf("unexpected provider error: %v", err)
		}
		log.WithError(err).Error("provider search failed")
		return Outcome{Kind: OutcomeProviderFailed, Message: message, Err: err, Resolution: resolution}, nil
	}
	if len(candidates) == 0 {
		log.Info("provider returned no candidates")
		return Outcome{Kind: OutcomeNoCandidates, Resolution: resolution}, nil
	}

	notify(req.Progress, Progress{Stage: StageSearched, Total: len(candidates)})
	log.WithField("candidates", len(candidates)).Info("analyzing candidate reviews")

	accepted := make([]provider.Venue, 0, len(candidates))
	for i, venue := range candidates {
		reviews := a.reviews.GetReviews(ctx, venue)
		verdict, err := a.analyzer.DetectRedFlags(ctx, reviews)
		if err != nil {
			return Outcome{}, fmt.Errorf("analyze %s: %w", venue.Name, err)
		}

		logrus.WithFields(logrus.Fields{
			"venue":     venue.Name,
			"reviews":   len(reviews),
			"safe":      verdict.Safe,
			"red_flags": len(verdict.RedFlags),
		}).Debug("candidate analyzed")

		if verdict.Safe {
			summary := verdict.Summary
			if summary == "" {
				summary = ai.NoReviewsSummary
			}
			venue.ReviewSummary = summary
			accepted = append(accepted, venue)
		}
		notify(req.Progress, Progress{
			Stage:   StageAnalyzed,
			Venue:   venue.Name,
			Index:   i + 1,
			Total:   len(candidates),
			Reviews: len(reviews),
			Safe:    verdict.Safe,
			Summary: verdict.Summary,
		})

		if err := a.wait(ctx); err != nil {
			return Outcome{}, err
		}
	}

	if len(accepted) == 0 {
		log.Info("every candidate was rejected")
		return Outcome{Kind: OutcomeAllRejected, Resolution: resolution, Candidates: len(candidates)}, nil
	}

	return Outcome{
		Kind:       OutcomeOK,
		Venues:     rankAndTruncate(accepted, MaxRecommendations),
		Resolution: resolution,
		Candidates: len(candidates),
	}, nil
}

// rankAndTruncate orders by rating, highest first, keeping provider order on ties.
func rankAndTruncate(venues []provider.Venue, limit int) []provider.Venue {
	sort.SliceStable(venues, func(i, j int) bool {
		return venues[i].Rating > venues[j].Rating
	})
	if len(venues) > limit {
		venues = venues[:limit]
	}
	return venues
}

func (a *Agent) wait(ctx context.Context) error {
	if a.pause <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(a.pause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func notify(fn func(Progress), p Progress) {
	if fn != nil {
		fn(p)
	}
}
