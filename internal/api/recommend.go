package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lunchgenie/internal/agent"
	"lunchgenie/internal/store"
)

func (s *Server) handleRecommend(c *gin.Context) {
	var body RecommendRequest
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	req, err := buildRequest(body)
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}

	runID := uuid.NewString()
	log := logrus.WithField("run_id", runID)
	start := time.Now()

	s.notifier.Broadcast(RecommendationEvent{Type: EventStarted, RunID: runID})
	req.Progress = func(p agent.Progress) {
		if p.Stage == agent.StageSearched {
			s.notifier.Broadcast(RecommendationEvent{Type: EventStarted, RunID: runID, Total: p.Total})
			return
		}
		safe := p.Safe
		s.notifier.Broadcast(RecommendationEvent{
			Type:    EventCandidate,
			RunID:   runID,
			Venue:   p.Venue,
			Index:   p.Index,
			Total:   p.Total,
			Reviews: p.Reviews,
			Safe:    &safe,
			Summary: p.Summary,
		})
	}

	outcome, err := s.recommender.Recommend(c.Request.Context(), req)
	if err != nil {
		log.WithError(err).Error("recommendation failed")
		s.notifier.Broadcast(RecommendationEvent{Type: EventError, RunID: runID, Message: err.Error()})
		s.renderError(c, http.StatusBadGateway, fmt.Errorf("recommendation failed: %w", err))
		return
	}

	elapsed := time.Since(start).Milliseconds()
	s.saveRun(runID, req, outcome, elapsed)

	venues := make([]VenueDTO, 0, len(outcome.Venues))
	for _, v := range outcome.Venues {
		venues = append(venues, VenueFromProvider(v))
	}

	s.notifier.Broadcast(RecommendationEvent{
		Type:        EventFinished,
		RunID:       runID,
		Outcome:     string(outcome.Kind),
		Message:     outcome.Message,
		Recommended: len(venues),
	})
	log.WithFields(logrus.Fields{
		"outcome":     outcome.Kind,
		"candidates":  outcome.Candidates,
		"recommended": len(venues),
		"elapsed_ms":  elapsed,
	}).Info("recommendation finished")

	c.JSON(http.StatusOK, RecommendResponse{
		RunID:      runID,
		Outcome:    string(outcome.Kind),
		Message:    outcome.Message,
		Location:   outcome.Resolution.Location,
		Candidates: outcome.Candidates,
		Venues:     venues,
	})
}

// saveRun records the run. Persistence failures never fail the request.
func (s *Server) saveRun(runID string, req agent.Request, outcome agent.Outcome, elapsed int64) {
	run := &store.Run{
		RunID:          runID,
		Provider:       string(s.settings.Provider),
		MinRating:      req.MinRating,
		MaxDistanceM:   req.MaxDistanceM,
		Location:       outcome.Resolution.Location,
		Outcome:        string(outcome.Kind),
		Message:        outcome.Message,
		Candidates:     outcome.Candidates,
		Recommended:    len(outcome.Venues),
		ProcessingTime: elapsed,
	}
	run.SetCuisines(req.Cuisines)
	if center := outcome.Resolution.Center; center != nil {
		lat, lon := center.Latitude, center.Longitude
		run.Latitude = &lat
		run.Longitude = &lon
	}
	for _, v := range outcome.Venues {
		venue := store.RunVenue{
			VenueID:       v.ID,
			Name:          v.Name,
			Address:       v.Address,
			Rating:        v.Rating,
			ReviewCount:   v.ReviewCount,
			URL:           v.URL,
			DistanceM:     v.DistanceM,
			ReviewSummary: v.ReviewSummary,
		}
		venue.SetCategories(v.Categories)
		run.Venues = append(run.Venues, venue)
	}
	if err := s.db.SaveRun(run); err != nil {
		logrus.WithError(err).WithField("run_id", runID).Warn("save run history")
	}
}

func buildRequest(body RecommendRequest) (agent.Request, error) {
	req := agent.DefaultRequest()

	if len(body.Cuisines) > 0 {
		cuisines := make([]string, 0, len(body.Cuisines))
		for _, cuisine := range body.Cuisines {
			if trimmed := strings.TrimSpace(cuisine); trimmed != "" {
				cuisines = append(cuisines, trimmed)
			}
		}
		if len(cuisines) > 0 {
			req.Cuisines = cuisines
		}
	}
	if body.MinRating != nil {
		if *body.MinRating < 0 || *body.MinRating > 5 {
			return agent.Request{}, errors.New("min_rating must be between 0 and 5")
		}
		req.MinRating = *body.MinRating
	}
	if body.MaxDistanceM != nil {
		if *body.MaxDistanceM <= 0 {
			return agent.Request{}, errors.New("max_distance_m must be positive")
		}
		req.MaxDistanceM = *body.MaxDistanceM
	}
	if place := strings.TrimSpace(body.Location); place != "" {
		req.Location = place
	}
	if (body.Latitude == nil) != (body.Longitude == nil) {
		return agent.Request{}, errors.New("latitude and longitude must be supplied together")
	}
	if body.Latitude != nil {
		if *body.Latitude < -90 || *body.Latitude > 90 {
			return agent.Request{}, errors.New("latitude must be between -90 and 90")
		}
		if *body.Longitude < -180 || *body.Longitude > 180 {
			return agent.Request{}, errors.New("longitude must be between -180 and 180")
		}
		req.Latitude = body.Latitude
		req.Longitude = body.Longitude
	}
	return req, nil
}
