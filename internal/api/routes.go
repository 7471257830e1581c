package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"lunchgenie/internal/agent"
	"lunchgenie/internal/config"
	"lunchgenie/internal/store"
)

// Recommender runs the recommendation pipeline.
type Recommender interface {
	Recommend(ctx context.Context, req agent.Request) (agent.Outcome, error)
}

// Config defines server dependencies.
type Config struct {
	DBPath         string
	AllowedOrigins []string
	SilentDB       bool
	Settings       *config.Config
	Recommender    Recommender
	Model          string
}

// Server wires HTTP handlers with the pipeline and run history.
type Server struct {
	db             *store.Database
	settings       *config.Config
	recommender    Recommender
	model          string
	allowedOrigins []string
	notifier       *RecommendationNotifier
}

// NewServer constructs the API server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.DBPath == "" {
		return nil, errors.New("db path required")
	}
	if cfg.Settings == nil {
		return nil, errors.New("settings required")
	}
	if cfg.Recommender == nil {
		return nil, errors.New("recommender required")
	}
	db, err := store.Open(cfg.DBPath, cfg.SilentDB)
	if err != nil {
		return nil, err
	}

	return &Server{
		db:             db,
		settings:       cfg.Settings,
		recommender:    cfg.Recommender,
		model:          cfg.Model,
		allowedOrigins: cfg.AllowedOrigins,
		notifier:       NewRecommendationNotifier(),
	}, nil
}

// Close releases the run history database.
func (s *Server) Close() error {
	return s.db.Close()
}

// Router configures gin routes.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowCredentials = true
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/api/healthz", s.handleHealth)
	r.GET("/api/config", s.handleConfig)

	api := r.Group("/api")
	{
		api.POST("/recommend", s.handleRecommend)
		api.GET("/recommend/stream", s.handleRecommendStream)
		api.GET("/runs", s.handleListRuns)
		api.GET("/runs/:id", s.handleGetRun)
	}

	return r, nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleConfig(c *gin.Context) {
	runs, err := s.db.CountRuns()
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"app_env":           s.settings.AppEnv,
		"provider":          s.settings.Provider,
		"yelp_api":          configured(s.settings.YelpAPIKey),
		"google_places_api": configured(s.settings.GooglePlacesAPIKey),
		"default_lat":       s.settings.DefaultLatitude,
		"default_lng":       s.settings.DefaultLongitude,
		"model":             s.model,
		"summary":           s.settings.Summary(),
		"runs":              runs,
	})
}

func (s *Server) handleListRuns(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 0 {
		page = 0
	}
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))
	if pageSize <= 0 {
		pageSize = 25
	}
	offset := page * pageSize

	rows, total, err := s.db.ListRuns(store.RunQuery{
		Outcome:  strings.TrimSpace(c.Query("outcome")),
		Provider: strings.TrimSpace(c.Query("provider")),
		Offset:   offset,
		Limit:    pageSize,
	})
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	dtos := make([]RunDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, RunFromModel(row))
	}
	c.JSON(http.StatusOK, RunsResponse{Items: dtos, Total: total})
}

func (s *Server) handleGetRun(c *gin.Context) {
	runID := strings.TrimSpace(c.Param("id"))
	if runID == "" {
		s.renderError(c, http.StatusBadRequest, errors.New("run id is required"))
		return
	}

	run, err := s.db.GetRun(runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.renderError(c, http.StatusNotFound, fmt.Errorf("run %s not found", runID))
		} else {
			s.renderError(c, http.StatusInternalServerError, err)
		}
		return
	}
	c.JSON(http.StatusOK, RunFromModel(*run))
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

func configured(v string) bool {
	return strings.TrimSpace(v) != ""
}
