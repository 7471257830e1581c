package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"lunchgenie/internal/agent"
	"lunchgenie/internal/ai"
	"lunchgenie/internal/config"
	"lunchgenie/internal/location"
	"lunchgenie/internal/present"
	"lunchgenie/internal/provider"
)

const pingTimeout = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	command := "ping"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command, args = args[0], args[1:]
	}

	switch command {
	case "ping":
		return runPing(ctx, args, stdout, stderr)
	case "recommend":
		return runRecommend(ctx, args, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q (want ping or recommend)\n", command)
		return 2
	}
}

func runPing(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ping", flag.ContinueOnError)
	fs.SetOutput(stderr)
	envPath := fs.String("env", ".env", "Path to a dotenv file loaded before reading the environment")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(*envPath)
	if err != nil {
		return reportError(stdout, err)
	}

	client, err := ai.NewClient(ai.Config{
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.OpenAIModel,
		BaseURL:     cfg.OpenAIBaseURL,
		Temperature: cfg.OpenAITemperature,
		Timeout:     pingTimeout,
	})
	if err != nil {
		return reportError(stdout, err)
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	reply, err := client.Ping(ctx)
	if err != nil {
		return reportError(stdout, err)
	}
	fmt.Fprintf(stdout, "LLM Response: %s\n", reply)
	return 0
}

type recommendOptions struct {
	envPath string
	request agent.Request
}

func parseRecommendFlags(args []string, stderr io.Writer) (recommendOptions, error) {
	fs := flag.NewFlagSet("recommend", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		envPath     = fs.String("env", ".env", "Path to a dotenv file loaded before reading the environment")
		minRating   = fs.Float64("min-rating", agent.DefaultMinRating, "Minimum provider rating (0-5)")
		maxDistance = fs.Int("max-distance", agent.DefaultMaxDistanceM, "Search radius in metres")
		place       = fs.String("location", location.DefaultPlace, "Free-text place to search around")
		lat         optionalFloat
		lon         optionalFloat
		cuisines    = cuisineList{values: append([]string(nil), agent.DefaultCuisines...)}
	)
	fs.Var(&cuisines, "cuisines", "Comma-separated cuisines (repeatable)")
	fs.Var(&lat, "lat", "Search centre latitude (requires -lon)")
	fs.Var(&lon, "lon", "Search centre longitude (requires -lat)")
	if err := fs.Parse(args); err != nil {
		return recommendOptions{}, err
	}

	if lat.set != lon.set {
		return recommendOptions{}, errors.New("-lat and -lon must be supplied together")
	}
	if *minRating < 0 || *minRating > 5 {
		return recommendOptions{}, errors.New("-min-rating must be between 0 and 5")
	}
	if *maxDistance <= 0 {
		return recommendOptions{}, errors.New("-max-distance must be positive")
	}

	req := agent.DefaultRequest()
	req.Cuisines = cuisines.values
	req.MinRating = *minRating
	req.MaxDistanceM = *maxDistance
	req.Location = strings.TrimSpace(*place)
	if lat.set {
		req.Latitude = &lat.value
		req.Longitude = &lon.value
	}
	return recommendOptions{envPath: *envPath, request: req}, nil
}

func runRecommend(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseRecommendFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, err)
		}
		return 2
	}

	cfg, err := loadConfig(opts.envPath)
	if err != nil {
		return reportError(stdout, err)
	}

	recommender, _, err := agent.FromConfig(cfg)
	if err != nil {
		return reportError(stdout, err)
	}

	req := opts.request
	req.Progress = func(p agent.Progress) {
		switch p.Stage {
		case agent.StageSearched:
			fmt.Fprintf(stdout, "Found %d high-rated options. Analyzing reviews...\n", p.Total)
		case agent.StageAnalyzed:
			fmt.Fprintf(stdout, "Analyzing reviews for %s (%d).\n", p.Venue, p.Reviews)
		}
	}

	outcome, err := recommender.Recommend(ctx, req)
	if err != nil {
		return reportError(stdout, err)
	}
	if err := present.Write(stdout, outcome); err != nil {
		return reportError(stdout, err)
	}
	if outcome.Kind == agent.OutcomeProviderFailed {
		return 1
	}
	return 0
}

func loadConfig(envPath string) (*config.Config, error) {
	cfg, err := config.Load(envPath)
	if err != nil {
		return nil, err
	}
	config.ConfigureLogging(cfg.AppEnv)
	logrus.Debug(cfg.Summary())
	return cfg, nil
}

func reportError(w io.Writer, err error) int {
	if config.IsConfigError(err) || errors.Is(err, provider.ErrMissingCredentials) || errors.Is(err, ai.ErrDisabled) {
		fmt.Fprintf(w, "Configuration error: %v\n", err)
	} else {
		fmt.Fprintf(w, "Unexpected error: %v\n", err)
	}
	return 1
}

// cuisineList starts from the defaults; the first -cuisines replaces them and
// later ones append.
type cuisineList struct {
	values []string
	set    bool
}

func (c *cuisineList) String() string {
	if c == nil {
		return ""
	}
	return strings.Join(c.values, ",")
}

func (c *cuisineList) Set(value string) error {
	if !c.set {
		c.values, c.set = nil, true
	}
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			c.values = append(c.values, trimmed)
		}
	}
	if len(c.values) == 0 {
		return errors.New("at least one cuisine is required")
	}
	return nil
}

type optionalFloat struct {
	value float64
	set   bool
}

func (o *optionalFloat) String() string {
	if o == nil || !o.set {
		return ""
	}
	return strconv.FormatFloat(o.value, 'f', -1, 64)
}

func (o *optionalFloat) Set(value string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fmt.Errorf("invalid coordinate %q", value)
	}
	o.value, o.set = v, true
	return nil
}
