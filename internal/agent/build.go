package agent

import (
	"fmt"

	"lunchgenie/internal/ai"
	"lunchgenie/internal/config"
	"lunchgenie/internal/location"
	"lunchgenie/internal/provider"
	"lunchgenie/internal/reviews"
)

// FromConfig builds the production Agent and the model client it uses.
func FromConfig(cfg *config.Config) (*Agent, *ai.Client, error) {
	llm, err := ai.NewClient(ai.Config{
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.OpenAIModel,
		BaseURL:     cfg.OpenAIBaseURL,
		Temperature: cfg.OpenAITemperature,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("openai client: %w", err)
	}

	p, err := provider.New(cfg.Provider, cfg)
	if err != nil {
		return nil, nil, err
	}

	fetcher := reviews.NewFetcher(reviews.Config{
		Provider:   cfg.Provider,
		YelpAPIKey: cfg.YelpAPIKey,
	})

	defaults := location.Defaults{Latitude: cfg.DefaultLatitude, Longitude: cfg.DefaultLongitude}
	return New(p, fetcher, ai.NewAnalyzer(llm), defaults), llm, nil
}
