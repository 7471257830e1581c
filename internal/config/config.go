package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// ProviderKind selects the restaurant search backend.
type ProviderKind string

const (
	ProviderYelp   ProviderKind = "yelp"
	ProviderGoogle ProviderKind = "google"
)

const (
	Development = "development"
	Staging     = "staging"
	Production  = "production"
)

const (
	defaultModel       = "gpt-3.5-turbo"
	defaultTemperature = 0.15
	defaultDBPath      = "data/lunchgenie.db"
	defaultPort        = "2000"
)

// ErrMissingCredential is wrapped by every Error caused by an absent mandatory secret.
var ErrMissingCredential = errors.New("missing required credential")

// Error reports a configuration problem detected at startup.
type Error struct {
	Msg string
	Err error
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err is (or wraps) a configuration error.
func IsConfigError(err error) bool {
	var cfgErr *Error
	return errors.As(err, &cfgErr)
}

// Config holds process-wide settings. It is read-only once Load returns.
type Config struct {
	OpenAIAPIKey       string
	OpenAIModel        string
	OpenAIBaseURL      string
	OpenAITemperature  float64
	YelpAPIKey         string
	GooglePlacesAPIKey string
	DefaultLatitude    string
	DefaultLongitude   string
	Provider           ProviderKind
	AppEnv             string
	DBPath             string
	Port               string
}

// ParseProviderKind maps a RESTAURANT_PROVIDER token onto a ProviderKind.
func ParseProviderKind(raw string) (ProviderKind, error) {
	switch ProviderKind(strings.ToLower(strings.TrimSpace(raw))) {
	case ProviderYelp:
		return ProviderYelp, nil
	case ProviderGoogle:
		return ProviderGoogle, nil
	default:
		return "", &Error{Msg: fmt.Sprintf("unknown RESTAURANT_PROVIDER: %q", raw)}
	}
}

// Load reads envPath (when it exists) into the process environment, overriding
// existing values, and then builds a Config from the environment.
func Load(envPath string) (*Config, error) {
	if envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Overload(envPath); err != nil {
				return nil, &Error{Msg: fmt.Sprintf("load %s: %v", envPath, err), Err: err}
			}
		} else {
			logrus.WithField("path", envPath).Debug("no env file found, using process environment")
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		OpenAIAPIKey:       strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:        strings.TrimSpace(os.Getenv("OPENAI_MODEL")),
		OpenAIBaseURL:      strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		OpenAITemperature:  defaultTemperature,
		YelpAPIKey:         strings.TrimSpace(os.Getenv("YELP_API_KEY")),
		GooglePlacesAPIKey: strings.TrimSpace(os.Getenv("GOOGLE_PLACES_API_KEY")),
		DefaultLatitude:    os.Getenv("DEFAULT_LATITUDE"),
		DefaultLongitude:   os.Getenv("DEFAULT_LONGITUDE"),
		AppEnv:             strings.TrimSpace(os.Getenv("APP_ENV")),
		DBPath:             strings.TrimSpace(os.Getenv("LUNCHGENIE_DB_PATH")),
		Port:               strings.TrimSpace(os.Getenv("PORT")),
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, &Error{
			Msg: "Missing required OPENAI_API_KEY in environment or .env",
			Err: ErrMissingCredential,
		}
	}
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = defaultModel
	}
	if temp := strings.TrimSpace(os.Getenv("OPENAI_TEMPERATURE")); temp != "" {
		if v, err := strconv.ParseFloat(temp, 64); err == nil {
			cfg.OpenAITemperature = v
		}
	}

	rawProvider := os.Getenv("RESTAURANT_PROVIDER")
	if strings.TrimSpace(rawProvider) == "" {
		rawProvider = string(ProviderYelp)
	}
	kind, err := ParseProviderKind(rawProvider)
	if err != nil {
		return nil, err
	}
	cfg.Provider = kind

	if cfg.AppEnv == "" {
		cfg.AppEnv = Development
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	return cfg, nil
}

// Summary returns a description of the configuration that omits secrets.
func (c *Config) Summary() string {
	return fmt.Sprintf(
		"Config(app_env=%s, provider=%s, Yelp API=%s, Google Places API=%s, default_lat=%s, default_lng=%s)",
		c.AppEnv,
		c.Provider,
		setOrUnset(c.YelpAPIKey),
		setOrUnset(c.GooglePlacesAPIKey),
		c.DefaultLatitude,
		c.DefaultLongitude,
	)
}

func setOrUnset(v string) string {
	if v == "" {
		return "unset"
	}
	return "set"
}
