package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Defaults for the reconciliation knobs. All of them can be overridden with
// environment variables, and most again with command line flags.
const (
	DefaultAPIURL         = "https://api.github.com"
	DefaultRunnerImage    = "ghcr.io/actions/actions-runner:latest"
	DefaultLabelPrefix    = "park"
	DefaultActivityWindow = 7 * 24 * time.Hour
	DefaultConcurrency    = 1
	DefaultDeadline       = 10 * time.Minute
	DefaultRetries        = 1
)

type Config struct {
	Token          string
	Owner          string
	APIURL         string
	RunnerImage    string
	LabelPrefix    string
	ActivityWindow time.Duration
	Concurrency    int
	Deadline       time.Duration
	Retries        int
	Debug          bool
}

// Load reads the configuration from the environment. A missing GITHUB_TOKEN
// is not an error here so that commands like `park version` keep working;
// commands that talk to GitHub call RequireToken first.
func Load() (*Config, error) {
	cfg := &Config{
		Token:          os.Getenv("GITHUB_TOKEN"),
		Owner:          os.Getenv("PARK_OWNER"),
		APIURL:         envOr("PARK_API_URL", DefaultAPIURL),
		RunnerImage:    envOr("PARK_RUNNER_IMAGE", DefaultRunnerImage),
		LabelPrefix:    envOr("PARK_LABEL_PREFIX", DefaultLabelPrefix),
		ActivityWindow: DefaultActivityWindow,
		Concurrency:    DefaultConcurrency,
		Deadline:       DefaultDeadline,
		Retries:        DefaultRetries,
		Debug:          os.Getenv("PARK_DEBUG") == "true",
	}

	if v := os.Getenv("PARK_ACTIVITY_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PARK_ACTIVITY_WINDOW %q: %w", v, err)
		}
		cfg.ActivityWindow = d
	}
	if v := os.Getenv("PARK_DEADLINE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PARK_DEADLINE %q: %w", v, err)
		}
		cfg.Deadline = d
	}
	if v := os.Getenv("PARK_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid PARK_CONCURRENCY %q: must be a positive integer", v)
		}
		cfg.Concurrency = n
	}
	if v := os.Getenv("PARK_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid PARK_RETRIES %q: must be a non-negative integer", v)
		}
		cfg.Retries = n
	}

	return cfg, nil
}

// RequireToken returns an error with setup instructions when no GitHub
// token is configured.
func (c *Config) RequireToken() error {
	if c.Token == "" {
		return fmt.Errorf("GITHUB_TOKEN environment variable is required\n" +
			"Create a personal access token with repo scope at https://github.com/settings/tokens")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
