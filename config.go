package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config carries everything the server needs to start. Values come from
// an optional YAML file, then environment variables override per key.
type Config struct {
	Port       string `yaml:"port"`
	AdminToken string `yaml:"admin_token"`

	// DynamoDB mode. All three tables plus the stream ARN enable it.
	SubmissionsTable string `yaml:"submissions_table"`
	ReactionsTable   string `yaml:"reactions_table"`
	ProgressTable    string `yaml:"progress_table"`
	StreamArn        string `yaml:"stream_arn"`

	// Postgres mode.
	DatabaseURL string `yaml:"database_url"`

	GeminiAPIKey string `yaml:"gemini_api_key"`
	OpenAIAPIKey string `yaml:"openai_api_key"`

	IdentityFile        string `yaml:"identity_file"`
	MaxPerHour          int    `yaml:"max_per_hour"`
	MaxReactionsPerHour int    `yaml:"max_reactions_per_hour"`
}

// Per-token sliding-window quotas. Reacting is cheap and frequent;
// submitting is not.
const (
	defaultMaxPerHour          = 5
	defaultMaxReactionsPerHour = 60
)

// LoadConfig reads the YAML file at path when it exists, then applies
// environment overrides. A missing file is not an error; a malformed one is.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Port:                "8080",
		MaxPerHour:          defaultMaxPerHour,
		MaxReactionsPerHour: defaultMaxReactionsPerHour,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	overrideString(&cfg.Port, "PORT")
	overrideString(&cfg.AdminToken, "CTEA_ADMIN_TOKEN")
	overrideString(&cfg.SubmissionsTable, "CTEA_SUBMISSIONS_TABLE")
	overrideString(&cfg.ReactionsTable, "CTEA_REACTIONS_TABLE")
	overrideString(&cfg.ProgressTable, "CTEA_PROGRESS_TABLE")
	overrideString(&cfg.StreamArn, "CTEA_STREAM_ARN")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")
	overrideString(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	overrideString(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	overrideString(&cfg.IdentityFile, "CTEA_IDENTITY_FILE")

	if v := os.Getenv("CTEA_MAX_PER_HOUR"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid CTEA_MAX_PER_HOUR: %q", v)
		}
		cfg.MaxPerHour = n
	}
	if v := os.Getenv("CTEA_MAX_REACTIONS_PER_HOUR"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid CTEA_MAX_REACTIONS_PER_HOUR: %q", v)
		}
		cfg.MaxReactionsPerHour = n
	}

	return cfg, nil
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// UseDynamoDB reports whether the DynamoDB tables are configured.
func (c *Config) UseDynamoDB() bool {
	return c.SubmissionsTable != "" && c.ReactionsTable != "" && c.ProgressTable != ""
}

// UsePostgres reports whether a Postgres connection string is configured.
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}
