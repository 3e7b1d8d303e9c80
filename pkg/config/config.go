package config

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Content ContentConfig
	LLM     LLMConfig
	TTS     TTSConfig
	Storage StorageConfig
	Feed    FeedConfig
	Output  OutputConfig
}

// ContentConfig points at the source document to turn into an episode.
type ContentConfig struct {
	Source string `envconfig:"SOURCE" validate:"required"`
}

// LLMConfig holds settings for the script-generation model.
type LLMConfig struct {
	Provider    string  `envconfig:"PROVIDER" default:"openai" validate:"required"`
	BaseURL     string  `envconfig:"BASE_URL" default:"https://api.openai.com"`
	APIKey      string  `envconfig:"API_KEY" validate:"required"`
	Model       string  `envconfig:"MODEL" default:"gpt-4o"`
	Temperature float64 `envconfig:"TEMPERATURE" default:"0.7"`
	MaxTokens   int     `envconfig:"MAX_TOKENS" default:"8000"`
}

// Gender selects a default voice when a participant's voice is not recognized.
type Gender string

const (
	GenderMale      Gender = "male"
	GenderFemale    Gender = "female"
	GenderNonBinary Gender = "non_binary"
)

// Participant describes one podcast host and their voice configuration.
type Participant struct {
	Name         string `json:"name" validate:"required"`
	Voice        string `json:"voice"`
	Gender       Gender `json:"gender"`
	Personality  string `json:"personality"`
	LanguageCode string `json:"language_code"`
}

// ParticipantList decodes a JSON array of participants from a single env var.
type ParticipantList []Participant

// Decode implements envconfig.Decoder.
func (p *ParticipantList) Decode(value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return json.Unmarshal([]byte(value), p)
}

// TTSConfig holds speech synthesis configuration.
type TTSConfig struct {
	Enabled      bool            `envconfig:"ENABLED" default:"true"`
	Provider     string          `envconfig:"PROVIDER" default:"google" validate:"oneof=google openai zyphra"`
	APIKey       string          `envconfig:"API_KEY"`
	BaseURL      string          `envconfig:"BASE_URL"`
	Model        string          `envconfig:"MODEL" default:"tts-1"`
	Participants ParticipantList `envconfig:"PARTICIPANTS"`
}

// StorageConfig holds S3-compatible object storage configuration.
type StorageConfig struct {
	Enabled         bool   `envconfig:"ENABLED" default:"true"`
	Endpoint        string `envconfig:"ENDPOINT"`
	AccessKeyID     string `envconfig:"ACCESS_KEY"`
	SecretAccessKey string `envconfig:"SECRET_KEY"`
	BucketName      string `envconfig:"BUCKET"`
	Region          string `envconfig:"REGION" default:"us-east-1"`
	UseSSL          bool   `envconfig:"USE_SSL" default:"true"`
	CustomDomain    string `envconfig:"CUSTOM_DOMAIN"`
	AudioPrefix     string `envconfig:"AUDIO_PREFIX" default:"episodes"`
	FeedPrefix      string `envconfig:"FEED_PREFIX" default:"feeds"`
}

// FeedConfig holds podcast feed metadata.
type FeedConfig struct {
	Slug        string   `envconfig:"SLUG" validate:"required"`
	Title       string   `envconfig:"TITLE" validate:"required"`
	Description string   `envconfig:"DESCRIPTION"`
	Author      string   `envconfig:"AUTHOR"`
	Email       string   `envconfig:"EMAIL"`
	Website     string   `envconfig:"WEBSITE"`
	ImageURL    string   `envconfig:"IMAGE_URL"`
	Language    string   `envconfig:"LANGUAGE" default:"en"`
	Copyright   string   `envconfig:"COPYRIGHT"`
	Categories  []string `envconfig:"CATEGORIES"`
	Explicit    bool     `envconfig:"EXPLICIT" default:"false"`
}

// OutputConfig holds local output paths.
type OutputConfig struct {
	Dir          string `envconfig:"DIR" default:"generated_podcasts"`
	DatabasePath string `envconfig:"DATABASE_PATH" default:"assets/podcasts.db"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	cfg := &Config{}
	if err := envconfig.Process("PODGEN_CONTENT", &cfg.Content); err != nil {
		return nil, fmt.Errorf("failed to load content config: %w", err)
	}
	if err := envconfig.Process("PODGEN_LLM", &cfg.LLM); err != nil {
		return nil, fmt.Errorf("failed to load llm config: %w", err)
	}
	if err := envconfig.Process("PODGEN_TTS", &cfg.TTS); err != nil {
		return nil, fmt.Errorf("failed to load tts config: %w", err)
	}
	if err := envconfig.Process("PODGEN_STORAGE", &cfg.Storage); err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	if err := envconfig.Process("PODGEN_FEED", &cfg.Feed); err != nil {
		return nil, fmt.Errorf("failed to load feed config: %w", err)
	}
	if err := envconfig.Process("PODGEN_OUTPUT", &cfg.Output); err != nil {
		return nil, fmt.Errorf("failed to load output config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.TTS.Enabled {
		if len(c.TTS.Participants) == 0 {
			return fmt.Errorf("PODGEN_TTS_PARTICIPANTS is required when TTS is enabled")
		}
		seen := make(map[string]struct{}, len(c.TTS.Participants))
		for _, p := range c.TTS.Participants {
			if p.Name == "" {
				return fmt.Errorf("participant name must not be empty")
			}
			if _, ok := seen[p.Name]; ok {
				return fmt.Errorf("duplicate participant name: %s", p.Name)
			}
			seen[p.Name] = struct{}{}
		}
	}

	if c.Storage.Enabled {
		if c.Storage.BucketName == "" {
			return fmt.Errorf("PODGEN_STORAGE_BUCKET is required when storage is enabled")
		}
		if c.Storage.AccessKeyID == "" || c.Storage.SecretAccessKey == "" {
			return fmt.Errorf("storage credentials are required when storage is enabled")
		}
	}

	return nil
}
