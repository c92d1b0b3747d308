package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// APIKeys holds all API keys loaded from environment
type APIKeys struct {
	OpenAI string
}

// LoadEnv loads environment variables from .env file if it exists.
// Missing files are fine; keys may be set system-wide.
func LoadEnv() error {
	envPaths := []string{
		".env",
		".env.local",
		"../.env",
		"../../.env",
	}

	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			break
		}
	}

	return nil
}

// GetAPIKeys retrieves and validates API keys from environment variables
func GetAPIKeys() (*APIKeys, error) {
	apiKeys := &APIKeys{
		OpenAI: strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
	}

	if apiKeys.OpenAI != "" {
		if !strings.HasPrefix(apiKeys.OpenAI, "sk-") {
			return nil, fmt.Errorf("invalid OPENAI_API_KEY format: must start with 'sk-'")
		}
		if len(apiKeys.OpenAI) < 20 {
			return nil, fmt.Errorf("invalid OPENAI_API_KEY format: too short")
		}
	}

	return apiKeys, nil
}

// RequireAPIKeys validates that the OpenAI key is available. Transcription
// cannot run without it, so callers fail fast before accepting work.
func RequireAPIKeys(apiKeys *APIKeys) error {
	if apiKeys.OpenAI == "" {
		return fmt.Errorf("transcription requires OPENAI_API_KEY in environment or .env file")
	}
	return nil
}

// InitializeConfig loads environment and validates configuration.
// This is the main entry point for configuration loading.
func InitializeConfig() (*APIKeys, error) {
	if err := LoadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	apiKeys, err := GetAPIKeys()
	if err != nil {
		return nil, fmt.Errorf("failed to get API keys: %w", err)
	}

	return apiKeys, nil
}
