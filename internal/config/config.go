package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/otabekh/minbar/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port            string
	DBPath          string
	ScratchDir      string
	OperatorID      int64
	MediaHostURL    string
	GatewayURL      string
	TranslatorURL   string
	TranslatorKey   string
	TranslatorModel string
	LogLevel        string
	LogFormat       string
}

// Load loads configuration from the environment, reading a local .env
// file first when one exists.
func Load() *Config {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	operatorID, _ := strconv.ParseInt(os.Getenv("OPERATOR_ID"), 10, 64)

	return &Config{
		Port:            getEnv("PORT", constants.DefaultPort),
		DBPath:          getEnv("DB_PATH", constants.DefaultDBPath),
		ScratchDir:      getEnv("SCRATCH_DIR", constants.DefaultScratchDir),
		OperatorID:      operatorID,
		MediaHostURL:    getEnv("MEDIA_HOST_URL", "http://127.0.0.1:8090"),
		GatewayURL:      getEnv("GATEWAY_URL", "http://127.0.0.1:8091"),
		TranslatorURL:   getEnv("TRANSLATOR_URL", "https://api.mistral.ai"),
		TranslatorKey:   os.Getenv("TRANSLATOR_API_KEY"),
		TranslatorModel: getEnv("TRANSLATOR_MODEL", "mistral-small-latest"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
	}
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	if c.ScratchDir == "" {
		errors = append(errors, "SCRATCH_DIR cannot be empty")
	}

	if c.OperatorID == 0 {
		errors = append(errors, "OPERATOR_ID must be set to the operator's numeric identity")
	}

	if c.MediaHostURL == "" {
		errors = append(errors, "MEDIA_HOST_URL cannot be empty")
	} else if _, err := url.Parse(c.MediaHostURL); err != nil {
		errors = append(errors, fmt.Sprintf("MEDIA_HOST_URL is not a valid URL: %s", c.MediaHostURL))
	}

	if c.TranslatorURL == "" {
		errors = append(errors, "TRANSLATOR_URL cannot be empty")
	} else if _, err := url.Parse(c.TranslatorURL); err != nil {
		errors = append(errors, fmt.Sprintf("TRANSLATOR_URL is not a valid URL: %s", c.TranslatorURL))
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
