package config

import (
	"strings"
	"time"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel   = "gemini-2.0-flash"
	DefaultOracleTimeout = 10 * time.Second
)

// AIConfig holds the judgment oracle settings
type AIConfig struct {
	APIKey  string        `json:"-"` // Never serialize
	BaseURL string        `json:"baseUrl"`
	Model   string        `json:"model"`
	Timeout time.Duration `json:"timeout"`
}

// DefaultAIConfig returns the default AI configuration
func DefaultAIConfig() AIConfig {
	return AIConfig{
		BaseURL: DefaultGeminiBaseURL,
		Model:   DefaultGeminiModel,
		Timeout: DefaultOracleTimeout,
	}
}

// IsEnabled returns true if the AI API is configured
func (c AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ModelEndpoint returns the generateContent endpoint for the configured model
func (c AIConfig) ModelEndpoint() string {
	return strings.TrimSuffix(c.BaseURL, "/") + "/models/" + c.Model + ":generateContent"
}

// ModelsEndpoint returns the model listing endpoint
func (c AIConfig) ModelsEndpoint() string {
	return strings.TrimSuffix(c.BaseURL, "/") + "/models"
}
