package config

import (
	"errors"
	"fmt"
	"time"
)

type Config struct {
	Bind        string
	Port        int
	PublicURL   string
	CORSOrigins string

	CatalogFile     string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	RedisAddr  string
	VerdictTTL time.Duration

	LogLevel  string
	LogFormat string

	AI AIConfig
}

// Default returns a config with every field at its flag default.
func Default() *Config {
	return &Config{
		Bind:            "0.0.0.0",
		Port:            3001,
		CORSOrigins:     "*",
		MongoDatabase:   "turtlesoup",
		MongoCollection: "puzzles",
		VerdictTTL:      24 * time.Hour,
		LogLevel:        "info",
		LogFormat:       "console",
		AI:              DefaultAIConfig(),
	}
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.AI.Timeout <= 0 {
		return errors.New("oracle timeout must be positive")
	}
	if c.AI.Model == "" {
		return errors.New("gemini model must not be empty")
	}
	if c.RedisAddr != "" && c.VerdictTTL <= 0 {
		return errors.New("verdict ttl must be positive when redis is enabled")
	}
	if c.CatalogFile != "" && c.MongoURI != "" {
		return errors.New("--catalog-file and --mongo-uri are mutually exclusive")
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q (must be console or json)", c.LogFormat)
	}
	return nil
}

// RedisAddress strips an optional redis:// scheme.
func (c *Config) RedisAddress() string {
	addr := c.RedisAddr
	if len(addr) > 8 && addr[:8] == "redis://" {
		addr = addr[8:]
	}
	return addr
}
