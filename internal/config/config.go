// Package config provides environment configuration for the API server.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string        `env:"PORT" envDefault:"8080"`
	ServerReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	ServerWriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"120s"`

	// SQLite settings
	DatabasePath string `env:"DATABASE_PATH" envDefault:"data/borderbuddy.db"`

	// NATS settings (chat message log)
	NATSURL      string `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	NATSCAFile   string `env:"NATS_CA_FILE"`
	NATSCertFile string `env:"NATS_CERT_FILE"`
	NATSKeyFile  string `env:"NATS_KEY_FILE"`
	NATSToken    string `env:"NATS_TOKEN"`

	// JWT settings
	JWTSecret     string        `env:"JWT_SECRET,required"`
	JWTExpiration time.Duration `env:"JWT_EXPIRATION" envDefault:"168h"`

	// LLM settings. An empty API key disables the provider; chat and
	// places fall back to canned responses.
	LLMProvider     string        `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey    string        `env:"OPENAI_API_KEY"`
	AnthropicAPIKey string        `env:"ANTHROPIC_API_KEY"`
	LLMModel        string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMTimeout      time.Duration `env:"LLM_TIMEOUT" envDefault:"12s"`
	LLMRetries      int           `env:"LLM_RETRIES" envDefault:"2"`

	// HTTP-level rate limiting (per authenticated user)
	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"60"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`

	// Action-level rate limiting
	ChatPostLimit       int           `env:"CHAT_POST_LIMIT" envDefault:"5"`
	ChatPostWindow      time.Duration `env:"CHAT_POST_WINDOW" envDefault:"1m"`
	PlacesGenerateLimit int           `env:"PLACES_GENERATE_LIMIT" envDefault:"3"`
	PlacesGenWindow     time.Duration `env:"PLACES_GENERATE_WINDOW" envDefault:"5m"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Tracing
	TracingEndpoint string `env:"TRACING_ENDPOINT" envDefault:"localhost:4318"`
	TracingEnabled  bool   `env:"TRACING_ENABLED" envDefault:"false"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
