package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config is the process configuration, decoded from the environment at
// startup.
type Config struct {
	Port        string `env:"PORT,default=8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	// JWTSecret verifies bearer tokens issued by the identity provider.
	JWTSecret string `env:"JWT_SECRET,required"`

	// GCSBucket enables receipt image archival when set.
	GCSBucket string `env:"GCS_BUCKET"`

	// GeminiModel overrides the default receipt-scanning model.
	GeminiModel string `env:"GEMINI_MODEL"`

	// Rate limiting for mutation and scan endpoints, per user.
	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE,default=60"`
	RateLimitBurst     int `env:"RATE_LIMIT_BURST,default=10"`
}

// Load decodes the configuration from process environment variables.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	return &cfg, nil
}
