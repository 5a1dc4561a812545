package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration for the taskdeck API service.
type Config struct {
	Addr           string        `env:"ADDR,default=:8080"`
	DBDSN          string        `env:"DB_DSN,required"`
	JWTSigningKey  string        `env:"JWT_SIGNING_KEY,required"`
	AuthTokenTTL   time.Duration `env:"AUTH_TOKEN_TTL,default=168h"`
	OTLPEndpoint   string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	NATSURL        string        `env:"NATS_URL"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:3000"`
	CookieDomain   string        `env:"COOKIE_DOMAIN"`
	CookieSecure   bool          `env:"COOKIE_SECURE,default=false"`
	RateLimit      int           `env:"RATE_LIMIT,default=100"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
