package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// ServerConfig controls the HTTP high-score API and the SSH play server.
//
// Values come from the environment so container deployments can be tuned
// without flags; cobra flags override them when set explicitly.
type ServerConfig struct {
	HTTPAddr        string        `env:"JUNKSHOT_HTTP_ADDR"        envDefault:":8080"`
	SSHAddr         string        `env:"JUNKSHOT_SSH_ADDR"         envDefault:""`
	HostKeyPath     string        `env:"JUNKSHOT_HOST_KEY"         envDefault:""`
	DBPath          string        `env:"JUNKSHOT_DB_PATH"          envDefault:"~/.junkshot/scores.db"`
	CatalogURL      string        `env:"JUNKSHOT_CATALOG_URL"      envDefault:""`
	AllowedOrigins  []string      `env:"JUNKSHOT_ALLOWED_ORIGINS"  envSeparator:","`
	ShutdownTimeout time.Duration `env:"JUNKSHOT_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	IdleTimeout     time.Duration `env:"JUNKSHOT_SSH_IDLE_TIMEOUT" envDefault:"30m"`
}

// LoadServerConfig parses ServerConfig from environment variables.
func LoadServerConfig() (ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}
	return cfg, nil
}
