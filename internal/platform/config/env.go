package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the settings shared by every tskit command.
type Config struct {
	DBPath          string        `env:"TSKIT_DB_PATH" envDefault:"tskit.db"`
	TranslationsDir string        `env:"TSKIT_TRANSLATIONS_DIR" envDefault:"data/translations"`
	Prefixes        []string      `env:"TSKIT_PREFIXES" envSeparator:"," envDefault:"HydrogenVR"`
	Language        string        `env:"TSKIT_LANGUAGE"`
	HTTPTimeout     time.Duration `env:"TSKIT_HTTP_TIMEOUT" envDefault:"60s"`
	Workers         int           `env:"TSKIT_WORKERS" envDefault:"4"`
	ItemTimeout     time.Duration `env:"TSKIT_ITEM_TIMEOUT" envDefault:"2m"`

	// POSIX locale variables, consulted after Language.
	LCAll      string `env:"LC_ALL"`
	LCMessages string `env:"LC_MESSAGES"`
	Lang       string `env:"LANG"`
}

// LocaleCandidates returns the environment locale sources in priority order.
func (c Config) LocaleCandidates() []string {
	return []string{c.Language, c.LCAll, c.LCMessages, c.Lang}
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses Config from the environment and checks its bounds.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Workers < 1 {
		return Config{}, fmt.Errorf("TSKIT_WORKERS must be at least 1, got %d", cfg.Workers)
	}
	return cfg, nil
}
