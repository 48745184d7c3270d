package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the process configuration read from the environment.
type Config struct {
	// SettingsDir is the directory of the settings file. Empty selects the
	// user cache directory.
	SettingsDir string `env:"FAKEGAME_SETTINGS_DIR"`
	// SettingsFormat is the settings file codec, plist or json.
	SettingsFormat string `env:"FAKEGAME_SETTINGS_FORMAT" envDefault:"plist"`
	// Catalog is the path of a simulator catalog. Empty selects the built-in catalog.
	Catalog string `env:"FAKEGAME_CATALOG"`
	// LedgerURL is a sqlite:// or postgres:// connection string. Empty disables the ledger.
	LedgerURL string `env:"FAKEGAME_LEDGER_URL"`
	LogLevel  string `env:"FAKEGAME_LOG_LEVEL" envDefault:"info"`
	APIPort   int    `env:"FAKEGAME_API_PORT" envDefault:"9090"`
}

// Load reads the optional dotenv files, then parses the environment.
// Values already present in the environment win over dotenv values.
func Load(dotenvFiles ...string) (*Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, file := range dotenvFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values env cannot check on its own.
func (c *Config) Validate() error {
	switch c.SettingsFormat {
	case "plist", "json":
	default:
		return fmt.Errorf("invalid settings format %q: must be plist or json", c.SettingsFormat)
	}
	if c.APIPort < 0 || c.APIPort > 65535 {
		return fmt.Errorf("invalid API port %d", c.APIPort)
	}
	return nil
}
