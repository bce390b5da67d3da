// Package config loads the settings of the wealth manager binaries.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/sri-akshat/wealth-manager/auth"
)

// Config holds every setting. Zero values are replaced by Defaults.
type Config struct {
	// Addr is the listen address of the platform, or of the single service served.
	Addr string `yaml:"addr"`
	// Services are the listen addresses of each service in split mode.
	Services map[string]string `yaml:"services"`

	DatabaseURL string        `yaml:"database_url"`
	JWTSecret   string        `yaml:"jwt_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	CORSOrigins []string      `yaml:"cors_origins"`

	Log Log `yaml:"log"`
	NAV NAV `yaml:"nav"`
}

type Log struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// NAV configures the provider used to revalue investments. An empty URL
// keeps the NAVs stored with the funds.
type NAV struct {
	URL      string `yaml:"url"`
	JSONPath string `yaml:"json_path"`
	CacheDir string `yaml:"cache_dir"`
}

// Defaults returns the configuration used for unset values.
func Defaults() Config {
	return Config{
		Addr: ":8000",
		Services: map[string]string{
			"investment":   ":8001",
			"user":         ":8002",
			"transaction":  ":8003",
			"kyc":          ":8004",
			"admin":        ":8005",
			"notification": ":8006",
		},
		DatabaseURL: "sqlite://wealth_manager.db",
		JWTSecret:   "wealth-manager-development-secret-change-me",
		TokenTTL:    30 * time.Minute,
		CORSOrigins: []string{"*"},
		Log:         Log{Level: "info", Format: "json"},
		NAV:         NAV{CacheDir: filepath.Join(os.TempDir(), "wealth-manager-nav")},
	}
}

// Load reads the YAML file at path over the defaults, then applies the WM_*
// environment overrides. An empty path, or a missing file, means defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("WM_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("WM_DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("WM_JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("WM_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid WM_TOKEN_TTL %q: %w", v, err)
		}
		cfg.TokenTTL = d
	}
	if v := os.Getenv("WM_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("WM_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("WM_NAV_URL"); v != "" {
		cfg.NAV.URL = v
	}
	if v := os.Getenv("WM_CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = strings.Split(v, ",")
		for i := range cfg.CORSOrigins {
			cfg.CORSOrigins[i] = strings.TrimSpace(cfg.CORSOrigins[i])
		}
	}
	return nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("database_url must not be empty"))
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("jwt_secret must not be empty"))
	} else if len(c.JWTSecret) < auth.MinSecretLength {
		errs = append(errs, fmt.Errorf("jwt_secret must be at least %d bytes, got %d", auth.MinSecretLength, len(c.JWTSecret)))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("token_ttl must be positive, got %v", c.TokenTTL))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}
	if c.NAV.URL != "" && !strings.Contains(c.NAV.URL, "{scheme_code}") {
		errs = append(errs, fmt.Errorf("nav.url %q has no {scheme_code} placeholder", c.NAV.URL))
	}
	return errors.Join(errs...)
}
