package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Meta       MetaConfig       `yaml:"meta"`
	Redis      RedisConfig      `yaml:"redis"`
	Dedup      DedupConfig      `yaml:"dedup"`
	Conversion ConversionConfig `yaml:"conversion"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the listen address. An empty host binds all interfaces.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MetaConfig holds Meta Conversions API credentials and endpoint settings.
// AccessToken is the only required secret; conversion requests are rejected
// with a server-configuration error while it is absent.
type MetaConfig struct {
	PixelID        string `yaml:"pixel_id"`
	AccessToken    string `yaml:"access_token"`
	TestEventCode  string `yaml:"test_event_code"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the outbound request timeout as a duration
func (m MetaConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// RedisConfig holds the optional durable dedup store connection.
// When URL is empty the gate runs on the in-process store only.
type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// Enabled reports whether the durable store should be attempted at all.
func (r RedisConfig) Enabled() bool {
	return r.URL != ""
}

// DedupConfig holds the duplicate-submission gate settings
type DedupConfig struct {
	RetentionHours int `yaml:"retention_hours"`
}

// Retention returns the dedup retention window as a duration
func (d DedupConfig) Retention() time.Duration {
	return time.Duration(d.RetentionHours) * time.Hour
}

// ConversionConfig holds the fixed custom-data payload attached to every
// forwarded Purchase event.
type ConversionConfig struct {
	Currency          string  `yaml:"currency"`
	Value             float64 `yaml:"value"`
	ContentName       string  `yaml:"content_name"`
	ContentCategory   string  `yaml:"content_category"`
	FallbackSourceURL string  `yaml:"fallback_source_url"`
}

// Load reads configuration from a YAML file. A missing file is not an
// error: the zero Config plus defaults is a valid local setup, with
// secrets arriving via environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Meta.PixelID == "" {
		cfg.Meta.PixelID = "1923146491602931"
	}
	if cfg.Meta.BaseURL == "" {
		cfg.Meta.BaseURL = "https://graph.facebook.com/v18.0"
	}
	if cfg.Meta.TimeoutSeconds == 0 {
		cfg.Meta.TimeoutSeconds = 30
	}
	if cfg.Dedup.RetentionHours == 0 {
		cfg.Dedup.RetentionHours = 24
	}
	if cfg.Conversion.Currency == "" {
		cfg.Conversion.Currency = "BRL"
	}
	if cfg.Conversion.Value == 0 {
		cfg.Conversion.Value = 9.90
	}
	if cfg.Conversion.ContentName == "" {
		cfg.Conversion.ContentName = "Receitas Exclusivas"
	}
	if cfg.Conversion.ContentCategory == "" {
		cfg.Conversion.ContentCategory = "Digital Product"
	}
	if cfg.Conversion.FallbackSourceURL == "" {
		cfg.Conversion.FallbackSourceURL = "https://bonusmarmitas.com.br"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in production.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("META_PIXEL_ID"); v != "" {
		cfg.Meta.PixelID = v
	}
	if v := os.Getenv("META_ACCESS_TOKEN"); v != "" {
		cfg.Meta.AccessToken = v
	}
	if v := os.Getenv("META_TEST_EVENT_CODE"); v != "" {
		cfg.Meta.TestEventCode = v
	}
	if v := os.Getenv("META_BASE_URL"); v != "" {
		cfg.Meta.BaseURL = v
	}

	// Same variable names the hosted KV add-on exports, so existing
	// deployments need no renaming
	if v := os.Getenv("KV_REST_API_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("KV_REST_API_TOKEN"); v != "" {
		cfg.Redis.Password = v
	}

	if v := os.Getenv("DEDUP_RETENTION_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil && hours > 0 {
			cfg.Dedup.RetentionHours = hours
		}
	}

	return cfg, nil
}
