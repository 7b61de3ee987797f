// Package config loads the YAML configuration for websnatch. Every field has
// a default, so the CLI works without any config file at all.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "24h" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// RendererConfig controls how pages are turned into PDFs.
type RendererConfig struct {
	// Engine selects the rendering backend: "wkhtmltopdf" or "chrome".
	Engine string `yaml:"engine"`
	// Binary is the wkhtmltopdf executable, resolved on PATH when bare.
	Binary            string  `yaml:"binary"`
	PageSize          string  `yaml:"page_size"`
	MarginInches      float64 `yaml:"margin_inches"`
	JavascriptDelayMS int     `yaml:"javascript_delay_ms"`
	// TimeoutSecs bounds a single render in serve mode. The CLI imposes no
	// timeout on the child process.
	TimeoutSecs     int    `yaml:"timeout_secs"`
	ChromePath      string `yaml:"chrome_path"`
	ChromeNoSandbox bool   `yaml:"chrome_no_sandbox"`
}

// ServerConfig holds the serve-mode listen address.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

// CacheConfig holds the optional serve-mode PDF cache settings.
type CacheConfig struct {
	Enabled   bool     `yaml:"enabled"`
	RedisHost string   `yaml:"redis_host"`
	RedisDB   int      `yaml:"redis_db"`
	TTL       Duration `yaml:"ttl"`
}

// LoggerConfig holds log sink and rotation settings.
type LoggerConfig struct {
	File       string `yaml:"file"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Config is the full websnatch configuration.
type Config struct {
	Renderer RendererConfig `yaml:"renderer"`
	Server   ServerConfig   `yaml:"server"`
	Cache    CacheConfig    `yaml:"cache"`
	Logger   LoggerConfig   `yaml:"logger"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Renderer: RendererConfig{
			Engine:            "wkhtmltopdf",
			Binary:            "wkhtmltopdf",
			PageSize:          "A4",
			MarginInches:      0.75,
			JavascriptDelayMS: 1000,
			TimeoutSecs:       60,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: ":8080",
		},
		Cache: CacheConfig{
			RedisHost: "127.0.0.1:6379",
			TTL:       Duration(24 * time.Hour),
		},
		Logger: LoggerConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
	}
}

// Load reads the config from WEBSNATCH_CONFIG when set, otherwise returns
// defaults with env overrides applied.
func Load() (Config, error) {
	if p := os.Getenv("WEBSNATCH_CONFIG"); p != "" {
		return LoadFrom(p)
	}
	cfg := Default()
	cfg.applyEnv()
	return cfg, nil
}

// LoadFrom reads and validates the config file at path, layered on defaults.
func LoadFrom(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// applyEnv applies common container env overrides, same precedence as the
// renderer service: env beats file for binary locations.
func (c *Config) applyEnv() {
	if v := os.Getenv("WKHTMLTOPDF_BIN"); v != "" {
		c.Renderer.Binary = v
	}
	if c.Renderer.ChromePath == "" {
		if v := os.Getenv("CHROME_BIN"); v != "" {
			c.Renderer.ChromePath = v
		}
	}
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Renderer.Engine) {
	case "", "wkhtmltopdf", "chrome", "chromium":
	default:
		return fmt.Errorf("unknown renderer engine %q", c.Renderer.Engine)
	}
	if c.Renderer.MarginInches < 0 || c.Renderer.MarginInches > 3 {
		return fmt.Errorf("margin_inches %v out of range [0, 3]", c.Renderer.MarginInches)
	}
	if c.Renderer.JavascriptDelayMS < 0 {
		return fmt.Errorf("javascript_delay_ms must not be negative")
	}
	if c.Server.Port != "" && !strings.HasPrefix(c.Server.Port, ":") {
		c.Server.Port = ":" + c.Server.Port
	}
	return nil
}
