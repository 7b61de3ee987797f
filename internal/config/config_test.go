package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoadFrom_Valid(t *testing.T) {
	p := writeConfig(t, `renderer:
  binary: "/opt/wkhtmltopdf/bin/wkhtmltopdf"
  page_size: "Letter"
  javascript_delay_ms: 500
server:
  port: "9000"
cache:
  enabled: true
  ttl: 1h
logger:
  level: "debug"
`)
	cfg, err := LoadFrom(p)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Renderer.Binary != "/opt/wkhtmltopdf/bin/wkhtmltopdf" {
		t.Fatalf("unexpected binary: %q", cfg.Renderer.Binary)
	}
	if cfg.Renderer.PageSize != "Letter" {
		t.Fatalf("unexpected page size: %q", cfg.Renderer.PageSize)
	}
	// Untouched fields keep defaults.
	if cfg.Renderer.MarginInches != 0.75 {
		t.Fatalf("unexpected margin: %v", cfg.Renderer.MarginInches)
	}
	if cfg.Server.Port != ":9000" {
		t.Fatalf("port not normalized: %q", cfg.Server.Port)
	}
	if cfg.Cache.TTL.Std() != time.Hour {
		t.Fatalf("unexpected ttl: %v", cfg.Cache.TTL.Std())
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yml  string
	}{
		{name: "unknown engine", yml: "renderer:\n  engine: \"ghostscript\"\n"},
		{name: "negative delay", yml: "renderer:\n  javascript_delay_ms: -1\n"},
		{name: "margin out of range", yml: "renderer:\n  margin_inches: 5.0\n"},
		{name: "bad ttl", yml: "cache:\n  ttl: \"soon\"\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := writeConfig(t, tc.yml)
			if _, err := LoadFrom(p); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("WEBSNATCH_CONFIG", "")
	t.Setenv("WKHTMLTOPDF_BIN", "")
	t.Setenv("CHROME_BIN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Renderer.Binary != "wkhtmltopdf" {
		t.Fatalf("unexpected default binary: %q", cfg.Renderer.Binary)
	}
	if cfg.Renderer.PageSize != "A4" || cfg.Renderer.JavascriptDelayMS != 1000 {
		t.Fatalf("unexpected renderer defaults: %+v", cfg.Renderer)
	}
}

func TestLoad_UsesConfigPathEnv(t *testing.T) {
	p := writeConfig(t, `renderer:
  page_size: "A3"
`)
	t.Setenv("WEBSNATCH_CONFIG", p)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Renderer.PageSize != "A3" {
		t.Fatalf("expected WEBSNATCH_CONFIG to be used")
	}
}

func TestApplyEnv_BinaryOverride(t *testing.T) {
	t.Setenv("WKHTMLTOPDF_BIN", "/usr/local/bin/wkhtmltopdf")
	t.Setenv("CHROME_BIN", "/usr/bin/chromium")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Renderer.Binary != "/usr/local/bin/wkhtmltopdf" {
		t.Fatalf("WKHTMLTOPDF_BIN not applied: %q", cfg.Renderer.Binary)
	}
	if cfg.Renderer.ChromePath != "/usr/bin/chromium" {
		t.Fatalf("CHROME_BIN not applied: %q", cfg.Renderer.ChromePath)
	}
}
