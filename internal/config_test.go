package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/octavio/octavio/internal/markup"
	pkgconfig "github.com/octavio/octavio/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestContentConfig_DefaultSource(t *testing.T) {
	cfg := ContentConfig{Path: "./posts"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Source != SourceMemory {
		t.Errorf("source = %q, want %q", cfg.Source, SourceMemory)
	}
	if cfg.MarkupProfile() != markup.ProfileFull {
		t.Errorf("profile = %v, want full", cfg.MarkupProfile())
	}
}

func TestContentConfig_Invalid(t *testing.T) {
	cases := map[string]ContentConfig{
		"missing path":  {},
		"bad source":    {Path: "p", Source: "postgres"},
		"bad profile":   {Path: "p", Profile: "rich"},
		"bad resync":    {Path: "p", Resync: "every tuesday"},
		"seconds field": {Path: "p", Resync: "*/5 * * * * *"},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestContentConfig_BasicProfileAndResync(t *testing.T) {
	cfg := ContentConfig{Path: "p", Source: SourceSQLite, Profile: "basic", Resync: "@every 10m"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.MarkupProfile() != markup.ProfileBasic {
		t.Errorf("profile = %v, want basic", cfg.MarkupProfile())
	}
}

func TestRateLimitConfig(t *testing.T) {
	if err := (&RateLimitConfig{}).Validate(); err != nil {
		t.Errorf("disabled limiter should pass: %v", err)
	}
	if err := (&RateLimitConfig{RPS: 5}).Validate(); err == nil {
		t.Error("rps without burst should fail")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadConfig_EnvOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "app:\n  http:\n    port: 8080\ncontent:\n  path: ./posts\nsqlite:\n  path: ./x.db\nsite:\n  path: ./site.yaml\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OCTAVIO_HTTP_PORT", "9000")
	t.Setenv("OCTAVIO_CONTENT_SOURCE", "sqlite")
	t.Setenv("OCTAVIO_LOG_LEVEL", "debug")

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.HTTP.Port != 9000 {
		t.Errorf("port = %d", cfg.App.HTTP.Port)
	}
	if cfg.Content.Source != SourceSQLite {
		t.Errorf("source = %q", cfg.Content.Source)
	}
	if cfg.App.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %v", cfg.App.LogLevel)
	}
	if cfg.RateLimit.Burst != 20 {
		t.Errorf("defaults lost: burst = %d", cfg.RateLimit.Burst)
	}
}
