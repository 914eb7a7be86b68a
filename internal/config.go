package internal

import (
	"errors"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/octavio/octavio/internal/markup"
	"github.com/octavio/octavio/internal/scheduler"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Content sources.
const (
	SourceMemory = "memory"
	SourceSQLite = "sqlite"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Content   ContentConfig     `yaml:"content"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Site      SiteConfig        `yaml:"site"`
	Auth      AuthConfig        `yaml:"auth"`
	RateLimit RateLimitConfig   `yaml:"rate_limit"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Site.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.RateLimit.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" env:"OCTAVIO_LOG_LEVEL"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port" env:"OCTAVIO_HTTP_PORT"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ContentConfig describes where posts live and how they are served.
//
// Source selects the provider behind the site and API:
//   - "memory" (default): an in-memory snapshot rebuilt on change.
//   - "sqlite": queries go to the SQLite index.
//
// Resync is an optional cron spec ("@every 10m") for a periodic full resync.
type ContentConfig struct {
	Path    string `yaml:"path" env:"OCTAVIO_CONTENT_PATH"`
	Source  string `yaml:"source" env:"OCTAVIO_CONTENT_SOURCE"`
	Watch   bool   `yaml:"watch" env:"OCTAVIO_CONTENT_WATCH"`
	Resync  string `yaml:"resync" env:"OCTAVIO_CONTENT_RESYNC"`
	Profile string `yaml:"profile" env:"OCTAVIO_CONTENT_PROFILE"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	if c.Source == "" {
		c.Source = SourceMemory
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Source, validation.In(SourceMemory, SourceSQLite)),
		validation.Field(&c.Resync, validation.By(func(any) error {
			if c.Resync == "" {
				return nil
			}
			return scheduler.ValidateSpec(c.Resync)
		})),
		validation.Field(&c.Profile, validation.By(func(any) error {
			_, err := markup.ParseProfile(c.Profile)
			return err
		})),
	)
}

// MarkupProfile returns the configured dialect profile.
func (c *ContentConfig) MarkupProfile() markup.Profile {
	p, _ := markup.ParseProfile(c.Profile)
	return p
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path" env:"OCTAVIO_SQLITE_PATH"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SiteConfig points at the site content file and the static asset directory.
type SiteConfig struct {
	Path   string `yaml:"path" env:"OCTAVIO_SITE_PATH"`
	Assets string `yaml:"assets" env:"OCTAVIO_SITE_ASSETS"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
//
// Authentication only guards the JSON API; the HTML site stays public.
type AuthConfig struct {
	Mode  string `yaml:"mode" env:"OCTAVIO_AUTH_MODE"`
	Token string `yaml:"token" env:"OCTAVIO_AUTH_TOKEN"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// RateLimitConfig holds per-client API rate limits. RPS <= 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps" env:"OCTAVIO_RATE_LIMIT_RPS"`
	Burst int     `yaml:"burst" env:"OCTAVIO_RATE_LIMIT_BURST"`
}

// Validate validates the rate limit configuration.
func (c *RateLimitConfig) Validate() error {
	if c.RPS > 0 && c.Burst < 1 {
		return errors.New("rate_limit: burst must be at least 1 when rps is set")
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Content: ContentConfig{
			Path:    "./content/posts",
			Source:  SourceMemory,
			Profile: "full",
		},
		SQLite: SQLiteConfig{
			Path: "./octavio.db",
		},
		Site: SiteConfig{
			Path:   "./config/site.yaml",
			Assets: "./assets",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		RateLimit: RateLimitConfig{
			RPS:   10,
			Burst: 20,
		},
	}
}
