package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testConfig struct {
	Name   string     `yaml:"name"`
	Port   int        `yaml:"port" env:"TESTCFG_PORT"`
	Nested testNested `yaml:"nested" envPrefix:"TESTCFG_NESTED_"`
}

type testNested struct {
	Path string `yaml:"path" env:"PATH"`
}

type failingConfig struct {
	Port int `yaml:"port"`
}

func (c *failingConfig) Validate() error {
	return errors.New("boom")
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("TESTCFG_NAME", "octavio")
	path := writeFile(t, "name: ${TESTCFG_NAME}\nport: 8080\n")

	var cfg testConfig
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "octavio" || cfg.Port != 8080 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_EnvOverlay(t *testing.T) {
	t.Setenv("TESTCFG_PORT", "9090")
	t.Setenv("TESTCFG_NESTED_PATH", "/srv/posts")
	path := writeFile(t, "name: x\nport: 8080\nnested:\n  path: ./posts\n")

	var cfg testConfig
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("port = %d, want env override 9090", cfg.Port)
	}
	if cfg.Nested.Path != "/srv/posts" {
		t.Errorf("nested.path = %q", cfg.Nested.Path)
	}
}

func TestLoad_UnsetEnvKeepsYAML(t *testing.T) {
	path := writeFile(t, "port: 7070\n")

	var cfg testConfig
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 7070 {
		t.Errorf("port = %d", cfg.Port)
	}
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv("TESTCFG_PORT", "not-a-number")
	path := writeFile(t, "port: 1\n")

	var cfg testConfig
	if err := Load(path, &cfg); err == nil {
		t.Fatal("expected error for malformed env override")
	}
}

func TestLoad_Validation(t *testing.T) {
	path := writeFile(t, "port: 1\n")

	var cfg failingConfig
	err := Load(path, &cfg)
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadOptional_MissingFileKeepsDefaults(t *testing.T) {
	t.Setenv("TESTCFG_PORT", "7070")

	cfg := testConfig{Name: "default", Port: 1}
	if err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &cfg); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if cfg.Name != "default" || cfg.Port != 7070 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadOptional_ExistingFile(t *testing.T) {
	path := writeFile(t, "name: from-file\n")

	cfg := testConfig{Name: "default"}
	if err := LoadOptional(path, &cfg); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if cfg.Name != "from-file" {
		t.Errorf("name = %q", cfg.Name)
	}
}

func TestLoadOptional_ValidatesDefaults(t *testing.T) {
	var cfg failingConfig
	err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &cfg)
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("err = %v", err)
	}
}
