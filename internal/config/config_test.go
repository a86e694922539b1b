package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Scene.FPS != 25 || cfg.Scene.Width != 1920 {
		t.Errorf("scene defaults: %+v", cfg.Scene)
	}
	if cfg.Translate.BatchSize != 50 || cfg.Watch.SettleDelay != 500 {
		t.Errorf("defaults: %+v", cfg)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	content := `scene:
  fps: 30000
  fps_base: 1001
translate:
  provider: anthropic
  batch_size: 20
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SUBTRACK_SCENE_WIDTH", "1280")
	t.Setenv("SUBTRACK_SCENE_HEIGHT", "720")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Scene.FPS != 30000 || cfg.Scene.FPSBase != 1001 {
		t.Errorf("fps: %+v", cfg.Scene)
	}
	if cfg.Scene.Width != 1280 || cfg.Scene.Height != 720 {
		t.Errorf("env override not applied: %+v", cfg.Scene)
	}
	if cfg.Translate.Provider != "anthropic" || cfg.Translate.BatchSize != 20 || cfg.Translate.Concurrency != 3 {
		t.Errorf("translate: %+v", cfg.Translate)
	}

	rate, err := cfg.Scene.Timeline().Rate()
	if err != nil || rate < 29.96 || rate > 29.98 {
		t.Errorf("rate: %v %v", rate, err)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for explicit missing config")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"zero values filled", func(c *Config) { *c = Config{} }, ""},
		{"negative fps", func(c *Config) { c.Scene.FPS = -1 }, "scene.fps"},
		{"bad translate provider", func(c *Config) { c.Translate.Provider = "ollama" }, "translate.provider"},
		{"bad transcribe provider", func(c *Config) { c.Transcribe.Provider = "anthropic" }, "transcribe.provider"},
		{"negative batch", func(c *Config) { c.Translate.BatchSize = -5 }, "batch_size"},
		{"negative settle", func(c *Config) { c.Watch.SettleDelay = -1 }, "settle_delay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if cfg.Scene.FPS <= 0 || cfg.Project.Path == "" {
					t.Errorf("defaults not filled: %+v", cfg)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault error: %v", err)
	}
	if err := WriteDefault(path); err == nil {
		t.Error("expected error when the file exists")
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load of written defaults failed: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("round trip changed config: %+v", cfg)
	}
}

func TestAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "secret")
	key, env := APIKey("anthropic")
	if key != "secret" || env != "ANTHROPIC_API_KEY" {
		t.Errorf("got %q from %s", key, env)
	}
}
