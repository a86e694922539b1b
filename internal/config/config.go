package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mgpai22/subtrack/internal/timeline"
)

// FileName is looked up in the working directory when --config is not given.
const FileName = "subtrack.yaml"

const EnvPrefix = "SUBTRACK"

type Config struct {
	Project    ProjectConfig    `mapstructure:"project" yaml:"project"`
	Scene      SceneConfig      `mapstructure:"scene" yaml:"scene"`
	Translate  TranslateConfig  `mapstructure:"translate" yaml:"translate"`
	Transcribe TranscribeConfig `mapstructure:"transcribe" yaml:"transcribe"`
	Watch      WatchConfig      `mapstructure:"watch" yaml:"watch"`
}

type ProjectConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// defaults for projects that do not declare a scene
type SceneConfig struct {
	FPS     float64 `mapstructure:"fps" yaml:"fps"`
	FPSBase float64 `mapstructure:"fps_base" yaml:"fps_base"`
	Width   int     `mapstructure:"width" yaml:"width"`
	Height  int     `mapstructure:"height" yaml:"height"`
}

type TranslateConfig struct {
	Provider      string `mapstructure:"provider" yaml:"provider"`
	Model         string `mapstructure:"model" yaml:"model"`
	InputLanguage string `mapstructure:"input_language" yaml:"input_language"`
	Concurrency   int    `mapstructure:"concurrency" yaml:"concurrency"`
	BatchSize     int    `mapstructure:"batch_size" yaml:"batch_size"`
}

type TranscribeConfig struct {
	Provider      string `mapstructure:"provider" yaml:"provider"`
	Model         string `mapstructure:"model" yaml:"model"`
	Language      string `mapstructure:"language" yaml:"language"`
	ChunkDuration int    `mapstructure:"chunk_duration" yaml:"chunk_duration"`
	Concurrency   int    `mapstructure:"concurrency" yaml:"concurrency"`
}

type WatchConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
	// milliseconds to wait after a create event before reading the file
	SettleDelay int `mapstructure:"settle_delay" yaml:"settle_delay"`
}

func Default() *Config {
	return &Config{
		Project: ProjectConfig{Path: "project.yaml"},
		Scene:   SceneConfig{FPS: 25, FPSBase: 1, Width: 1920, Height: 1080},
		Translate: TranslateConfig{
			Provider:    "gemini",
			Concurrency: 3,
			BatchSize:   50,
		},
		Transcribe: TranscribeConfig{
			Provider:      "gemini",
			ChunkDuration: 180,
			Concurrency:   3,
		},
		Watch: WatchConfig{Dir: "inbox", SettleDelay: 500},
	}
}

// Load reads path (or subtrack.yaml in the working directory when path is
// empty), then SUBTRACK_* environment variables, over the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// keys must be registered for AutomaticEnv to reach them through Unmarshal
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("project.path", d.Project.Path)
	v.SetDefault("scene.fps", d.Scene.FPS)
	v.SetDefault("scene.fps_base", d.Scene.FPSBase)
	v.SetDefault("scene.width", d.Scene.Width)
	v.SetDefault("scene.height", d.Scene.Height)
	v.SetDefault("translate.provider", d.Translate.Provider)
	v.SetDefault("translate.model", d.Translate.Model)
	v.SetDefault("translate.input_language", d.Translate.InputLanguage)
	v.SetDefault("translate.concurrency", d.Translate.Concurrency)
	v.SetDefault("translate.batch_size", d.Translate.BatchSize)
	v.SetDefault("transcribe.provider", d.Transcribe.Provider)
	v.SetDefault("transcribe.model", d.Transcribe.Model)
	v.SetDefault("transcribe.language", d.Transcribe.Language)
	v.SetDefault("transcribe.chunk_duration", d.Transcribe.ChunkDuration)
	v.SetDefault("transcribe.concurrency", d.Transcribe.Concurrency)
	v.SetDefault("watch.dir", d.Watch.Dir)
	v.SetDefault("watch.settle_delay", d.Watch.SettleDelay)
}

// Validate fills unset values with defaults and rejects invalid ones.
func (c *Config) Validate() error {
	d := Default()

	if c.Scene.FPS < 0 || c.Scene.FPSBase < 0 {
		return fmt.Errorf("scene.fps and scene.fps_base must be positive")
	}
	if c.Scene.Width < 0 || c.Scene.Height < 0 {
		return fmt.Errorf("scene.width and scene.height must be positive")
	}
	if c.Scene.FPS == 0 {
		c.Scene.FPS = d.Scene.FPS
	}
	if c.Scene.FPSBase == 0 {
		c.Scene.FPSBase = 1
	}
	if c.Scene.Width == 0 || c.Scene.Height == 0 {
		c.Scene.Width, c.Scene.Height = d.Scene.Width, d.Scene.Height
	}

	if c.Project.Path == "" {
		c.Project.Path = d.Project.Path
	}

	if c.Translate.Provider == "" {
		c.Translate.Provider = d.Translate.Provider
	}
	switch c.Translate.Provider {
	case "gemini", "openai", "anthropic":
	default:
		return fmt.Errorf("translate.provider %q is not one of gemini, openai, anthropic", c.Translate.Provider)
	}
	if c.Translate.Concurrency < 0 || c.Translate.BatchSize < 0 {
		return fmt.Errorf("translate.concurrency and translate.batch_size must be positive")
	}
	if c.Translate.Concurrency == 0 {
		c.Translate.Concurrency = d.Translate.Concurrency
	}
	if c.Translate.BatchSize == 0 {
		c.Translate.BatchSize = d.Translate.BatchSize
	}

	if c.Transcribe.Provider == "" {
		c.Transcribe.Provider = d.Transcribe.Provider
	}
	switch c.Transcribe.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("transcribe.provider %q is not one of gemini, openai", c.Transcribe.Provider)
	}
	if c.Transcribe.ChunkDuration < 0 || c.Transcribe.Concurrency < 0 {
		return fmt.Errorf("transcribe.chunk_duration and transcribe.concurrency must be positive")
	}
	if c.Transcribe.ChunkDuration == 0 {
		c.Transcribe.ChunkDuration = d.Transcribe.ChunkDuration
	}
	if c.Transcribe.Concurrency == 0 {
		c.Transcribe.Concurrency = d.Transcribe.Concurrency
	}

	if c.Watch.Dir == "" {
		c.Watch.Dir = d.Watch.Dir
	}
	if c.Watch.SettleDelay < 0 {
		return fmt.Errorf("watch.settle_delay must not be negative")
	}

	return nil
}

func (s SceneConfig) Timeline() timeline.Scene {
	return timeline.Scene{FPS: s.FPS, FPSBase: s.FPSBase, Width: s.Width, Height: s.Height}
}

// WriteDefault writes the default configuration to path, refusing to
// overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// APIKey returns the key for a provider from its conventional environment
// variable.
func APIKey(provider string) (string, string) {
	var env string
	switch provider {
	case "gemini":
		env = "GEMINI_API_KEY"
	case "openai":
		env = "OPENAI_API_KEY"
	case "anthropic":
		env = "ANTHROPIC_API_KEY"
	default:
		env = strings.ToUpper(provider) + "_API_KEY"
	}
	return os.Getenv(env), env
}
