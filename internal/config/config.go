package config

import (
	"context"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Core settings
	WorkDir string `yaml:"work_dir"`
	Verbose bool   `yaml:"verbose"`

	// Engine settings
	Engine EngineConfig `yaml:"engine"`

	// Output settings
	Output OutputConfig `yaml:"output"`

	// Export settings
	Export ExportConfig `yaml:"export"`

	// HTTP API settings
	Server ServerConfig `yaml:"server"`
}

type EngineConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
	Threads     int    `yaml:"threads"`
}

type OutputConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	FrameRate float64 `yaml:"frame_rate"`
}

type ExportConfig struct {
	SegmentSeconds int `yaml:"segment_seconds"`
	LogTailLines   int `yaml:"log_tail_lines"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func defaultConfig() *Config {
	return &Config{
		WorkDir: "./work",
		Engine: EngineConfig{
			FFmpegPath:  "ffmpeg",
			FFprobePath: "ffprobe",
			Threads:     0,
		},
		Output: OutputConfig{
			Width:     1280,
			Height:    720,
			FrameRate: 30,
		},
		Export: ExportConfig{
			SegmentSeconds: 10,
			LogTailLines:   10,
		},
		Server: ServerConfig{
			Port: 7446,
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./clipforge.yaml",
		"./clipforge.yml",
		filepath.Join(os.Getenv("HOME"), ".clipforge", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
