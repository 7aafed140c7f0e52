package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const appName = "imgedit"

type Config struct {
	Image   ImageConfig   `mapstructure:"image" yaml:"image"`
	History HistoryConfig `mapstructure:"history" yaml:"history"`
	Theme   ThemeConfig   `mapstructure:"theme" yaml:"theme"`
}

// ImageConfig configures the image service and where results go
type ImageConfig struct {
	Provider  string        `mapstructure:"provider" yaml:"provider"`     // openai, kolors, debug
	APIKey    string        `mapstructure:"api_key" yaml:"api_key"`       // bearer token for the OpenAI-compatible endpoint
	BaseURL   string        `mapstructure:"base_url" yaml:"base_url"`     // e.g. https://api.openai.com/v1
	Model     string        `mapstructure:"model" yaml:"model"`           // gpt-image-1 or gpt-4o
	Output    string        `mapstructure:"output" yaml:"output"`         // default output file for edits
	OutputDir string        `mapstructure:"output_dir" yaml:"output_dir"` // directory for generated images
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`       // 0 = no client timeout
	Display   bool          `mapstructure:"display" yaml:"display"`       // show result inline
	Clipboard bool          `mapstructure:"clipboard" yaml:"clipboard"`   // copy result to clipboard
	Kolors    KolorsConfig  `mapstructure:"kolors" yaml:"kolors"`
}

// KolorsConfig configures the SiliconFlow Kolors provider
type KolorsConfig struct {
	APIKey         string  `mapstructure:"api_key" yaml:"api_key"`
	BaseURL        string  `mapstructure:"base_url" yaml:"base_url"`
	Model          string  `mapstructure:"model" yaml:"model"`
	ImageSize      string  `mapstructure:"image_size" yaml:"image_size"`
	Steps          int     `mapstructure:"steps" yaml:"steps"`
	Guidance       float64 `mapstructure:"guidance" yaml:"guidance"`
	Seed           int64   `mapstructure:"seed" yaml:"seed,omitempty"`
	NegativePrompt string  `mapstructure:"negative_prompt" yaml:"negative_prompt,omitempty"`
}

// HistoryConfig controls the run history database
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path,omitempty"` // Override default db location
}

// ThemeConfig allows customization of UI colors
// Colors can be ANSI color numbers (0-255) or hex codes (#RRGGBB)
type ThemeConfig struct {
	Primary string `mapstructure:"primary" yaml:"primary,omitempty"`
	Success string `mapstructure:"success" yaml:"success,omitempty"`
	Error   string `mapstructure:"error" yaml:"error,omitempty"`
	Muted   string `mapstructure:"muted" yaml:"muted,omitempty"`
	Spinner string `mapstructure:"spinner" yaml:"spinner,omitempty"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("image.provider", "openai")
	v.SetDefault("image.base_url", "https://api.openai.com/v1")
	v.SetDefault("image.model", "gpt-image-1")
	v.SetDefault("image.output", "edited.png")
	v.SetDefault("image.output_dir", "~/Pictures/imgedit")
	v.SetDefault("image.timeout", 10*time.Minute)
	v.SetDefault("image.display", true)
	v.SetDefault("image.clipboard", false)
	v.SetDefault("image.kolors.base_url", "https://api.siliconflow.cn/v1")
	v.SetDefault("image.kolors.model", "Kwai-Kolors/Kolors")
	v.SetDefault("image.kolors.image_size", "1024x1024")
	v.SetDefault("image.kolors.steps", 20)
	v.SetDefault("image.kolors.guidance", 7.5)
	v.SetDefault("history.enabled", true)
}

func Load() (*Config, error) {
	configPath, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	setDefaults(v)

	// Read config file (optional - won't error if missing)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	resolveImageCredentials(&cfg.Image, v.InConfig("image.base_url"))
	return &cfg, nil
}

// ApplyOverrides applies command-line provider and model overrides.
func (c *Config) ApplyOverrides(provider, model string) {
	if provider != "" {
		c.Image.Provider = provider
	}
	if model != "" {
		switch c.Image.Provider {
		case "kolors", "siliconflow":
			c.Image.Kolors.Model = model
		default:
			c.Image.Model = model
		}
	}
}

// resolveImageCredentials resolves API credentials and endpoints.
// OPENAI_BASE_URL only applies when the config file does not set base_url.
func resolveImageCredentials(cfg *ImageConfig, baseURLInFile bool) {
	cfg.APIKey = expandEnv(cfg.APIKey)
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	cfg.BaseURL = expandEnv(cfg.BaseURL)
	if env := os.Getenv("OPENAI_BASE_URL"); env != "" && !baseURLInFile {
		cfg.BaseURL = env
	}

	cfg.Kolors.APIKey = expandEnv(cfg.Kolors.APIKey)
	if cfg.Kolors.APIKey == "" {
		cfg.Kolors.APIKey = os.Getenv("SILICONFLOW_API_KEY")
	}
	if cfg.Kolors.APIKey == "" {
		cfg.Kolors.APIKey = os.Getenv("KOLORS_API_KEY")
	}
	cfg.Kolors.BaseURL = expandEnv(cfg.Kolors.BaseURL)
}

// expandEnv expands ${VAR} or $VAR in a string
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		varName := s[2 : len(s)-1]
		return os.Getenv(varName)
	}
	if strings.HasPrefix(s, "$") {
		return os.Getenv(s[1:])
	}
	return s
}

// GetConfigDir returns the XDG config directory for imgedit.
// Uses $XDG_CONFIG_HOME if set, otherwise ~/.config
func GetConfigDir() (string, error) {
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		return filepath.Join(xdgHome, appName), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", appName), nil
}

// GetConfigPath returns the path where the config file should be located
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// GetDataDir returns the XDG data directory for imgedit.
// Uses $XDG_DATA_HOME if set, otherwise ~/.local/share
func GetDataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, appName)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", appName+"-data") // fallback
	}
	return filepath.Join(homeDir, ".local", "share", appName)
}

// HistoryPath returns the history database path, honoring history.path.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return filepath.Join(GetDataDir(), "history.db")
}

// Marshal renders the config as YAML with API keys masked.
func Marshal(cfg *Config) ([]byte, error) {
	masked := *cfg
	masked.Image.APIKey = MaskSecret(cfg.Image.APIKey)
	masked.Image.Kolors.APIKey = MaskSecret(cfg.Image.Kolors.APIKey)
	return yaml.Marshal(&masked)
}

// MaskSecret keeps the first and last few characters of a key.
func MaskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return strings.Repeat("*", len(s))
	default:
		return s[:3] + strings.Repeat("*", len(s)-7) + s[len(s)-4:]
	}
}
