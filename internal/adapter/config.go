package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mmcdole/shutter/internal/domain"
	"github.com/mmcdole/shutter/internal/picker"
)

// OutputFormat controls how the chosen photo is printed
type OutputFormat string

const (
	OutputURL      OutputFormat = "url"
	OutputJSON     OutputFormat = "json"
	OutputMarkdown OutputFormat = "markdown"
)

const (
	envPrefix      = "SHUTTER"
	accessKeyEnv   = "UNSPLASH_ACCESS_KEY"
	configFileName = "config.yaml"
)

// Config holds all application configuration
type Config struct {
	Unsplash UnsplashConfig `mapstructure:"unsplash"`
	Picker   PickerConfig   `mapstructure:"picker"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Output   OutputConfig   `mapstructure:"output"`
	Viewer   ViewerConfig   `mapstructure:"viewer"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// UnsplashConfig holds API access configuration
type UnsplashConfig struct {
	AccessKey string        `mapstructure:"access_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// PickerConfig holds widget behaviour
type PickerConfig struct {
	PageSize      int    `mapstructure:"page_size"`
	DebounceMS    int    `mapstructure:"debounce_ms"`
	InitialQuery  string `mapstructure:"initial_query"`
	Title         string `mapstructure:"title"`
	HeaderLeft    string `mapstructure:"header_left"`
	HeaderRight   string `mapstructure:"header_right"`
	Placeholder   string `mapstructure:"placeholder"`
	PhotoMode     string `mapstructure:"photo_mode"`
	EndThreshold  int    `mapstructure:"end_threshold"` // Rows from the end that load the next page
	Orientation   string `mapstructure:"orientation"`   // landscape, portrait, squarish
	ContentFilter string `mapstructure:"content_filter"` // low, high
	Modal         bool   `mapstructure:"modal"`
}

// CacheConfig holds the search response cache configuration
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
	Path    string        `mapstructure:"path"`
}

// OutputConfig holds how the selection is reported
type OutputConfig struct {
	Format OutputFormat `mapstructure:"format"`
}

// ViewerConfig holds the external image viewer used to preview a selection
type ViewerConfig struct {
	Open    bool     `mapstructure:"open"`    // Open the selection after picking
	Command string   `mapstructure:"command"` // Empty means auto-detect
	Args    []string `mapstructure:"args"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Unsplash: UnsplashConfig{
			BaseURL: "https://api.unsplash.com",
			Timeout: 30 * time.Second,
		},
		Picker: PickerConfig{
			PageSize:     picker.DefaultPageSize,
			DebounceMS:   int(picker.DefaultDebounceDelay / time.Millisecond),
			Title:        "Photos by Unsplash",
			Placeholder:  "Search free high-resolution photos",
			PhotoMode:    string(domain.PhotoModeRegular),
			EndThreshold: 3,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
			Path:    defaultCachePath(),
		},
		Output: OutputConfig{
			Format: OutputURL,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "shutter", "shutter.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "shutter", "shutter.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "shutter")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "shutter")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "shutter", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "shutter", "cache")
	}
}

// newViper returns a viper instance seeded with defaults and env bindings
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	d := DefaultConfig()
	v.SetDefault("unsplash.access_key", d.Unsplash.AccessKey)
	v.SetDefault("unsplash.base_url", d.Unsplash.BaseURL)
	v.SetDefault("unsplash.timeout", d.Unsplash.Timeout)
	v.SetDefault("picker.page_size", d.Picker.PageSize)
	v.SetDefault("picker.debounce_ms", d.Picker.DebounceMS)
	v.SetDefault("picker.initial_query", d.Picker.InitialQuery)
	v.SetDefault("picker.title", d.Picker.Title)
	v.SetDefault("picker.header_left", d.Picker.HeaderLeft)
	v.SetDefault("picker.header_right", d.Picker.HeaderRight)
	v.SetDefault("picker.placeholder", d.Picker.Placeholder)
	v.SetDefault("picker.photo_mode", d.Picker.PhotoMode)
	v.SetDefault("picker.end_threshold", d.Picker.EndThreshold)
	v.SetDefault("picker.orientation", d.Picker.Orientation)
	v.SetDefault("picker.content_filter", d.Picker.ContentFilter)
	v.SetDefault("picker.modal", d.Picker.Modal)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.path", d.Cache.Path)
	v.SetDefault("output.format", string(d.Output.Format))
	v.SetDefault("viewer.open", d.Viewer.Open)
	v.SetDefault("viewer.command", d.Viewer.Command)
	v.SetDefault("viewer.args", d.Viewer.Args)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.level", d.Logging.Level)

	// Environment variable overrides, e.g. SHUTTER_PICKER_PAGE_SIZE
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("unsplash.access_key", envPrefix+"_UNSPLASH_ACCESS_KEY", accessKeyEnv)

	return v
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	v := newViper()
	v.AddConfigPath(defaultConfigPath())
	v.AddConfigPath(".")
	return load(v)
}

// LoadConfigFile loads configuration from an explicit file
func LoadConfigFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the picker cannot honour
func (c *Config) Validate() error {
	if !domain.IsPhotoMode(c.Picker.PhotoMode) {
		return fmt.Errorf("picker.photo_mode: unknown mode %q", c.Picker.PhotoMode)
	}
	switch c.Output.Format {
	case OutputURL, OutputJSON, OutputMarkdown:
	default:
		return fmt.Errorf("output.format: unknown format %q", c.Output.Format)
	}
	switch c.Picker.Orientation {
	case "", "landscape", "portrait", "squarish":
	default:
		return fmt.Errorf("picker.orientation: unknown orientation %q", c.Picker.Orientation)
	}
	switch c.Picker.ContentFilter {
	case "", "low", "high":
	default:
		return fmt.Errorf("picker.content_filter: unknown filter %q", c.Picker.ContentFilter)
	}
	return nil
}

// IsConfigured returns true if an access key is set
func (c *Config) IsConfigured() bool {
	return strings.TrimSpace(c.Unsplash.AccessKey) != ""
}

// ControllerConfig returns the query controller settings
func (c *Config) ControllerConfig() picker.Config {
	return picker.Config{
		PageSize:      c.Picker.PageSize,
		DebounceDelay: time.Duration(c.Picker.DebounceMS) * time.Millisecond,
		InitialQuery:  c.Picker.InitialQuery,
	}
}

// SearchOptions returns the API filters applied to every search
func (c *Config) SearchOptions() domain.SearchOptions {
	return domain.SearchOptions{
		Orientation:   c.Picker.Orientation,
		ContentFilter: c.Picker.ContentFilter,
	}
}

// PhotoMode returns the configured photo size
func (c *Config) PhotoMode() domain.PhotoMode {
	return domain.ParsePhotoMode(c.Picker.PhotoMode)
}

// ConfigFilePath returns where SaveConfig writes
func ConfigFilePath() string {
	return filepath.Join(defaultConfigPath(), configFileName)
}

// SaveConfig saves the configuration to the default config file
func SaveConfig(cfg *Config) error {
	return SaveConfigFile(cfg, ConfigFilePath())
}

// SaveConfigFile saves the configuration to path
func SaveConfigFile(cfg *Config, path string) error {
	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")

	// Set fields individually to ensure correct key names (snake_case)
	v.Set("unsplash.access_key", cfg.Unsplash.AccessKey)
	v.Set("unsplash.base_url", cfg.Unsplash.BaseURL)
	v.Set("unsplash.timeout", cfg.Unsplash.Timeout.String())

	v.Set("picker.page_size", cfg.Picker.PageSize)
	v.Set("picker.debounce_ms", cfg.Picker.DebounceMS)
	v.Set("picker.initial_query", cfg.Picker.InitialQuery)
	v.Set("picker.title", cfg.Picker.Title)
	v.Set("picker.header_left", cfg.Picker.HeaderLeft)
	v.Set("picker.header_right", cfg.Picker.HeaderRight)
	v.Set("picker.placeholder", cfg.Picker.Placeholder)
	v.Set("picker.photo_mode", cfg.Picker.PhotoMode)
	v.Set("picker.end_threshold", cfg.Picker.EndThreshold)
	v.Set("picker.orientation", cfg.Picker.Orientation)
	v.Set("picker.content_filter", cfg.Picker.ContentFilter)
	v.Set("picker.modal", cfg.Picker.Modal)

	v.Set("cache.enabled", cfg.Cache.Enabled)
	v.Set("cache.ttl", cfg.Cache.TTL.String())
	v.Set("cache.path", cfg.Cache.Path)

	v.Set("output.format", string(cfg.Output.Format))

	v.Set("viewer.open", cfg.Viewer.Open)
	v.Set("viewer.command", cfg.Viewer.Command)
	v.Set("viewer.args", cfg.Viewer.Args)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// The file may hold an access key
	return os.Chmod(path, 0600)
}

// ClearCache removes all cached data
func ClearCache(cfg *Config) error {
	if cfg.Cache.Path == "" {
		return nil
	}
	if err := os.RemoveAll(cfg.Cache.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// CachePath returns the cache directory, or "" when caching is disabled
func (c *Config) CachePath() string {
	if !c.Cache.Enabled {
		return ""
	}
	return expandHome(c.Cache.Path)
}

// expandHome expands a leading ~ in path
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
