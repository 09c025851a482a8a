package adapter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/shutter/internal/domain"
)

func TestLoadConfigFileDefaults(t *testing.T) {
	t.Setenv("UNSPLASH_ACCESS_KEY", "")
	t.Setenv("SHUTTER_UNSPLASH_ACCESS_KEY", "")

	cfg, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Picker.PageSize)
	assert.Equal(t, 250, cfg.Picker.DebounceMS)
	assert.Equal(t, "Photos by Unsplash", cfg.Picker.Title)
	assert.Equal(t, 3, cfg.Picker.EndThreshold)
	assert.Equal(t, 30*time.Second, cfg.Unsplash.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, OutputURL, cfg.Output.Format)
	assert.False(t, cfg.IsConfigured())

	cc := cfg.ControllerConfig()
	assert.Equal(t, 20, cc.PageSize)
	assert.Equal(t, 250*time.Millisecond, cc.DebounceDelay)
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("UNSPLASH_ACCESS_KEY", "")
	t.Setenv("SHUTTER_UNSPLASH_ACCESS_KEY", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
unsplash:
  access_key: abc123
  timeout: 5s
picker:
  page_size: 30
  debounce_ms: 400
  initial_query: mountains
  photo_mode: thumb
  orientation: landscape
cache:
  enabled: false
  ttl: 1h
output:
  format: markdown
viewer:
  open: true
  command: feh
  args: ["--scale-down", "--borderless"]
`), 0600))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsConfigured())
	assert.Equal(t, "abc123", cfg.Unsplash.AccessKey)
	assert.Equal(t, 5*time.Second, cfg.Unsplash.Timeout)
	assert.Equal(t, domain.PhotoModeThumb, cfg.PhotoMode())
	assert.Equal(t, domain.SearchOptions{Orientation: "landscape"}, cfg.SearchOptions())
	assert.Equal(t, OutputMarkdown, cfg.Output.Format)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Empty(t, cfg.CachePath(), "disabled cache has no path")
	assert.Equal(t, ViewerConfig{Open: true, Command: "feh", Args: []string{"--scale-down", "--borderless"}}, cfg.Viewer)

	cc := cfg.ControllerConfig()
	assert.Equal(t, 30, cc.PageSize)
	assert.Equal(t, 400*time.Millisecond, cc.DebounceDelay)
	assert.Equal(t, "mountains", cc.InitialQuery)

	// Untouched keys keep their defaults
	assert.Equal(t, "https://api.unsplash.com", cfg.Unsplash.BaseURL)
	assert.Equal(t, "Photos by Unsplash", cfg.Picker.Title)
}

func TestAccessKeyFromEnvironment(t *testing.T) {
	t.Setenv("SHUTTER_UNSPLASH_ACCESS_KEY", "")
	t.Setenv("UNSPLASH_ACCESS_KEY", "from-env")

	cfg, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Unsplash.AccessKey)
}

func TestPrefixedEnvironmentOverride(t *testing.T) {
	t.Setenv("SHUTTER_PICKER_PAGE_SIZE", "12")

	cfg, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Picker.PageSize)
}

func TestLoadConfigFileRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"photo mode":     "picker:\n  photo_mode: huge\n",
		"output format":  "output:\n  format: xml\n",
		"orientation":    "picker:\n  orientation: diagonal\n",
		"content filter": "picker:\n  content_filter: medium\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0600))
			_, err := LoadConfigFile(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveConfigFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Unsplash.AccessKey = "saved-key"
	cfg.Picker.InitialQuery = "ocean"
	cfg.Output.Format = OutputJSON
	require.NoError(t, SaveConfigFile(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	t.Setenv("UNSPLASH_ACCESS_KEY", "")
	t.Setenv("SHUTTER_UNSPLASH_ACCESS_KEY", "")
	loaded, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "saved-key", loaded.Unsplash.AccessKey)
	assert.Equal(t, "ocean", loaded.Picker.InitialQuery)
	assert.Equal(t, OutputJSON, loaded.Output.Format)
	assert.Equal(t, cfg.Cache.TTL, loaded.Cache.TTL)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLogLevel("debug").String())
	assert.Equal(t, "WARN", parseLogLevel("warning").String())
	assert.Equal(t, "INFO", parseLogLevel("nonsense").String())
}

func TestSetupLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "shutter.log")
	logger, err := SetupLogger(&LoggingConfig{File: path, Level: "debug"})
	require.NoError(t, err)

	logger.Debug("hello", "query", "cats")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"query":"cats"`)
}
