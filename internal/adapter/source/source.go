package source

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/shutter/internal/adapter"
	"github.com/mmcdole/shutter/internal/adapter/source/unsplash"
	"github.com/mmcdole/shutter/internal/domain"
)

// SourceConfig contains the configuration needed to create a PhotoSource
type SourceConfig struct {
	BaseURL   string
	AccessKey string
	Timeout   time.Duration
}

// NewClient creates a new PhotoSource.
// This factory function abstracts away the specific backend implementation.
func NewClient(cfg *SourceConfig, logger *slog.Logger) (domain.PhotoSource, error) {
	if cfg == nil {
		return nil, fmt.Errorf("source config is nil")
	}

	if cfg.AccessKey == "" {
		return nil, fmt.Errorf("unsplash access key is required")
	}

	return unsplash.NewClient(cfg.BaseURL, cfg.AccessKey, cfg.Timeout, logger), nil
}

// NewClientFromConfig creates a PhotoSource from the application config
func NewClientFromConfig(cfg *adapter.Config, logger *slog.Logger) (domain.PhotoSource, error) {
	return NewClient(&SourceConfig{
		BaseURL:   cfg.Unsplash.BaseURL,
		AccessKey: cfg.Unsplash.AccessKey,
		Timeout:   cfg.Unsplash.Timeout,
	}, logger)
}
