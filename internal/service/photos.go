package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/shutter/internal/domain"
)

const (
	defaultCacheTTL   = 24 * time.Hour
	historyScanLimit  = 50 // Recent queries considered for suggestions
	defaultSuggestion = 5
)

// PhotoService fronts a PhotoSource with a response cache and query history.
// It implements domain.PhotoSource so the picker can use either.
type PhotoService struct {
	source domain.PhotoSource
	store  domain.Store // nil disables caching and history
	opts   domain.SearchOptions
	ttl    time.Duration
	logger *slog.Logger
}

// NewPhotoService creates a new photo service
func NewPhotoService(source domain.PhotoSource, store domain.Store, opts domain.SearchOptions, ttl time.Duration, logger *slog.Logger) *PhotoService {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl < 0 {
		ttl = defaultCacheTTL
	}
	return &PhotoService{
		source: source,
		store:  store,
		opts:   opts,
		ttl:    ttl,
		logger: logger,
	}
}

// Search returns one page for query using the service's configured options
func (s *PhotoService) Search(ctx context.Context, query string, page, perPage int) (*domain.SearchPage, error) {
	return s.SearchPhotos(ctx, query, page, perPage, s.opts)
}

// SearchPhotos serves cached pages when fresh and records first-page queries
// in the history.
func (s *PhotoService) SearchPhotos(ctx context.Context, query string, page, perPage int, opts domain.SearchOptions) (*domain.SearchPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}

	key := SearchCacheKey(query, page, perPage, opts)
	if s.store != nil && s.ttl > 0 {
		if cached, ok := s.store.GetSearchPage(key); ok {
			s.logger.Debug("search cache hit", "query", query, "page", page)
			s.remember(query, page)
			return cached, nil
		}
	}

	result, err := s.source.SearchPhotos(ctx, query, page, perPage, opts)
	if err != nil {
		return nil, err
	}

	if s.store != nil && s.ttl > 0 {
		if err := s.store.SaveSearchPage(key, result, s.ttl); err != nil {
			s.logger.Warn("failed to cache search page", "query", query, "page", page, "error", err)
		}
	}
	s.remember(query, page)

	s.logger.Debug("search complete", "query", query, "page", page, "results", len(result.Photos))
	return result, nil
}

func (s *PhotoService) remember(query string, page int) {
	if s.store == nil || page != 1 {
		return
	}
	if err := s.store.RecordQuery(query); err != nil {
		s.logger.Warn("failed to record query", "query", query, "error", err)
	}
}

// TrackDownload reports that a photo was chosen
func (s *PhotoService) TrackDownload(ctx context.Context, photo domain.Photo) error {
	if err := s.source.TrackDownload(ctx, photo); err != nil {
		s.logger.Warn("download tracking failed", "photoID", photo.ID, "error", err)
		return err
	}
	return nil
}

// RecentQueries returns the most recently searched queries, newest first
func (s *PhotoService) RecentQueries(limit int) []string {
	if s.store == nil {
		return nil
	}
	queries, err := s.store.RecentQueries(limit)
	if err != nil {
		s.logger.Warn("failed to read query history", "error", err)
		return nil
	}
	return queries
}

// Suggest ranks recent queries against prefix. An empty prefix returns the
// most recent queries.
func (s *PhotoService) Suggest(prefix string, limit int) []string {
	if limit <= 0 {
		limit = defaultSuggestion
	}
	recent := s.RecentQueries(historyScanLimit)
	if len(recent) == 0 {
		return nil
	}
	prefix = strings.TrimSpace(prefix)

	if prefix == "" {
		if len(recent) > limit {
			recent = recent[:limit]
		}
		return recent
	}

	matches := fuzzy.RankFindFold(prefix, recent)

	// Sort by distance (lower is better), ties keep recency order
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].OriginalIndex < matches[j].OriginalIndex
	})

	suggestions := make([]string, 0, limit)
	for _, m := range matches {
		if strings.EqualFold(m.Target, prefix) {
			continue
		}
		suggestions = append(suggestions, m.Target)
		if len(suggestions) == limit {
			break
		}
	}
	return suggestions
}

// ClearHistory forgets every recorded query
func (s *PhotoService) ClearHistory() error {
	if s.store == nil {
		return nil
	}
	return s.store.ClearHistory()
}

// PurgeExpired drops expired cache entries
func (s *PhotoService) PurgeExpired() {
	if s.store == nil {
		return
	}
	n, err := s.store.PurgeExpired()
	if err != nil {
		s.logger.Warn("failed to purge search cache", "error", err)
		return
	}
	if n > 0 {
		s.logger.Debug("purged expired search pages", "count", n)
	}
}
