package domain

import "time"

// Store handles the local cache (BoltDB + memory).
type Store interface {
	// === Search responses ===
	GetSearchPage(key string) (*SearchPage, bool)
	SaveSearchPage(key string, page *SearchPage, ttl time.Duration) error
	PurgeExpired() (int, error)

	// === Query history ===
	RecordQuery(query string) error
	RecentQueries(limit int) ([]string, error)
	ClearHistory() error

	Close() error
}
