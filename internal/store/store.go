package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/shutter/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketSearch  = []byte("search")
	bucketHistory = []byte("history")
)

// maxHistory bounds the number of remembered queries
const maxHistory = 100

// searchEntry wraps a cached page with its expiry
type searchEntry struct {
	ExpiresAt int64              `json:"expiresAt"` // Unix seconds
	Page      *domain.SearchPage `json:"page"`
}

// historyEntry records when a query was last searched
type historyEntry struct {
	Query    string `json:"query"`
	LastUsed int64  `json:"lastUsed"` // Unix nanoseconds
}

// PhotoStore implements domain.Store using BoltDB.
type PhotoStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte

	now func() time.Time
}

// NewPhotoStore opens the cache database in dir. An empty dir selects
// memory-only mode.
func NewPhotoStore(dir string) (*PhotoStore, error) {
	if dir == "" {
		return &PhotoStore{cache: make(map[string][]byte), now: time.Now}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "shutter.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketSearch, bucketHistory} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &PhotoStore{db: db, cache: make(map[string][]byte), now: time.Now}, nil
}

func (s *PhotoStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func cacheKey(bucket []byte, key string) string {
	return string(bucket) + ":" + key
}

func (s *PhotoStore) get(bucket []byte, key string, dest interface{}) bool {
	ck := cacheKey(bucket, key)

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[ck]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[ck] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *PhotoStore) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[cacheKey(bucket, key)] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func (s *PhotoStore) delete(bucket []byte, keys ...string) error {
	s.mu.Lock()
	for _, key := range keys {
		delete(s.cache, cacheKey(bucket, key))
	}
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		for _, key := range keys {
			if err := b.Delete([]byte(key)); err != nil {
				return err
			}
		}
		return nil
	})
}

// each visits every stored value of a bucket. In memory-only mode the memory
// cache is the source of truth; otherwise BoltDB is.
func (s *PhotoStore) each(bucket []byte, fn func(key string, data []byte)) {
	if s.db == nil {
		prefix := string(bucket) + ":"
		s.mu.RLock()
		defer s.mu.RUnlock()
		for k, v := range s.cache {
			if strings.HasPrefix(k, prefix) {
				fn(strings.TrimPrefix(k, prefix), v)
			}
		}
		return
	}

	s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).ForEach(func(k, v []byte) error {
			data := make([]byte, len(v))
			copy(data, v)
			fn(string(k), data)
			return nil
		})
	})
}

// === Search responses ===

func (s *PhotoStore) GetSearchPage(key string) (*domain.SearchPage, bool) {
	var entry searchEntry
	if !s.get(bucketSearch, key, &entry) || entry.Page == nil {
		return nil, false
	}
	if s.now().Unix() >= entry.ExpiresAt {
		return nil, false
	}
	return entry.Page, true
}

func (s *PhotoStore) SaveSearchPage(key string, page *domain.SearchPage, ttl time.Duration) error {
	if page == nil || ttl <= 0 {
		return nil
	}
	return s.set(bucketSearch, key, searchEntry{
		ExpiresAt: s.now().Add(ttl).Unix(),
		Page:      page,
	})
}

// PurgeExpired removes cached pages past their expiry and returns how many
func (s *PhotoStore) PurgeExpired() (int, error) {
	now := s.now().Unix()
	var expired []string
	s.each(bucketSearch, func(key string, data []byte) {
		var entry searchEntry
		if json.Unmarshal(data, &entry) != nil || now >= entry.ExpiresAt {
			expired = append(expired, key)
		}
	})
	if len(expired) == 0 {
		return 0, nil
	}
	if err := s.delete(bucketSearch, expired...); err != nil {
		return 0, err
	}
	return len(expired), nil
}

// === Query history ===

func historyKey(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

func (s *PhotoStore) RecordQuery(query string) error {
	key := historyKey(query)
	if key == "" {
		return nil
	}
	if err := s.set(bucketHistory, key, historyEntry{
		Query:    strings.TrimSpace(query),
		LastUsed: s.now().UnixNano(),
	}); err != nil {
		return err
	}
	return s.trimHistory()
}

func (s *PhotoStore) history() []historyEntry {
	var entries []historyEntry
	s.each(bucketHistory, func(_ string, data []byte) {
		var e historyEntry
		if json.Unmarshal(data, &e) == nil {
			entries = append(entries, e)
		}
	})
	// Most recent first
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastUsed > entries[j].LastUsed
	})
	return entries
}

func (s *PhotoStore) trimHistory() error {
	entries := s.history()
	if len(entries) <= maxHistory {
		return nil
	}
	var drop []string
	for _, e := range entries[maxHistory:] {
		drop = append(drop, historyKey(e.Query))
	}
	return s.delete(bucketHistory, drop...)
}

func (s *PhotoStore) RecentQueries(limit int) ([]string, error) {
	entries := s.history()
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	queries := make([]string, len(entries))
	for i, e := range entries {
		queries[i] = e.Query
	}
	return queries, nil
}

func (s *PhotoStore) ClearHistory() error {
	var keys []string
	s.each(bucketHistory, func(key string, _ []byte) {
		keys = append(keys, key)
	})
	if len(keys) == 0 {
		return nil
	}
	return s.delete(bucketHistory, keys...)
}
