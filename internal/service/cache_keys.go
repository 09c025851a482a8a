package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mmcdole/shutter/internal/domain"
)

// PrefixSearch is the prefix for cached search pages (search:{hash})
const PrefixSearch = "search:"

// SearchCacheKey identifies one page of results. Queries differing only in
// case or surrounding whitespace share a key.
func SearchCacheKey(query string, page, perPage int, opts domain.SearchOptions) string {
	raw := fmt.Sprintf("%s|%d|%d|%s|%s",
		strings.ToLower(strings.TrimSpace(query)),
		page,
		perPage,
		opts.Orientation,
		opts.ContentFilter,
	)
	sum := sha256.Sum256([]byte(raw))
	return PrefixSearch + hex.EncodeToString(sum[:12])
}
