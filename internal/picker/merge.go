package picker

import "github.com/mmcdole/shutter/internal/domain"

// idSet is an insertion-ordered set of photo IDs
type idSet struct {
	rank  map[string]int
	order []domain.Photo
}

func newIDSet(capacity int) *idSet {
	return &idSet{
		rank:  make(map[string]int, capacity),
		order: make([]domain.Photo, 0, capacity),
	}
}

// add keeps the first photo seen for an ID and reports whether it was new
func (s *idSet) add(p domain.Photo) bool {
	if _, seen := s.rank[p.ID]; seen {
		return false
	}
	s.rank[p.ID] = len(s.order)
	s.order = append(s.order, p)
	return true
}

// Merge appends incoming to existing and drops every photo whose ID was
// already seen, keeping the order of first occurrence. Neither input is
// modified.
func Merge(existing, incoming []domain.Photo) []domain.Photo {
	set := newIDSet(len(existing) + len(incoming))
	for _, p := range existing {
		set.add(p)
	}
	for _, p := range incoming {
		set.add(p)
	}
	return set.order
}
