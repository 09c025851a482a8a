package picker

import (
	"log/slog"
	"strings"

	"github.com/mmcdole/shutter/internal/domain"
)

// Controller owns the search state transitions. It performs no I/O: every
// network call or timer it needs is returned as an Effect, and every result
// comes back as an Event.
type Controller struct {
	cfg    Config
	logger *slog.Logger
}

// NewController creates a new query controller
func NewController(cfg Config, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		cfg:    cfg.withDefaults(),
		logger: logger,
	}
}

// Config returns the effective configuration
func (c *Controller) Config() Config {
	return c.cfg
}

// Start runs the configured initial query, if any
func (c *Controller) Start(s State) (State, []Effect) {
	query := strings.TrimSpace(c.cfg.InitialQuery)
	if query == "" || s.Closed {
		return s, nil
	}
	s.Query = c.cfg.InitialQuery
	return c.fetchFirstPage(s)
}

// Apply computes the state that follows ev
func (c *Controller) Apply(s State, ev Event) (State, []Effect) {
	if s.Closed {
		return s, nil
	}

	switch ev := ev.(type) {
	case TextChanged:
		return c.textChanged(s, ev)
	case DebounceFired:
		return c.debounceFired(s, ev)
	case EndReached:
		return c.endReached(s)
	case PageLoaded:
		return c.pageLoaded(s, ev)
	case PageFailed:
		return c.pageFailed(s, ev)
	case Retry:
		return c.retry(s)
	case Teardown:
		s.Closed = true
		s.generation++
		s.debouncing = false
		s.Querying = false
		s.LoadingMore = false
		s.lastFailed = nil
		return s, nil
	}

	return s, nil
}

func (c *Controller) textChanged(s State, ev TextChanged) (State, []Effect) {
	s.Query = ev.Text
	s.CurrentPage = 1

	// Anything still in flight belongs to the previous text
	s.generation++
	s.Querying = false
	s.LoadingMore = false

	s.debounceSeq++
	s.debouncing = true
	return s, []Effect{ScheduleDebounce{Seq: s.debounceSeq, Delay: c.cfg.DebounceDelay}}
}

func (c *Controller) debounceFired(s State, ev DebounceFired) (State, []Effect) {
	if !s.debouncing || ev.Seq != s.debounceSeq {
		return s, nil
	}
	s.debouncing = false

	if strings.TrimSpace(s.Query) == "" {
		s.Photos = nil
		s.Querying = false
		s.Exhausted = false
		s.Total = 0
		s.TotalPages = 0
		s.Err = nil
		s.lastFailed = nil
		return s, nil
	}
	return c.fetchFirstPage(s)
}

func (c *Controller) fetchFirstPage(s State) (State, []Effect) {
	s.generation++
	s.CurrentPage = 1
	s.Querying = true
	s.LoadingMore = false
	s.Exhausted = false
	s.Err = nil
	s.lastFailed = nil

	f := Fetch{
		Query:      s.Query,
		Page:       1,
		PageSize:   c.cfg.PageSize,
		Generation: s.generation,
	}
	c.logger.Debug("fetching first page", "query", f.Query, "generation", f.Generation)
	return s, []Effect{f}
}

func (c *Controller) endReached(s State) (State, []Effect) {
	if s.Querying || s.LoadingMore || s.Exhausted || s.debouncing {
		return s, nil
	}
	if strings.TrimSpace(s.Query) == "" || len(s.Photos) == 0 || s.Err != nil {
		return s, nil
	}

	s.LoadingMore = true
	f := Fetch{
		Query:      s.Query,
		Page:       s.CurrentPage + 1,
		PageSize:   c.cfg.PageSize,
		Generation: s.generation,
	}
	c.logger.Debug("fetching next page", "query", f.Query, "page", f.Page)
	return s, []Effect{f}
}

func (c *Controller) stale(s State, f Fetch) bool {
	if f.Generation != s.generation {
		c.logger.Debug("discarding stale response",
			"query", f.Query,
			"page", f.Page,
			"generation", f.Generation,
			"current", s.generation,
		)
		return true
	}
	return false
}

func (c *Controller) pageLoaded(s State, ev PageLoaded) (State, []Effect) {
	if c.stale(s, ev.Fetch) {
		return s, nil
	}

	var incoming []domain.Photo
	if ev.Page != nil {
		incoming = ev.Page.Photos
		s.Total = ev.Page.Total
		s.TotalPages = ev.Page.TotalPages
	}

	if ev.Fetch.Page == 1 {
		// A fresh query replaces whatever the previous one accumulated
		s.Photos = Merge(nil, incoming)
		s.CurrentPage = 1
		s.Querying = false
		s.Exhausted = len(incoming) == 0 || (s.TotalPages > 0 && s.TotalPages <= 1)
		return s, nil
	}

	if ev.Fetch.Page != s.CurrentPage+1 {
		return s, nil
	}

	before := len(s.Photos)
	s.Photos = Merge(s.Photos, incoming)
	s.CurrentPage = ev.Fetch.Page
	s.LoadingMore = false
	s.Querying = false
	s.Exhausted = len(s.Photos) == before ||
		(s.TotalPages > 0 && ev.Fetch.Page >= s.TotalPages)

	c.logger.Debug("merged page",
		"query", s.Query,
		"page", ev.Fetch.Page,
		"added", len(s.Photos)-before,
		"exhausted", s.Exhausted,
	)
	return s, nil
}

func (c *Controller) pageFailed(s State, ev PageFailed) (State, []Effect) {
	if c.stale(s, ev.Fetch) {
		return s, nil
	}

	c.logger.Warn("search failed", "query", ev.Fetch.Query, "page", ev.Fetch.Page, "error", ev.Err)

	failed := ev.Fetch
	s.Querying = false
	s.LoadingMore = false
	s.Err = ev.Err
	s.lastFailed = &failed
	return s, nil
}

func (c *Controller) retry(s State) (State, []Effect) {
	if s.lastFailed == nil || s.debouncing {
		return s, nil
	}
	failed := *s.lastFailed

	if failed.Page == 1 {
		return c.fetchFirstPage(s)
	}

	s.Err = nil
	s.lastFailed = nil
	s.LoadingMore = true
	failed.Generation = s.generation
	return s, []Effect{failed}
}
