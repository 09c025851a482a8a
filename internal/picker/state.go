package picker

import (
	"time"

	"github.com/mmcdole/shutter/internal/domain"
)

const (
	DefaultPageSize      = 20
	DefaultDebounceDelay = 250 * time.Millisecond
)

// Config controls the query controller
type Config struct {
	PageSize      int           // Results per fetch
	DebounceDelay time.Duration // Quiet period after the last keystroke
	InitialQuery  string        // Searched immediately on start when set
}

// DefaultConfig returns the default controller configuration
func DefaultConfig() Config {
	return Config{
		PageSize:      DefaultPageSize,
		DebounceDelay: DefaultDebounceDelay,
	}
}

func (c Config) withDefaults() Config {
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.DebounceDelay < 0 {
		c.DebounceDelay = DefaultDebounceDelay
	}
	return c
}

// State is the search state rendered by the picker.
// Photos never holds two entries with the same ID.
type State struct {
	Photos      []domain.Photo
	Query       string
	CurrentPage int
	Querying    bool // A page-1 fetch is in flight
	LoadingMore bool // A page > 1 fetch is in flight
	Exhausted   bool // No further pages are expected for Query
	Total       int  // Total matches reported for Query, 0 if unknown
	TotalPages  int  // Total pages reported for Query, 0 if unknown
	Err         error
	Closed      bool

	generation  uint64 // Bumped whenever results in flight become stale
	debounceSeq uint64 // Tag of the most recently armed debounce timer
	debouncing  bool
	lastFailed  *Fetch
}

// NewState returns the empty state a picker starts with
func NewState() State {
	return State{CurrentPage: 1}
}

// Generation identifies the query generation fetches are tagged with
func (s State) Generation() uint64 {
	return s.generation
}

// Debouncing reports whether a debounce timer is armed
func (s State) Debouncing() bool {
	return s.debouncing
}

// CanRetry reports whether the last failed fetch can be retried
func (s State) CanRetry() bool {
	return s.lastFailed != nil && !s.Closed
}

// Event is an input to the controller
type Event interface {
	event()
}

// TextChanged is emitted on every edit of the search text
type TextChanged struct {
	Text string
}

// DebounceFired is delivered when an armed debounce timer elapses
type DebounceFired struct {
	Seq uint64
}

// EndReached is emitted by the list when the cursor nears the end of content
type EndReached struct{}

// PageLoaded carries a successful fetch back to the controller
type PageLoaded struct {
	Fetch Fetch
	Page  *domain.SearchPage
}

// PageFailed carries a failed fetch back to the controller
type PageFailed struct {
	Fetch Fetch
	Err   error
}

// Retry re-issues the last failed fetch
type Retry struct{}

// Teardown discards the state; every later event is ignored
type Teardown struct{}

func (TextChanged) event()   {}
func (DebounceFired) event() {}
func (EndReached) event()    {}
func (PageLoaded) event()    {}
func (PageFailed) event()    {}
func (Retry) event()         {}
func (Teardown) event()      {}

// Effect is a side effect the host must perform for the controller
type Effect interface {
	effect()
}

// ScheduleDebounce asks the host to deliver DebounceFired{Seq} after Delay.
// Arming a new timer supersedes any earlier one.
type ScheduleDebounce struct {
	Seq   uint64
	Delay time.Duration
}

// Fetch asks the host to search for one page. The result must be delivered
// as PageLoaded or PageFailed carrying this Fetch unchanged.
type Fetch struct {
	Query      string
	Page       int
	PageSize   int
	Generation uint64
}

func (ScheduleDebounce) effect() {}
func (Fetch) effect()            {}
