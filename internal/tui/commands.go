package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/shutter/internal/domain"
	"github.com/mmcdole/shutter/internal/picker"
)

const (
	searchTimeout   = 30 * time.Second
	trackingTimeout = 10 * time.Second
)

// Searcher fetches one page of results for a query
type Searcher interface {
	Search(ctx context.Context, query string, page, perPage int) (*domain.SearchPage, error)
}

// Suggester offers completions for the search input
type Suggester interface {
	Suggest(prefix string, limit int) []string
}

// DownloadTracker reports chosen photos to the API
type DownloadTracker interface {
	TrackDownload(ctx context.Context, photo domain.Photo) error
}

// Command factories for async operations

// DebounceCmd delivers DebounceMsg{Seq} after delay
func DebounceCmd(seq uint64, delay time.Duration) tea.Cmd {
	if delay <= 0 {
		return func() tea.Msg { return DebounceMsg{Seq: seq} }
	}
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return DebounceMsg{Seq: seq}
	})
}

// FetchPageCmd runs one search and reports the outcome against f
func FetchPageCmd(src Searcher, f picker.Fetch) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()

		page, err := src.Search(ctx, f.Query, f.Page, f.PageSize)
		if err != nil {
			return PageFailedMsg{Fetch: f, Err: err}
		}
		return PageLoadedMsg{Fetch: f, Page: page}
	}
}

// TrackDownloadCmd reports that photo was chosen
func TrackDownloadCmd(tracker DownloadTracker, photo domain.Photo) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), trackingTimeout)
		defer cancel()

		err := tracker.TrackDownload(ctx, photo)
		return DownloadTrackedMsg{PhotoID: photo.ID, Err: err}
	}
}

// effectCmds turns controller effects into commands
func effectCmds(src Searcher, effects []picker.Effect) []tea.Cmd {
	var cmds []tea.Cmd
	for _, e := range effects {
		switch e := e.(type) {
		case picker.ScheduleDebounce:
			cmds = append(cmds, DebounceCmd(e.Seq, e.Delay))
		case picker.Fetch:
			cmds = append(cmds, FetchPageCmd(src, e))
		}
	}
	return cmds
}
