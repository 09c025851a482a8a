package tui

import (
	"github.com/mmcdole/shutter/internal/domain"
	"github.com/mmcdole/shutter/internal/picker"
)

// Message types for the TUI

// DebounceMsg is delivered when a debounce timer armed with Seq elapses
type DebounceMsg struct {
	Seq uint64
}

// PageLoadedMsg carries one page of search results
type PageLoadedMsg struct {
	Fetch picker.Fetch
	Page  *domain.SearchPage
}

// PageFailedMsg carries a failed search
type PageFailedMsg struct {
	Fetch picker.Fetch
	Err   error
}

// PhotoSelectedMsg signals that the user chose a photo
type PhotoSelectedMsg struct {
	Photo domain.Photo
	URL   string // Rendition chosen by the configured photo mode
}

// DownloadTrackedMsg signals that a download was reported to the API
type DownloadTrackedMsg struct {
	PhotoID string
	Err     error
}
