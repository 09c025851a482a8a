package tui

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/shutter/internal/domain"
	"github.com/mmcdole/shutter/internal/tui/components"
	"github.com/mmcdole/shutter/internal/tui/styles"
)

// Modal frame bounds
const (
	modalWidthPercent  = 70
	modalHeightPercent = 80
	minModalWidth      = 40
	maxModalWidth      = 110
)

// Model is the host program embedding the picker. It quits once a photo is
// chosen and its download has been reported.
type Model struct {
	Picker *Picker

	tracker DownloadTracker // nil skips download tracking
	modal   bool
	logger  *slog.Logger

	// Dimensions
	Width  int
	Height int
	Ready  bool

	selected *PhotoSelectedMsg
}

// NewModel creates the host model
func NewModel(p *Picker, tracker DownloadTracker, modal bool, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}
	return Model{
		Picker:  p,
		tracker: tracker,
		modal:   modal,
		logger:  logger,
	}
}

// Selection returns the chosen photo and its URL, if any
func (m Model) Selection() (domain.Photo, string, bool) {
	if m.selected == nil {
		return domain.Photo{}, "", false
	}
	return m.selected.Photo, m.selected.URL, true
}

func (m Model) Init() tea.Cmd {
	return m.Picker.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		if m.selected != nil {
			return m, nil // Waiting on download tracking
		}
		if msg.Type == tea.KeyCtrlC ||
			(key.Matches(msg, components.PickerKeys.Quit) && !m.Picker.ListFocused()) {
			m.Picker.Close()
			return m, tea.Quit
		}

	case PhotoSelectedMsg:
		m.selected = &msg
		m.Picker.Close()
		if m.tracker == nil {
			return m, tea.Quit
		}
		return m, TrackDownloadCmd(m.tracker, msg.Photo)

	case DownloadTrackedMsg:
		if msg.Err != nil {
			m.logger.Warn("failed to track download", "photoID", msg.PhotoID, "error", msg.Err)
		}
		return m, tea.Quit
	}

	return m, m.Picker.Update(msg)
}

// updateLayout sizes the picker for the window, leaving room for the modal frame
func (m *Model) updateLayout() {
	if !m.modal {
		m.Picker.SetSize(m.Width, m.Height)
		return
	}

	w := m.Width * modalWidthPercent / 100
	if w < minModalWidth {
		w = minModalWidth
	}
	if w > maxModalWidth {
		w = maxModalWidth
	}
	if w > m.Width {
		w = m.Width
	}
	h := m.Height * modalHeightPercent / 100

	frameW, frameH := styles.ModalStyle.GetFrameSize()
	m.Picker.SetSize(w-frameW, h-frameH)
}

func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}
	if m.selected != nil {
		return styles.DimStyle.Render("Preparing " + m.selected.Photo.Title() + "...")
	}

	content := m.Picker.View()
	if !m.modal {
		return content
	}

	frame := styles.ModalStyle.Render(content)

	// Center horizontally and vertically
	return lipgloss.Place(
		m.Width,
		m.Height,
		lipgloss.Center,
		lipgloss.Center,
		frame,
	)
}
