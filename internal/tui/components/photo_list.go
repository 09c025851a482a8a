package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/shutter/internal/domain"
	"github.com/mmcdole/shutter/internal/tui/styles"
)

// Scroll indicators ("↑ more" and "↓ more") each take 1 line
const ScrollIndicatorLines = 2

// photoIndex implements sahilm/fuzzy.Source over the loaded photos
type photoIndex []domain.Photo

func (p photoIndex) String(i int) string { return filterText(p[i]) }
func (p photoIndex) Len() int            { return len(p) }

// filterText is what the in-list filter matches against and highlights
func filterText(p domain.Photo) string {
	if p.Author.Name == "" {
		return p.Title()
	}
	return p.Title() + " · " + p.Author.Name
}

// PhotoList is a scrollable list of photos with an optional fuzzy filter
// over the photos already loaded.
type PhotoList struct {
	photos []domain.Photo

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width   int
	height  int
	focused bool

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	matches      fuzzy.Matches // nil when no filter query
}

// NewPhotoList creates an empty photo list
func NewPhotoList() *PhotoList {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.PromptStyle
	ti.TextStyle = styles.FilterStyle

	return &PhotoList{filterInput: ti}
}

// SetPhotos replaces the list contents. With reset the cursor returns to the
// top; otherwise it stays on the same photo.
func (l *PhotoList) SetPhotos(photos []domain.Photo, reset bool) {
	var selectedID string
	if p := l.Selected(); p != nil && !reset {
		selectedID = p.ID
	}

	l.photos = photos
	if l.filterActive {
		l.applyFilter()
	}

	if reset {
		l.cursor = 0
		l.offset = 0
		return
	}

	if selectedID != "" {
		for i := 0; i < l.ItemCount(); i++ {
			if l.photos[l.mapIndex(i)].ID == selectedID {
				l.cursor = i
				break
			}
		}
	}
	l.clampCursor()
	l.ensureVisible()
}

// Photos returns the unfiltered contents
func (l *PhotoList) Photos() []domain.Photo {
	return l.photos
}

func (l *PhotoList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.filterInput.Width = width - 12
	l.recalcMaxVisible()
	l.ensureVisible()
}

func (l *PhotoList) SetFocused(focused bool) {
	l.focused = focused
}

func (l *PhotoList) IsFocused() bool {
	return l.focused
}

// Selected returns the photo under the cursor
func (l *PhotoList) Selected() *domain.Photo {
	count := l.ItemCount()
	if count == 0 || l.cursor >= count {
		return nil
	}
	p := l.photos[l.mapIndex(l.cursor)]
	return &p
}

func (l *PhotoList) SelectedIndex() int {
	return l.cursor
}

// ItemCount returns the number of visible (filtered) rows
func (l *PhotoList) ItemCount() int {
	if l.matches != nil {
		return len(l.matches)
	}
	return len(l.photos)
}

// NearEnd reports whether the cursor is within threshold rows of the last
// loaded photo. It is false while a filter narrows the list.
func (l *PhotoList) NearEnd(threshold int) bool {
	if l.matches != nil || len(l.photos) == 0 {
		return false
	}
	if threshold < 0 {
		threshold = 0
	}
	return l.cursor >= len(l.photos)-1-threshold
}

// Update handles navigation and filter keys. It reports whether the message
// was consumed.
func (l *PhotoList) Update(msg tea.Msg) (tea.Cmd, bool) {
	if !l.focused {
		return nil, false
	}

	// Handle filter input when active AND focused (typing mode)
	if l.filterActive && l.filterInput.Focused() {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(msg, PhotoListKeys.Escape):
				l.clearFilter()
				return nil, true
			case key.Matches(msg, PhotoListKeys.Enter):
				// Accept filter, blur input to allow navigation
				l.filterInput.Blur()
				return nil, true
			case msg.Type == tea.KeyBackspace && l.filterInput.Value() == "":
				l.clearFilter()
				return nil, true
			}
		}

		// Route to textinput
		var cmd tea.Cmd
		l.filterInput, cmd = l.filterInput.Update(msg)
		l.applyFilter()
		return cmd, true
	}

	msg2, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, false
	}

	// Handle keys when filter is active but blurred (navigation mode with filter results)
	if l.filterActive && key.Matches(msg2, PhotoListKeys.Escape) {
		l.clearFilter()
		return nil, true
	}
	if key.Matches(msg2, PhotoListKeys.Filter) {
		l.filterActive = true
		l.filterInput.Focus()
		l.recalcMaxVisible()
		return textinput.Blink, true
	}

	count := l.ItemCount()
	if count == 0 {
		return nil, false
	}

	switch {
	case key.Matches(msg2, PhotoListKeys.Down):
		if l.cursor < count-1 {
			l.cursor++
			l.ensureVisible()
		}
	case key.Matches(msg2, PhotoListKeys.Up):
		if l.cursor == 0 {
			return nil, false // Let the parent move focus upward
		}
		l.cursor--
		l.ensureVisible()
	case key.Matches(msg2, PhotoListKeys.Home):
		l.cursor = 0
		l.offset = 0
	case key.Matches(msg2, PhotoListKeys.End):
		l.cursor = count - 1
		l.ensureVisible()
	case key.Matches(msg2, PhotoListKeys.HalfDown):
		l.cursor += l.maxVisible / 2
		l.clampCursor()
		l.ensureVisible()
	case key.Matches(msg2, PhotoListKeys.HalfUp):
		l.cursor -= l.maxVisible / 2
		l.clampCursor()
		l.ensureVisible()
	case key.Matches(msg2, PhotoListKeys.PageDown):
		l.cursor += l.maxVisible
		l.clampCursor()
		l.ensureVisible()
	case key.Matches(msg2, PhotoListKeys.PageUp):
		l.cursor -= l.maxVisible
		l.clampCursor()
		l.ensureVisible()
	default:
		return nil, false
	}
	return nil, true
}

// IsFiltering returns true while a filter is applied or being typed
func (l *PhotoList) IsFiltering() bool {
	return l.filterActive
}

// IsFilterTyping returns true while the filter input has focus
func (l *PhotoList) IsFilterTyping() bool {
	return l.filterActive && l.filterInput.Focused()
}

// ClearFilter removes any filter
func (l *PhotoList) ClearFilter() {
	l.clearFilter()
}

func (l *PhotoList) recalcMaxVisible() {
	l.maxVisible = l.height - ScrollIndicatorLines
	// Reserve space for filter bar when active
	if l.filterActive {
		l.maxVisible--
	}
	if l.maxVisible < 1 {
		l.maxVisible = 1
	}
}

func (l *PhotoList) ensureVisible() {
	// Don't adjust offset if size hasn't been set yet
	if l.maxVisible <= 0 {
		return
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.maxVisible {
		l.offset = l.cursor - l.maxVisible + 1
	}
}

func (l *PhotoList) clampCursor() {
	if l.cursor >= l.ItemCount() {
		l.cursor = l.ItemCount() - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

func (l *PhotoList) clearFilter() {
	var selectedID string
	if p := l.Selected(); p != nil {
		selectedID = p.ID
	}

	l.filterActive = false
	l.filterQuery = ""
	l.matches = nil
	l.filterInput.SetValue("")
	l.filterInput.Blur()
	l.recalcMaxVisible()

	// Keep the photo that was selected in the filtered view
	l.cursor = 0
	for i, p := range l.photos {
		if p.ID == selectedID {
			l.cursor = i
			break
		}
	}
	l.offset = 0
	l.ensureVisible()
}

func (l *PhotoList) applyFilter() {
	query := l.filterInput.Value()
	changed := query != l.filterQuery
	l.filterQuery = query

	if query == "" {
		l.matches = nil
		if changed {
			l.cursor = 0
			l.offset = 0
		}
		return
	}

	l.matches = fuzzy.FindFrom(query, photoIndex(l.photos))
	if l.matches == nil {
		l.matches = fuzzy.Matches{}
	}

	if changed {
		// Reset cursor to first match
		l.cursor = 0
		l.offset = 0
	}
	l.clampCursor()
}

func (l *PhotoList) mapIndex(i int) int {
	if l.matches != nil {
		return l.matches[i].Index
	}
	return i
}

func (l *PhotoList) matchedIndexes(i int) []int {
	if l.matches != nil {
		return l.matches[i].MatchedIndexes
	}
	return nil
}

// View renders the visible rows and scroll indicators
func (l *PhotoList) View() string {
	width := l.width
	if width < 20 {
		width = 20
	}

	count := l.ItemCount()
	var lines []string

	end := l.offset + l.maxVisible
	if end > count {
		end = count
	}

	for i := l.offset; i < end; i++ {
		selected := l.focused && i == l.cursor
		lines = append(lines, l.renderPhoto(l.photos[l.mapIndex(i)], l.matchedIndexes(i), selected, width))
	}

	if count == 0 && l.filterActive && l.filterQuery != "" {
		lines = append(lines, styles.DimStyle.Render(" No matches"))
	}

	// ALWAYS reserve space for header (even if empty) to prevent layout shifts
	header := " "
	if l.offset > 0 {
		header = styles.DimStyle.Render(" ↑ more")
	}

	// ALWAYS reserve space for footer (even if empty)
	footer := " "
	if end < count {
		footer = styles.DimStyle.Render(" ↓ more")
	}

	// Pad so the list keeps its height while results load
	for len(lines) < l.maxVisible {
		lines = append(lines, "")
	}

	content := header + "\n" + strings.Join(lines, "\n") + "\n" + footer

	// Add filter bar at bottom if active
	if l.filterActive {
		content += "\n" + l.renderFilterBar()
	}

	return content
}

func (l *PhotoList) renderPhoto(p domain.Photo, matched []int, selected bool, width int) string {
	dims := p.Dimensions()
	// swatch + spaces + dimensions + margins
	textWidth := width - lipgloss.Width(styles.SwatchChar) - lipgloss.Width(dims) - 6
	if textWidth < 5 {
		textWidth = 5
	}

	dim := styles.DimGray
	var parts []styles.RowPart
	parts = append(parts, styles.RowPart{Text: styles.Swatch(p.Color), Raw: true})
	parts = append(parts, styles.RowPart{Text: " "})

	if matched != nil {
		text := styles.Truncate(filterText(p), textWidth)
		parts = append(parts, styles.RowPart{Text: highlightMatches(text, matched, selected), Raw: true})
		parts = append(parts, styles.RowPart{Text: pad(textWidth - lipgloss.Width(text))})
	} else {
		title := p.Title()
		author := ""
		if p.Author.Name != "" {
			author = " · " + p.Author.Name
		}
		title = styles.Truncate(title, textWidth)
		author = styles.Truncate(author, textWidth-lipgloss.Width(title))
		parts = append(parts, styles.RowPart{Text: title})
		parts = append(parts, styles.RowPart{Text: author, Foreground: &dim})
		parts = append(parts, styles.RowPart{Text: pad(textWidth - lipgloss.Width(title) - lipgloss.Width(author))})
	}

	parts = append(parts, styles.RowPart{Text: "  " + dims, Foreground: &dim})
	return styles.RenderListRow(parts, selected, width)
}

func pad(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}

// highlightMatches renders text with matched bytes highlighted. matched holds
// byte offsets as reported by sahilm/fuzzy.
func highlightMatches(text string, matched []int, selected bool) string {
	matchSet := make(map[int]bool, len(matched))
	for _, idx := range matched {
		matchSet[idx] = true
	}

	normal := lipgloss.NewStyle().Foreground(styles.LightGray)
	match := styles.MatchHighlightStyle
	if selected {
		normal = lipgloss.NewStyle().Foreground(styles.White).Background(styles.SlateLight)
		match = styles.MatchHighlightSelectedStyle
	}

	// Batch consecutive characters with the same style
	var result, batch strings.Builder
	batchMatch := false
	flush := func() {
		if batch.Len() == 0 {
			return
		}
		if batchMatch {
			result.WriteString(match.Render(batch.String()))
		} else {
			result.WriteString(normal.Render(batch.String()))
		}
		batch.Reset()
	}

	for i, r := range text {
		if matchSet[i] != batchMatch {
			flush()
			batchMatch = matchSet[i]
		}
		batch.WriteRune(r)
	}
	flush()

	return result.String()
}

func (l *PhotoList) renderFilterBar() string {
	input := l.filterInput.View()

	// Show match count
	countStr := ""
	if l.filterQuery != "" {
		countStr = styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", l.ItemCount(), len(l.photos)))
	}

	return input + countStr
}
