package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/shutter/internal/domain"
	"github.com/mmcdole/shutter/internal/picker"
	"github.com/mmcdole/shutter/internal/tui/components"
	"github.com/mmcdole/shutter/internal/tui/styles"
)

// Header, input, suggestions, status and help each take one line
const pickerChromeHeight = 5

const defaultSuggestionCount = 5

// PickerOptions controls the picker's presentation
type PickerOptions struct {
	Title        string
	HeaderLeft   string
	HeaderRight  string
	Placeholder  string
	PhotoMode    domain.PhotoMode
	EndThreshold int // Rows from the end that load the next page
	Suggestions  int // Recent queries offered while typing
}

// Picker is the embeddable photo search widget. It renders a search input
// over a result list and drives a picker.Controller from Bubble Tea messages.
type Picker struct {
	ctrl      *picker.Controller
	state     picker.State
	source    Searcher
	suggester Suggester
	opts      PickerOptions
	logger    *slog.Logger

	input       textinput.Model
	spinner     spinner.Model
	list        *components.PhotoList
	help        help.Model
	suggestions []string

	width  int
	height int
}

// NewPicker creates a picker that searches through source
func NewPicker(ctrl *picker.Controller, source Searcher, opts PickerOptions, logger *slog.Logger) *Picker {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.EndThreshold < 0 {
		opts.EndThreshold = 0
	}
	if opts.Suggestions <= 0 {
		opts.Suggestions = defaultSuggestionCount
	}
	if opts.PhotoMode == "" {
		opts.PhotoMode = domain.PhotoModeRegular
	}

	ti := textinput.New()
	ti.Placeholder = opts.Placeholder
	ti.CharLimit = 200
	ti.Prompt = "⌕ "
	ti.PromptStyle = styles.PromptStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	h := help.New()
	h.Styles.ShortKey = styles.HelpKeyStyle
	h.Styles.ShortDesc = styles.HelpDescStyle
	h.Styles.ShortSeparator = styles.DimStyle
	h.Styles.FullKey = styles.HelpKeyStyle
	h.Styles.FullDesc = styles.HelpDescStyle

	return &Picker{
		ctrl:    ctrl,
		state:   picker.NewState(),
		source:  source,
		opts:    opts,
		logger:  logger,
		input:   ti,
		spinner: sp,
		list:    components.NewPhotoList(),
		help:    h,
	}
}

// SetSuggester enables query completions from recent searches
func (p *Picker) SetSuggester(s Suggester) {
	p.suggester = s
}

// State returns the current search state
func (p *Picker) State() picker.State {
	return p.state
}

// Query returns the text in the search input
func (p *Picker) Query() string {
	return p.input.Value()
}

// Selected returns the photo under the list cursor
func (p *Picker) Selected() *domain.Photo {
	return p.list.Selected()
}

// ListFocused reports whether keys go to the result list
func (p *Picker) ListFocused() bool {
	return p.list.IsFocused()
}

// Init runs the initial query, if configured
func (p *Picker) Init() tea.Cmd {
	state, effects := p.ctrl.Start(p.state)
	if state.Query != p.state.Query {
		p.input.SetValue(state.Query)
		p.input.CursorEnd()
	}
	cmds := []tea.Cmd{textinput.Blink}
	cmds = append(cmds, p.commit(state, effects, true)...)
	return tea.Batch(cmds...)
}

// Close tears the picker down. Timers and searches still in flight become
// no-ops.
func (p *Picker) Close() {
	p.state, _ = p.ctrl.Apply(p.state, picker.Teardown{})
}

// SetSize updates the picker dimensions
func (p *Picker) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.Width = width - lipgloss.Width(p.input.Prompt) - 1
	p.help.Width = width

	listHeight := height - pickerChromeHeight
	if listHeight < 3 {
		listHeight = 3
	}
	p.list.SetSize(width, listHeight)
}

// Update handles messages
func (p *Picker) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case DebounceMsg:
		return p.apply(picker.DebounceFired{Seq: msg.Seq})

	case PageLoadedMsg:
		return p.apply(picker.PageLoaded{Fetch: msg.Fetch, Page: msg.Page})

	case PageFailedMsg:
		return p.apply(picker.PageFailed{Fetch: msg.Fetch, Err: msg.Err})

	case spinner.TickMsg:
		// Let the spinner stop once page 1 has arrived
		if !p.state.Querying {
			return nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		return p.handleKey(msg)
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

// apply feeds ev to the controller and schedules the resulting effects
func (p *Picker) apply(ev picker.Event) tea.Cmd {
	state, effects := p.ctrl.Apply(p.state, ev)

	// A fresh result set starts at the top of the list
	reset := false
	switch ev := ev.(type) {
	case picker.PageLoaded:
		reset = ev.Fetch.Page == 1
	case picker.DebounceFired:
		reset = len(state.Photos) == 0
	}
	return tea.Batch(p.commit(state, effects, reset)...)
}

func (p *Picker) commit(state picker.State, effects []picker.Effect, reset bool) []tea.Cmd {
	wasQuerying := p.state.Querying
	p.state = state
	p.list.SetPhotos(state.Photos, reset)

	if len(state.Photos) == 0 && p.list.IsFocused() {
		p.focusInput()
	}

	cmds := effectCmds(p.source, effects)
	if state.Querying && !wasQuerying {
		cmds = append(cmds, p.spinner.Tick)
	}
	return cmds
}

func (p *Picker) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, components.PickerKeys.Retry):
		return p.apply(picker.Retry{})

	case key.Matches(msg, components.PickerKeys.ClearQuery):
		p.input.SetValue("")
		p.focusInput()
		return p.textChanged()
	}

	if p.list.IsFocused() {
		return p.handleListKey(msg)
	}
	return p.handleInputKey(msg)
}

func (p *Picker) handleListKey(msg tea.KeyMsg) tea.Cmd {
	if p.list.IsFilterTyping() {
		cmd, _ := p.list.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, components.PickerKeys.Select):
		return p.selectCmd()

	case key.Matches(msg, components.PickerKeys.Search):
		p.list.ClearFilter()
		p.focusInput()
		return nil

	case msg.Type == tea.KeyEsc && !p.list.IsFiltering():
		p.focusInput()
		return nil
	}

	cmd, handled := p.list.Update(msg)
	if !handled {
		if key.Matches(msg, components.PhotoListKeys.Up) {
			p.focusInput()
		}
		return cmd
	}
	return tea.Batch(cmd, p.maybeLoadMore())
}

func (p *Picker) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, components.PickerKeys.Complete) && len(p.suggestions) > 0:
		p.input.SetValue(p.suggestions[0])
		p.input.CursorEnd()
		return p.textChanged()

	case key.Matches(msg, components.PickerKeys.Results), key.Matches(msg, components.PickerKeys.Select):
		if p.list.ItemCount() > 0 {
			p.focusList()
			return p.maybeLoadMore()
		}
		return nil
	}

	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() == before {
		return cmd
	}
	return tea.Batch(cmd, p.textChanged())
}

func (p *Picker) textChanged() tea.Cmd {
	p.refreshSuggestions()
	return p.apply(picker.TextChanged{Text: p.input.Value()})
}

func (p *Picker) refreshSuggestions() {
	p.suggestions = nil
	if p.suggester == nil {
		return
	}
	p.suggestions = p.suggester.Suggest(p.input.Value(), p.opts.Suggestions)
}

// maybeLoadMore asks for the next page once the cursor nears the end
func (p *Picker) maybeLoadMore() tea.Cmd {
	if !p.list.NearEnd(p.opts.EndThreshold) {
		return nil
	}
	return p.apply(picker.EndReached{})
}

func (p *Picker) selectCmd() tea.Cmd {
	photo := p.list.Selected()
	if photo == nil {
		return nil
	}
	selected := PhotoSelectedMsg{Photo: *photo, URL: photo.URL(p.opts.PhotoMode)}
	p.logger.Info("photo selected", "photoID", photo.ID, "query", p.state.Query)
	return func() tea.Msg { return selected }
}

func (p *Picker) focusInput() {
	p.list.SetFocused(false)
	p.input.Focus()
}

func (p *Picker) focusList() {
	p.input.Blur()
	p.suggestions = nil
	p.list.SetFocused(true)
}

// View renders the picker
func (p *Picker) View() string {
	lines := []string{
		p.renderHeader(),
		p.input.View(),
		p.renderSuggestions(),
		p.renderStatus(),
		p.list.View(),
		p.help.View(components.PickerKeys),
	}
	return strings.Join(lines, "\n")
}

func (p *Picker) renderHeader() string {
	title := styles.TitleStyle.Render(p.opts.Title)
	if p.opts.HeaderLeft != "" {
		title = styles.SubtitleStyle.Render(p.opts.HeaderLeft) + " " + title
	}
	if p.opts.HeaderRight == "" {
		return title
	}

	right := styles.SubtitleStyle.Render(p.opts.HeaderRight)
	gap := p.width - lipgloss.Width(title) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + right
}

func (p *Picker) renderSuggestions() string {
	if len(p.suggestions) == 0 || !p.input.Focused() {
		return " "
	}
	line := "recent: " + strings.Join(p.suggestions, " · ")
	return styles.DimStyle.Render(styles.Truncate(line, p.width))
}

func (p *Picker) renderStatus() string {
	s := p.state

	if s.Err != nil {
		line := styles.ErrorStyle.Render("✗ " + errorText(s.Err))
		if s.CanRetry() {
			line += styles.DimStyle.Render("  ctrl+r to retry")
		}
		return line
	}

	// The loading indicator is reserved for the first page
	if s.Querying {
		return p.spinner.View() + styles.DimStyle.Render(" Searching...")
	}

	query := strings.TrimSpace(s.Query)
	if query == "" {
		return styles.DimStyle.Render("Type to search photos")
	}
	if s.Debouncing() && len(s.Photos) == 0 {
		return " "
	}
	if len(s.Photos) == 0 {
		return styles.DimStyle.Render(fmt.Sprintf("No photos found for %q", query))
	}

	status := fmt.Sprintf("%d photos", len(s.Photos))
	if s.Total > 0 {
		status = fmt.Sprintf("%d of %d photos", len(s.Photos), s.Total)
	}
	switch {
	case s.LoadingMore:
		status += " · loading more..."
	case s.Exhausted:
		status += " · end of results"
	}
	return styles.DimStyle.Render(status)
}

// errorText turns a search error into a one-line message
func errorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		return "Rate limit reached, try again later"
	case errors.Is(err, domain.ErrAuthFailed):
		return "Access key was rejected"
	case errors.Is(err, domain.ErrServerOffline):
		return "Unsplash is unreachable"
	case errors.Is(err, domain.ErrMalformedResponse):
		return "Unexpected response from Unsplash"
	default:
		return err.Error()
	}
}
