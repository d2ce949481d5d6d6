package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"

	"github.com/xvierd/gitstate/internal/config"
	"github.com/xvierd/gitstate/internal/domain"
)

// SnapshotMsg delivers a new snapshot, or the error of a failed refresh.
// Watchers send it to a running program to push updates.
type SnapshotMsg struct {
	Snapshot *domain.Snapshot
	Err      error
}

// RefreshFunc produces a fresh snapshot on demand.
type RefreshFunc func() (*domain.Snapshot, error)

// Model is the interactive file-state browser.
type Model struct {
	root    string
	all     []*domain.FileState
	visible []*domain.FileState
	cursor  int

	filter       textinput.Model
	filtering    bool
	modifiedOnly bool
	showDetails  bool
	refreshing   bool
	err          error

	refresh RefreshFunc
	help    help.Model
	theme   config.ThemeConfig
	lang    language.Tag
	width   int
	height  int
}

// NewModel creates a browser over snap. refresh may be nil, which disables
// manual refresh.
func NewModel(snap *domain.Snapshot, refresh RefreshFunc, theme *config.ThemeConfig, lang language.Tag) Model {
	ti := textinput.New()
	ti.Placeholder = "fuzzy filter"
	ti.Prompt = "/ "
	ti.CharLimit = 256

	m := Model{
		filter:  ti,
		refresh: refresh,
		help:    help.New(),
		theme:   resolveTheme(theme),
		lang:    lang,
		width:   getTerminalWidth(),
		height:  24,
	}
	m.setSnapshot(snap)
	return m
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return nil
}

func refreshCmd(refresh RefreshFunc) tea.Cmd {
	return func() tea.Msg {
		snap, err := refresh()
		return SnapshotMsg{Snapshot: snap, Err: err}
	}
}

// Selected returns the state under the cursor, or nil when nothing is listed.
func (m Model) Selected() *domain.FileState {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return nil
	}
	return m.visible[m.cursor]
}

// Visible returns the states currently listed.
func (m Model) Visible() []*domain.FileState {
	return m.visible
}

func (m *Model) setSnapshot(snap *domain.Snapshot) {
	if snap == nil {
		return
	}
	var keep string
	if sel := m.Selected(); sel != nil {
		keep = sel.Path
	}
	m.root = snap.Root
	m.all = snap.Sorted()
	m.applyFilter()

	for i, st := range m.visible {
		if st.Path == keep {
			m.cursor = i
			return
		}
	}
}

// applyFilter recomputes the visible states and keeps the cursor in range.
func (m *Model) applyFilter() {
	m.visible = domain.FilterStates(m.all, m.filter.Value(), m.modifiedOnly)

	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case SnapshotMsg:
		m.refreshing = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.err = nil
		m.setSnapshot(msg.Snapshot)
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.applyFilter()
		return m, nil
	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Top):
		m.cursor = 0
	case key.Matches(msg, keys.Bottom):
		m.cursor = max(len(m.visible)-1, 0)
	case key.Matches(msg, keys.Filter):
		m.filtering = true
		return m, m.filter.Focus()
	case key.Matches(msg, keys.ClearFilter):
		m.filter.SetValue("")
		m.showDetails = false
		m.applyFilter()
	case key.Matches(msg, keys.Modified):
		m.modifiedOnly = !m.modifiedOnly
		m.applyFilter()
	case key.Matches(msg, keys.Details):
		m.showDetails = !m.showDetails
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, keys.Refresh):
		if m.refresh != nil && !m.refreshing {
			m.refreshing = true
			return m, refreshCmd(m.refresh)
		}
	}
	return m, nil
}

// View renders the TUI.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorTitle))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorMuted))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorConflict))

	var b strings.Builder

	header := titleStyle.Render("gitstate") + mutedStyle.Render(" · "+m.root)
	if m.modifiedOnly {
		header += mutedStyle.Render(" · modified only")
	}
	if m.refreshing {
		header += mutedStyle.Render(" · refreshing…")
	}
	b.WriteString(header + "\n")

	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View() + "\n")
	}
	b.WriteString("\n")

	b.WriteString(m.listView())

	if sel := m.Selected(); sel != nil {
		b.WriteString("\n")
		if m.showDetails {
			b.WriteString(RenderDetails(sel, &m.theme, m.lang, m.width))
		} else if tip := sel.DisplayTooltip().Localize(m.lang); tip != "" {
			b.WriteString(helpStyle.Width(m.width-2).Render(tip) + "\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n" + errStyle.Render("refresh failed: "+m.err.Error()) + "\n")
	}

	b.WriteString("\n" + m.help.View(keys))
	return b.String()
}

// listView renders the window of states around the cursor.
func (m Model) listView() string {
	if len(m.visible) == 0 {
		msg := "  Nothing to report"
		if len(m.all) > 0 {
			msg = "  No file matches"
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorMuted)).Render(msg) + "\n"
	}

	// Header, filter, tooltip and help take roughly ten lines.
	rows := max(m.height-10, 3)
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := min(start+rows, len(m.visible))

	pathWidth := 0
	for _, st := range m.visible[start:end] {
		pathWidth = max(pathWidth, lipgloss.Width(st.Path))
	}
	pathWidth = min(pathWidth, max(m.width-30, 20))

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderLine(m.theme, m.visible[i], m.lang, pathWidth, i == m.cursor))
		b.WriteString("\n")
	}
	if len(m.visible) > rows {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorMuted)).
			Render(fmt.Sprintf("  %d/%d", m.cursor+1, len(m.visible))) + "\n")
	}
	return b.String()
}

// NewProgram wraps the model in a full-screen program. Callers may Send
// SnapshotMsg to it from other goroutines.
func NewProgram(m Model) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen())
}

// RunBrowser runs the browser until the user quits.
func RunBrowser(m Model) error {
	if _, err := NewProgram(m).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
