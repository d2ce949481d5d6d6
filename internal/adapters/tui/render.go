package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"

	"github.com/xvierd/gitstate/internal/config"
	"github.com/xvierd/gitstate/internal/domain"
)

// RenderStatus renders one line per state: icon, path and display name.
// A width of zero or less uses the terminal width.
func RenderStatus(states []*domain.FileState, theme *config.ThemeConfig, lang language.Tag, width int) string {
	resolved := resolveTheme(theme)
	if width <= 0 {
		width = getTerminalWidth()
	}
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(resolved.ColorMuted))

	if len(states) == 0 {
		return mutedStyle.Render("  Nothing to report") + "\n"
	}

	pathWidth := 0
	for _, st := range states {
		pathWidth = max(pathWidth, lipgloss.Width(st.Path))
	}
	// Leave room for the icon column and a short status.
	pathWidth = min(pathWidth, max(width-30, 20))

	var b strings.Builder
	for _, st := range states {
		b.WriteString(renderLine(resolved, st, lang, pathWidth, false))
		b.WriteString("\n")
	}
	return b.String()
}

func renderLine(theme config.ThemeConfig, st *domain.FileState, lang language.Tag, pathWidth int, selected bool) string {
	color := stateColor(theme, st)
	iconStyle := lipgloss.NewStyle().Foreground(color).Width(2)
	pathStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorPath)).Width(pathWidth).MaxWidth(pathWidth)
	statusStyle := lipgloss.NewStyle().Foreground(color)

	cursor := "  "
	if selected {
		cursor = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorTitle)).Bold(true).Render("▸ ")
		pathStyle = pathStyle.Bold(true)
	}

	return cursor +
		iconStyle.Render(glyph(theme, st.IconKey())) + " " +
		pathStyle.Render(st.Path) + "  " +
		statusStyle.Render(st.DisplayName().Localize(lang))
}

// RenderDetails renders everything known about one state: its display text,
// lock, the operations it allows and its most recent revisions.
func RenderDetails(st *domain.FileState, theme *config.ThemeConfig, lang language.Tag, width int) string {
	resolved := resolveTheme(theme)
	if width <= 0 {
		width = getTerminalWidth()
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(resolved.ColorTitle))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(resolved.ColorMuted)).Width(14)
	tooltipStyle := lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color(resolved.ColorHelp)).Width(width - 4)
	color := stateColor(resolved, st)

	var b strings.Builder
	b.WriteString(titleStyle.Render(glyph(resolved, st.IconKey())+" "+st.Filename()) + "\n")
	b.WriteString(lipgloss.NewStyle().Foreground(color).Render(st.DisplayName().Localize(lang)) + "\n")
	if tip := st.DisplayTooltip().Localize(lang); tip != "" {
		b.WriteString(tooltipStyle.Render(tip) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Status") + string(st.WorkingCopy) + "\n")
	b.WriteString(labelStyle.Render("Lock") + st.Lock.Label())
	if owner := st.LockedBy(); owner != "" {
		b.WriteString(" (" + owner + ")")
	}
	b.WriteString("\n")
	if !st.IsCurrent() {
		b.WriteString(labelStyle.Render("Remote") + "newer version available\n")
	}

	b.WriteString("\n")
	b.WriteString(renderCapabilities(resolved, st.Capabilities()))

	if st.HistorySize() > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("History") + "\n")
		for _, rev := range st.History[:min(len(st.History), 5)] {
			b.WriteString(fmt.Sprintf("  #%-3d %s %-8s %s\n",
				rev.Number, rev.ShortIdentifier(), rev.Action, firstLine(rev.Description)))
		}
		if st.HistorySize() > 5 {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(resolved.ColorMuted)).
				Render(fmt.Sprintf("  … %d more", st.HistorySize()-5)) + "\n")
		}
	}

	return b.String()
}

func renderCapabilities(theme config.ThemeConfig, caps domain.Capabilities) string {
	yes := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorAdded)).Render("✓")
	no := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorMuted)).Render("·")

	mark := func(ok bool) string {
		if ok {
			return yes
		}
		return no
	}

	ops := []struct {
		label string
		ok    bool
	}{
		{"checkout", caps.CanCheckout},
		{"check in", caps.CanCheckIn},
		{"add", caps.CanAdd},
		{"delete", caps.CanDelete},
		{"edit", caps.CanEdit},
		{"revert", caps.CanRevert},
	}

	parts := make([]string, 0, len(ops))
	for _, op := range ops {
		parts = append(parts, mark(op.ok)+" "+op.label)
	}
	return "  " + strings.Join(parts, "   ") + "\n"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
