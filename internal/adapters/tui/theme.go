// Package tui provides the terminal user interface implementation
// using the Bubbletea framework.
package tui

import (
	"os"
	"reflect"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"

	"github.com/xvierd/gitstate/internal/config"
	"github.com/xvierd/gitstate/internal/domain"
)

// resolveTheme fills any empty string fields in the given ThemeConfig with defaults.
// If theme is nil, returns the full default theme.
func resolveTheme(theme *config.ThemeConfig) config.ThemeConfig {
	defaults := config.DefaultThemeConfig()
	if theme == nil {
		return defaults
	}
	resolved := *theme
	rv := reflect.ValueOf(&resolved).Elem()
	dv := reflect.ValueOf(defaults)
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.String() == "" {
			f.SetString(dv.Field(i).String())
		}
	}
	return resolved
}

// glyph maps an icon key to the glyph configured for it. States without an
// icon get a blank of the same width so columns line up.
func glyph(theme config.ThemeConfig, key domain.IconKey) string {
	switch key {
	case domain.IconCheckedOut:
		return theme.IconCheckedOut
	case domain.IconCheckedOutByOther:
		return theme.IconCheckedOutByOther
	case domain.IconNotAtHeadRevision:
		return theme.IconNotAtHeadRevision
	case domain.IconNotInDepot:
		return theme.IconNotInDepot
	case domain.IconOpenForAdd:
		return theme.IconOpenForAdd
	case domain.IconBranched:
		return theme.IconBranched
	case domain.IconMarkedForDelete:
		return theme.IconMarkedForDelete
	case domain.IconModifiedOtherBranch:
		return theme.IconModifiedOtherBranch
	default:
		return " "
	}
}

// stateColor picks the color of a state, following the display precedence.
func stateColor(theme config.ThemeConfig, st *domain.FileState) lipgloss.Color {
	switch {
	case st.Lock != domain.LockNone:
		return lipgloss.Color(theme.ColorLocked)
	case !st.IsCurrent():
		return lipgloss.Color(theme.ColorOutdated)
	}
	switch st.WorkingCopy {
	case domain.StatusConflicted:
		return lipgloss.Color(theme.ColorConflict)
	case domain.StatusAdded:
		return lipgloss.Color(theme.ColorAdded)
	case domain.StatusModified, domain.StatusRenamed, domain.StatusCopied:
		return lipgloss.Color(theme.ColorModified)
	case domain.StatusDeleted, domain.StatusMissing:
		return lipgloss.Color(theme.ColorDeleted)
	default:
		return lipgloss.Color(theme.ColorMuted)
	}
}

// getTerminalWidth returns the current terminal width, defaulting to 80.
func getTerminalWidth() int {
	w, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || w < 40 {
		return 80
	}
	return w
}
