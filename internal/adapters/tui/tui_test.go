package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/language"

	"github.com/xvierd/gitstate/internal/config"
	"github.com/xvierd/gitstate/internal/domain"
)

func sampleSnapshot() *domain.Snapshot {
	now := time.Now()
	return domain.NewSnapshot("/repo", []*domain.FileState{
		{Path: "Content/Hero.uasset", WorkingCopy: domain.StatusModified, Lock: domain.LockedOther, LockOwner: "bob", LockingEnabled: true, Timestamp: now},
		{Path: "Content/Heroine.uasset", WorkingCopy: domain.StatusUnchanged, Lock: domain.LockNone, LockingEnabled: true, Timestamp: now},
		{Path: "README.md", WorkingCopy: domain.StatusAdded, Lock: domain.LockNone, LockingEnabled: true, Timestamp: now},
		{Path: "Source/Main.cpp", WorkingCopy: domain.StatusUnchanged, Lock: domain.LockNone, NewerVersionOnRemote: true, Timestamp: now},
	})
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestResolveTheme(t *testing.T) {
	theme := &config.ThemeConfig{ColorTitle: "#000000"}
	got := resolveTheme(theme)

	if got.ColorTitle != "#000000" {
		t.Errorf("ColorTitle = %q, want the configured value", got.ColorTitle)
	}
	defaults := config.DefaultThemeConfig()
	if got.IconCheckedOutByOther != defaults.IconCheckedOutByOther {
		t.Errorf("IconCheckedOutByOther = %q, want default", got.IconCheckedOutByOther)
	}
	if resolveTheme(nil) != defaults {
		t.Error("resolveTheme(nil) should return the defaults")
	}
}

func TestGlyph(t *testing.T) {
	theme := config.DefaultThemeConfig()
	seen := make(map[string]domain.IconKey)
	for _, k := range domain.IconKeys {
		g := glyph(theme, k)
		if g == "" || g == " " {
			t.Errorf("glyph(%s) is blank", k)
		}
		if other, dup := seen[g]; dup {
			t.Errorf("glyph(%s) = glyph(%s) = %q", k, other, g)
		}
		seen[g] = k
	}
	if glyph(theme, domain.IconNone) != " " {
		t.Error("IconNone should render as a blank")
	}
}

func TestRenderStatus(t *testing.T) {
	theme := config.DefaultThemeConfig()
	out := RenderStatus(sampleSnapshot().Sorted(), &theme, language.English, 100)

	for _, want := range []string{
		"Content/Hero.uasset", "Locked by bob", theme.IconCheckedOutByOther,
		"README.md", "Added", theme.IconOpenForAdd,
		"Source/Main.cpp", "Not current", theme.IconNotAtHeadRevision,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderStatus() missing %q", want)
		}
	}
	if n := strings.Count(out, "\n"); n != 4 {
		t.Errorf("RenderStatus() has %d lines, want 4", n)
	}

	if empty := RenderStatus(nil, nil, language.English, 80); !strings.Contains(empty, "Nothing to report") {
		t.Errorf("RenderStatus(nil) = %q", empty)
	}
}

func TestRenderDetails(t *testing.T) {
	st := &domain.FileState{
		Path:           "Content/Hero.uasset",
		WorkingCopy:    domain.StatusModified,
		Lock:           domain.LockedSelf,
		LockingEnabled: true,
		History: []domain.Revision{
			{Number: 2, Identifier: "abcdef123456", Action: domain.ActionModify, Description: "tweak\n\nlong body"},
			{Number: 1, Identifier: "0123456789ab", Action: domain.ActionAdd, Description: "add hero"},
		},
	}

	out := RenderDetails(st, nil, language.English, 100)
	for _, want := range []string{
		"Locked For Editing",
		"Locked for editing by current user",
		"Locked by you",
		"check in",
		"abcdef1",
		"tweak",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderDetails() missing %q", want)
		}
	}
	if strings.Contains(out, "long body") {
		t.Error("RenderDetails() should only show the first line of a description")
	}
}

func TestModel_Navigation(t *testing.T) {
	m := NewModel(sampleSnapshot(), nil, nil, language.English)

	if m.Selected().Path != "Content/Hero.uasset" {
		t.Fatalf("Selected() = %q", m.Selected().Path)
	}

	m = press(t, m, runes("j"), tea.KeyMsg{Type: tea.KeyDown})
	if m.Selected().Path != "README.md" {
		t.Errorf("after two downs Selected() = %q", m.Selected().Path)
	}

	m = press(t, m, runes("G"))
	if m.Selected().Path != "Source/Main.cpp" {
		t.Errorf("after G Selected() = %q", m.Selected().Path)
	}
	m = press(t, m, runes("j"))
	if m.Selected().Path != "Source/Main.cpp" {
		t.Error("cursor should stop at the last row")
	}

	m = press(t, m, runes("g"), runes("k"))
	if m.Selected().Path != "Content/Hero.uasset" {
		t.Error("cursor should stop at the first row")
	}
}

func TestModel_Filter(t *testing.T) {
	m := NewModel(sampleSnapshot(), nil, nil, language.English)

	m = press(t, m, runes("/"))
	if !m.filtering {
		t.Fatal("/ should start filtering")
	}
	m = press(t, m, runes("h"), runes("e"), runes("r"), runes("o"))
	if len(m.Visible()) != 2 {
		t.Errorf("filter hero matched %d files, want 2", len(m.Visible()))
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.filtering || len(m.Visible()) != 2 {
		t.Error("enter should keep the filter and leave filter mode")
	}

	// While not filtering, letters are commands again.
	m = press(t, m, runes("j"))
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if len(m.Visible()) != 4 {
		t.Errorf("esc should clear the filter, got %d files", len(m.Visible()))
	}
}

func TestModel_ModifiedOnly(t *testing.T) {
	m := NewModel(sampleSnapshot(), nil, nil, language.English)

	m = press(t, m, runes("G"), runes("m"))
	if len(m.Visible()) != 2 {
		t.Fatalf("modified only shows %d files, want 2", len(m.Visible()))
	}
	if m.Selected() == nil {
		t.Fatal("cursor should be clamped into the list")
	}
	if !strings.Contains(m.View(), "modified only") {
		t.Error("View() should show the modified-only mode")
	}

	m = press(t, m, runes("m"))
	if len(m.Visible()) != 4 {
		t.Errorf("toggling back shows %d files, want 4", len(m.Visible()))
	}
}

func TestModel_Refresh(t *testing.T) {
	calls := 0
	next := domain.NewSnapshot("/repo", []*domain.FileState{
		{Path: "README.md", WorkingCopy: domain.StatusConflicted, Lock: domain.LockNone},
	})
	refresh := func() (*domain.Snapshot, error) {
		calls++
		return next, nil
	}

	m := NewModel(sampleSnapshot(), refresh, nil, language.English)
	m = press(t, m, runes("j"), runes("j"))

	updated, cmd := m.Update(runes("r"))
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("r should return a refresh command")
	}
	if !m.refreshing {
		t.Error("model should be marked refreshing")
	}

	msg := cmd()
	if calls != 1 {
		t.Errorf("refresh called %d times, want 1", calls)
	}
	m = press(t, m, msg)
	if m.refreshing {
		t.Error("refreshing should clear when the snapshot arrives")
	}
	if len(m.Visible()) != 1 || m.Selected().Path != "README.md" {
		t.Errorf("after refresh Selected() = %v", m.Selected())
	}
	if !strings.Contains(m.View(), "Contents Conflict") {
		t.Error("View() should show the new state")
	}
}

func TestModel_RefreshError(t *testing.T) {
	m := NewModel(sampleSnapshot(), nil, nil, language.English)

	m = press(t, m, SnapshotMsg{Err: errors.New("index locked")})
	if !strings.Contains(m.View(), "index locked") {
		t.Error("View() should show the refresh error")
	}
	if len(m.Visible()) != 4 {
		t.Error("a failed refresh must keep the previous states")
	}

	_, cmd := m.Update(runes("r"))
	if cmd != nil {
		t.Error("refresh without a RefreshFunc should do nothing")
	}
}

func TestModel_View(t *testing.T) {
	m := NewModel(sampleSnapshot(), nil, nil, language.English)
	m = press(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	view := m.View()
	for _, want := range []string{"gitstate", "/repo", "Locked by bob", "Locked for editing by: bob"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.View(), "check in") {
		t.Error("enter should show the details panel")
	}

	empty := NewModel(domain.NewSnapshot("/repo", nil), nil, nil, language.English)
	if !strings.Contains(empty.View(), "Nothing to report") {
		t.Error("an empty snapshot should say so")
	}
}

func TestModel_Quit(t *testing.T) {
	m := NewModel(sampleSnapshot(), nil, nil, language.English)

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}
