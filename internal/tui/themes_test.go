package tui

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aayushbajaj/activity-telemetry/internal/storage"
)

var themeKey = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}}

// restoreTheme puts the package theme back after the test.
func restoreTheme(t *testing.T) {
	t.Helper()
	original := CurrentTheme
	t.Cleanup(func() {
		CurrentTheme = original
		regenerateStyles()
	})
}

type savedThemes struct {
	names []string
	err   error
}

func (s *savedThemes) SetTheme(name string) error {
	s.names = append(s.names, name)
	return s.err
}

// press sends the theme key and runs the command it returns, feeding the
// result back into the model.
func press(t *testing.T, m Model) Model {
	t.Helper()
	next, cmd := m.Update(themeKey)
	m = next.(Model)
	if cmd != nil {
		next, _ = m.Update(cmd())
		m = next.(Model)
	}
	return m
}

func TestSetThemeIgnoresUnknownNames(t *testing.T) {
	restoreTheme(t)

	tests := []struct {
		name string
		want string
	}{
		{"tokyonight", "Tokyo Night"},
		{"solarized", "Tokyo Night"},
		{"", "Tokyo Night"},
		{"Gruvbox", "Tokyo Night"},
		{"gruvbox", "Gruvbox"},
	}
	for _, tt := range tests {
		SetTheme(tt.name)
		if CurrentTheme.Name != tt.want {
			t.Errorf("after SetTheme(%q) current = %q, want %q", tt.name, CurrentTheme.Name, tt.want)
		}
	}
}

func TestNextThemeFollowsDisplayOrder(t *testing.T) {
	tests := []struct {
		current string
		want    string
	}{
		{"Default", "gruvbox"},
		{"Gruvbox", "tokyonight"},
		{"Tokyo Night", "catppuccin"},
		{"Catppuccin", "default"},
		{"catppuccin", "default"},
		{"", "default"},
	}
	for _, tt := range tests {
		if got := nextTheme(tt.current); got != tt.want {
			t.Errorf("nextTheme(%q) = %q, want %q", tt.current, got, tt.want)
		}
	}
}

func TestThemeKeyVisitsEveryThemeOnce(t *testing.T) {
	restoreTheme(t)
	SetTheme("default")

	seen := map[string]int{}
	m := New(nil)
	for range ThemeNames {
		m = press(t, m)
		seen[CurrentTheme.Name]++
	}
	if CurrentTheme.Name != "Default" {
		t.Errorf("Expected a full cycle to return to Default, got %q", CurrentTheme.Name)
	}
	for _, key := range ThemeNames {
		if seen[Themes[key].Name] != 1 {
			t.Errorf("theme %q shown %d times in one cycle", key, seen[Themes[key].Name])
		}
	}
}

func TestThemeKeyWithoutStoreSavesNothing(t *testing.T) {
	restoreTheme(t)
	SetTheme("default")

	_, cmd := New(nil).Update(themeKey)
	if cmd != nil {
		t.Error("Expected no command when no theme store is set")
	}
}

func TestThemeKeyPersistsToStore(t *testing.T) {
	restoreTheme(t)
	SetTheme("default")

	store, err := storage.Open(filepath.Join(t.TempDir(), "acttel.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	m := New(store).WithThemeStore(store)
	m = press(t, m)
	m = press(t, m)

	if got := store.GetTheme(); got != "tokyonight" {
		t.Errorf("stored theme = %q, want tokyonight", got)
	}
	if m.err != nil {
		t.Errorf("Expected no error, got %v", m.err)
	}

	// A later dashboard starts from the remembered theme.
	SetTheme("default")
	SetTheme(store.GetTheme())
	if CurrentTheme.Name != "Tokyo Night" {
		t.Errorf("Expected Tokyo Night after reload, got %q", CurrentTheme.Name)
	}
}

func TestThemeSaveFailureIsShown(t *testing.T) {
	restoreTheme(t)
	SetTheme("gruvbox")

	saved := &savedThemes{err: errors.New("database is locked")}
	m := press(t, New(nil).WithThemeStore(saved))

	if len(saved.names) != 1 || saved.names[0] != "tokyonight" {
		t.Errorf("saved = %v, want [tokyonight]", saved.names)
	}
	if CurrentTheme.Name != "Tokyo Night" {
		t.Errorf("Expected the theme to switch even when saving fails, got %q", CurrentTheme.Name)
	}
	if view := m.View(); !strings.Contains(view, "save theme: database is locked") {
		t.Errorf("Expected save error in view, got %q", view)
	}
}

func TestStylesFollowTheme(t *testing.T) {
	restoreTheme(t)

	for _, key := range ThemeNames {
		SetTheme(key)
		theme := Themes[key]
		if got := headerStyle.GetForeground(); got != lipgloss.Color(theme.PrimaryAccent) {
			t.Errorf("%s: header foreground = %v, want %s", key, got, theme.PrimaryAccent)
		}
		if got := barStyle.GetForeground(); got != lipgloss.Color(theme.SecondaryAccent) {
			t.Errorf("%s: bar foreground = %v, want %s", key, got, theme.SecondaryAccent)
		}
		if got := errorStyle.GetForeground(); got != lipgloss.Color(theme.WarnText) {
			t.Errorf("%s: error foreground = %v, want %s", key, got, theme.WarnText)
		}
	}
}
