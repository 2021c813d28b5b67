package ui

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a console palette of ANSI escape codes. The zero value, apart
// from its name, prints no escapes at all.
type Theme struct {
	Name string

	Primary   string
	Secondary string
	Success   string
	Warning   string
	Error     string
	Info      string

	Bold      string
	Underline string
	Reset     string
}

// palette builds a Theme from 256-color indexes in the order primary,
// secondary, success, warning, error, info.
func palette(name string, primary, secondary, success, warning, failure, info int) Theme {
	fg := func(n int) string { return fmt.Sprintf("\033[38;5;%dm", n) }
	return Theme{
		Name:      name,
		Primary:   fg(primary),
		Secondary: fg(secondary),
		Success:   fg(success),
		Warning:   fg(warning),
		Error:     fg(failure),
		Info:      fg(info),
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}
}

// Built-in console themes.
var (
	DarkTheme    = palette("dark", 39, 245, 82, 220, 196, 141)
	LightTheme   = palette("light", 27, 240, 28, 130, 124, 54)
	NoColorTheme = Theme{Name: "none"}
)

var (
	themeMutex   sync.RWMutex
	currentTheme = DarkTheme
)

// TUITheme holds the lipgloss colors of the dashboard.
type TUITheme struct {
	Text, Border, Accent, Success, Warning, Error, Dim, Info lipgloss.TerminalColor
}

// Dashboard palettes.
var (
	DarkTUITheme = TUITheme{
		Text:    lipgloss.Color("#E0E0E0"),
		Border:  lipgloss.Color("#3A7BD5"),
		Accent:  lipgloss.Color("#00A4EF"),
		Success: lipgloss.Color("#9ECE6A"),
		Warning: lipgloss.Color("#FFB347"),
		Error:   lipgloss.Color("#FF4444"),
		Dim:     lipgloss.Color("#666666"),
		Info:    lipgloss.Color("#B48EAD"),
	}
	NoColorTUITheme = TUITheme{
		Text: lipgloss.NoColor{}, Border: lipgloss.NoColor{}, Accent: lipgloss.NoColor{}, Success: lipgloss.NoColor{},
		Warning: lipgloss.NoColor{}, Error: lipgloss.NoColor{}, Dim: lipgloss.NoColor{}, Info: lipgloss.NoColor{},
	}
)

// GetCurrentTheme returns the active console theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// GetCurrentTUITheme returns the dashboard palette matching the active theme.
func GetCurrentTUITheme() TUITheme {
	if !ColorsEnabled() {
		return NoColorTUITheme
	}
	return DarkTUITheme
}

// ColorsEnabled reports whether the active theme emits escape codes.
func ColorsEnabled() bool {
	return GetCurrentTheme().Name != NoColorTheme.Name
}

// SetCurrentTheme replaces the active theme. Tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	currentTheme = t
	themeMutex.Unlock()
}

// SetTheme selects a theme by name: dark, light or none. Unknown names
// select dark.
func SetTheme(name string) {
	switch name {
	case LightTheme.Name:
		SetCurrentTheme(LightTheme)
	case NoColorTheme.Name:
		SetCurrentTheme(NoColorTheme)
	default:
		SetCurrentTheme(DarkTheme)
	}
}

// InitTheme picks the startup theme. Colors are off when noColor is set or
// the NO_COLOR environment variable exists (https://no-color.org/).
func InitTheme(noColor bool) {
	if _, set := os.LookupEnv("NO_COLOR"); noColor || set {
		SetCurrentTheme(NoColorTheme)
		return
	}
	SetCurrentTheme(DarkTheme)
}
