package ui

import "testing"

// Theme state is global, so these tests do not run in parallel.

func TestInitTheme(t *testing.T) {
	defer SetCurrentTheme(GetCurrentTheme())

	InitTheme(true)
	if got := GetCurrentTheme().Name; got != "none" {
		t.Errorf("InitTheme(true) selected %q, want none", got)
	}
	if ColorRed() != "" || ColorReset() != "" {
		t.Error("colors should be empty when disabled")
	}
	if GetCurrentTUITheme() != NoColorTUITheme {
		t.Error("expected the no-color dashboard palette")
	}
}

func TestInitTheme_NoColorEnv(t *testing.T) {
	defer SetCurrentTheme(GetCurrentTheme())
	t.Setenv("NO_COLOR", "1")

	InitTheme(false)
	if got := GetCurrentTheme().Name; got != "none" {
		t.Errorf("NO_COLOR should disable colors, got theme %q", got)
	}
}

func TestSetTheme(t *testing.T) {
	defer SetCurrentTheme(GetCurrentTheme())
	tests := []struct {
		name string
		want string
	}{
		{"dark", "dark"},
		{"light", "light"},
		{"none", "none"},
		{"neon", "dark"},
	}
	for _, tt := range tests {
		SetTheme(tt.name)
		if got := GetCurrentTheme().Name; got != tt.want {
			t.Errorf("SetTheme(%q) selected %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestColorize(t *testing.T) {
	defer SetCurrentTheme(GetCurrentTheme())

	SetCurrentTheme(DarkTheme)
	if got := Colorize(ColorGreen(), "ok"); got != DarkTheme.Success+"ok"+DarkTheme.Reset {
		t.Errorf("Colorize = %q", got)
	}
	SetCurrentTheme(NoColorTheme)
	if got := Colorize(ColorGreen(), "ok"); got != "ok" {
		t.Errorf("Colorize without colors = %q, want ok", got)
	}
}

func TestColorsEnabled(t *testing.T) {
	defer SetCurrentTheme(GetCurrentTheme())

	SetTheme("light")
	if !ColorsEnabled() || GetCurrentTUITheme() != DarkTUITheme {
		t.Error("light theme should enable colors")
	}
	if LightTheme.Error != "\033[38;5;124m" {
		t.Errorf("LightTheme.Error = %q", LightTheme.Error)
	}
	SetTheme("none")
	if ColorsEnabled() {
		t.Error("none theme should disable colors")
	}
}
