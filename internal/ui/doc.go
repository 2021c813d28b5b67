// Package ui provides theme and color support for the console presenters
// and the dashboard. It defines ANSI color schemes for line output and the
// matching lipgloss palette, and honors NO_COLOR.
package ui
