package format

import (
	"fmt"
	"strings"
)

// Percent renders an integer percentage, e.g. "25%".
func Percent(p uint64) string {
	return fmt.Sprintf("%d%%", p)
}

// ProgressBar renders a fixed-width text bar for pct (clamped to 0..100).
func ProgressBar(pct uint64, width int) string {
	if width <= 0 {
		return ""
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct * uint64(width) / 100)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Bytes renders a byte count with binary units, e.g. "7.6 GiB".
func Bytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
