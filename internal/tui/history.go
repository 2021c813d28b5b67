package tui

// sparkLevels are the eight block heights of a sparkline, lowest first.
const sparkLevels = "▁▂▃▄▅▆▇█"

// History keeps the most recent percentage samples of one gauge.
type History struct {
	samples []float64
	limit   int
}

// NewHistory returns a History holding at most limit samples.
func NewHistory(limit int) *History {
	return &History{limit: max(limit, 1)}
}

// Add records v, clamped to 0..100, dropping the oldest sample when full.
func (h *History) Add(v float64) {
	h.samples = append(h.samples, min(max(v, 0), 100))
	h.trim()
}

// SetLimit changes the capacity and keeps the newest samples that fit.
func (h *History) SetLimit(limit int) {
	h.limit = max(limit, 1)
	h.trim()
}

func (h *History) trim() {
	if extra := len(h.samples) - h.limit; extra > 0 {
		h.samples = append(h.samples[:0], h.samples[extra:]...)
	}
}

// Len returns the number of samples held.
func (h *History) Len() int { return len(h.samples) }

// Latest returns the newest sample, or 0 when empty.
func (h *History) Latest() float64 {
	if len(h.samples) == 0 {
		return 0
	}
	return h.samples[len(h.samples)-1]
}

// Values returns a copy of the samples, oldest first.
func (h *History) Values() []float64 {
	if len(h.samples) == 0 {
		return nil
	}
	return append([]float64(nil), h.samples...)
}

// Sparkline renders the samples as block characters, one per sample.
func (h *History) Sparkline() string {
	levels := []rune(sparkLevels)
	out := make([]rune, len(h.samples))
	for i, v := range h.samples {
		out[i] = levels[min(int(v/100*float64(len(levels)-1)), len(levels)-1)]
	}
	return string(out)
}
