package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/agbru/winsatrun/internal/assessment"
	"github.com/agbru/winsatrun/internal/ui"
)

// assessedAtLayout prints the long date and the long time.
const assessedAtLayout = "Monday, January 2, 2006  3:04:05 PM"

// SubscoreReport is one component score in a run report.
type SubscoreReport struct {
	Title       string `json:"title"`
	Score       string `json:"score"`
	Description string `json:"description"`
}

// AssessmentReport is the assessment on record in a run report. Scores are
// strings with one decimal.
type AssessmentReport struct {
	State       string           `json:"state"`
	BaseScore   string           `json:"base_score,omitempty"`
	RatingState string           `json:"rating_state,omitempty"`
	AssessedAt  *time.Time       `json:"assessed_at,omitempty"`
	Subscores   []SubscoreReport `json:"subscores,omitempty"`
}

// NewAssessmentReport converts info for the JSON report.
func NewAssessmentReport(info assessment.Info) *AssessmentReport {
	r := &AssessmentReport{State: info.State.String()}
	if !info.State.HasScores() {
		return r
	}
	r.BaseScore = assessment.FormatScore(info.BaseScore)
	r.RatingState = info.RatingState
	if !info.AssessedAt.IsZero() {
		at := info.AssessedAt
		r.AssessedAt = &at
	}
	for _, s := range info.Subscores {
		r.Subscores = append(r.Subscores, SubscoreReport{
			Title:       s.Title,
			Score:       assessment.FormatScore(s.Score),
			Description: s.Description,
		})
	}
	return r
}

// PrintAssessmentInfo displays the assessment on record: its state, the
// base score and one line per component.
func PrintAssessmentInfo(info assessment.Info, out io.Writer) {
	fmt.Fprintf(out, "\n--- Assessment on Record ---\n")
	state := info.State.String()
	if info.RatingState != "" {
		state = fmt.Sprintf("%s (%s)", state, info.RatingState)
	}
	fmt.Fprintf(out, "State:      %s\n", state)
	if !info.State.HasScores() {
		fmt.Fprintf(out, "No scores are available. Run a formal assessment first.\n")
		return
	}
	fmt.Fprintf(out, "Base score: %s%s%s\n", ui.ColorGreen(), assessment.FormatScore(info.BaseScore), ui.ColorReset())
	if !info.AssessedAt.IsZero() {
		fmt.Fprintf(out, "Assessed:   %s\n", info.AssessedAt.Format(assessedAtLayout))
	}
	width := 0
	for _, s := range info.Subscores {
		width = max(width, len(s.Title))
	}
	for _, s := range info.Subscores {
		fmt.Fprintf(out, "  %-*s  %s%s%s  %s\n", width, s.Title,
			ui.ColorCyan(), assessment.FormatScore(s.Score), ui.ColorReset(), s.Description)
	}
}
