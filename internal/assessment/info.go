package assessment

import (
	"fmt"
	"strings"
	"time"
)

// State is the validity of the assessment the service has on record.
type State int

const (
	// StateUnknown means the service could not tell.
	StateUnknown State = iota
	// StateValid means the stored assessment matches the machine.
	StateValid
	// StateIncoherentWithHardware means the hardware changed since the
	// stored assessment ran. Its scores are still reported.
	StateIncoherentWithHardware
	// StateNotAvailable means no assessment has ever completed.
	StateNotAvailable
	// StateInvalid means the stored assessment cannot be used.
	StateInvalid
)

var stateNames = map[State]string{
	StateUnknown:                "unknown",
	StateValid:                  "valid",
	StateIncoherentWithHardware: "incoherent",
	StateNotAvailable:           "unavailable",
	StateInvalid:                "invalid",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// HasScores reports whether scores are reported in state s.
func (s State) HasScores() bool {
	return s == StateValid || s == StateIncoherentWithHardware
}

// ParseState parses a state name as printed by State.String.
func ParseState(s string) (State, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for st, n := range stateNames {
		if n == name {
			return st, nil
		}
	}
	return StateUnknown, fmt.Errorf("unknown assessment state %q", s)
}

// Subscore is the score of one assessed component, e.g. "Memory".
type Subscore struct {
	Title       string
	Score       float32
	Description string
}

// Info is the assessment the service has on record. Only State is set when
// State.HasScores is false.
type Info struct {
	State State
	// BaseScore is the system rating, the lowest subscore.
	BaseScore float32
	// RatingState describes the rating, e.g. whether it is up to date.
	RatingState string
	AssessedAt  time.Time
	Subscores   []Subscore
}

// FormatScore renders a score with one decimal, so 6 prints as "6.0".
func FormatScore(score float32) string {
	return fmt.Sprintf("%.1f", score)
}
