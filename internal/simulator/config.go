package simulator

import (
	"os"
	"time"

	"github.com/agbru/winsatrun/internal/assessment"
	apperrors "github.com/agbru/winsatrun/internal/errors"
)

// Default stage plan, in the order a formal assessment runs them.
var DefaultStages = []string{"Memory", "Processor", "Graphics", "Gaming graphics", "Disk"}

const (
	DefaultTicksPerStage = 4
	DefaultTickInterval  = 250 * time.Millisecond
)

// Config controls the simulated service. The zero Code fields mean "do not
// fail" at that step.
type Config struct {
	// Stages is the plan replayed by every run.
	Stages []string
	// TicksPerStage is the number of progress events emitted per stage.
	TicksPerStage int
	// TickInterval is the delay before each progress event.
	TickInterval time.Duration
	// UnknownTotal reports TotalUnits as zero on every progress event.
	UnknownTotal bool
	// ProbeHardware names stages after the host's memory, processor and disk.
	ProbeHardware bool
	// DiskPath is the volume probed for the Disk stage.
	DiskPath string

	FailInit              bool
	AcquireFailure        apperrors.Code
	StartFailure          apperrors.Code
	RunFailure            apperrors.Code
	RunFailureDescription string
	// FailAtStage, when RunFailure is set, is the zero-based stage after
	// which the run fails. Negative fails before any progress.
	FailAtStage int

	// StoredState is the state of the assessment on record before any run
	// of this service completes. StoredAt is when it ran; zero means the
	// time the service was created.
	StoredState assessment.State
	StoredAt    time.Time
	// QueryFailure fails QueryAssessment with this code.
	QueryFailure apperrors.Code

	// ExtraEventsAfterCompletion makes the service misbehave by delivering
	// one more progress and one more completion after the terminal event.
	ExtraEventsAfterCompletion bool
}

// DefaultConfig returns the default simulation plan.
func DefaultConfig() Config {
	return Config{
		Stages:        append([]string(nil), DefaultStages...),
		TicksPerStage: DefaultTicksPerStage,
		TickInterval:  DefaultTickInterval,
		ProbeHardware: true,
		DiskPath:      os.TempDir(),
		FailAtStage:   -1,
		StoredState:   assessment.StateValid,
	}
}

func (c Config) withDefaults() Config {
	if len(c.Stages) == 0 {
		c.Stages = append([]string(nil), DefaultStages...)
	}
	if c.TicksPerStage <= 0 {
		c.TicksPerStage = 1
	}
	if c.TickInterval < 0 {
		c.TickInterval = 0
	}
	if c.DiskPath == "" {
		c.DiskPath = os.TempDir()
	}
	if c.StoredAt.IsZero() {
		c.StoredAt = time.Now()
	}
	if c.RunFailure != apperrors.SOK && c.RunFailureDescription == "" {
		c.RunFailureDescription = "assessment failed"
	}
	return c
}
