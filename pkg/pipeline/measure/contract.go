package measure

import "time"

// Measure collects the outcome of every step.
type Measure interface {
	// Observe records one finished step. err is the step error, if any.
	Observe(stepName string, elapsed time.Duration, err error)
	// Durations returns the last observed duration of every step.
	Durations() map[string]time.Duration
	// SetTotalDuration records the duration of the whole run.
	SetTotalDuration(total time.Duration)
	// TotalDuration returns the duration of the whole run.
	TotalDuration() time.Duration
}
