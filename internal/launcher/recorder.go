package launcher

import (
	"context"
	"sync"

	"github.com/efigueira/genre-classification/pkg/pipeline/model"
)

// Recorder records invocations instead of starting processes.
type Recorder struct {
	mu          sync.Mutex
	invocations []model.Invocation
	failures    map[model.StepID]error
	onLaunch    func(inv model.Invocation)
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		failures: make(map[model.StepID]error),
	}
}

// FailOn makes every launch of step return err.
func (r *Recorder) FailOn(step model.StepID, err error) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.failures[step] = err

	return r
}

// OnLaunch registers a function called with each invocation before it is recorded.
func (r *Recorder) OnLaunch(fn func(inv model.Invocation)) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.onLaunch = fn

	return r
}

// Launch records inv.
func (r *Recorder) Launch(_ context.Context, inv model.Invocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.onLaunch != nil {
		r.onLaunch(inv)
	}

	r.invocations = append(r.invocations, inv)

	return r.failures[inv.Step]
}

// Invocations returns a copy of the recorded invocations.
func (r *Recorder) Invocations() []model.Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := make([]model.Invocation, len(r.invocations))
	copy(res, r.invocations)

	return res
}

// Steps returns the recorded step identifiers in launch order.
func (r *Recorder) Steps() []model.StepID {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := make([]model.StepID, 0, len(r.invocations))
	for _, inv := range r.invocations {
		res = append(res, inv.Step)
	}

	return res
}
