package model

import "time"

// PipelineOption defines the interface for pipeline options.
type PipelineOption interface {
	// New initialises the pipeline option.
	New() error
	// PrepareStep runs once for every step that will execute, in execution order.
	// parentStep is the step executed just before, or StartStep.
	PrepareStep(parentStep, step *StepInfo) error
	// PrepareArtifact runs for every artifact passed between two steps that both execute.
	PrepareArtifact(producer, consumer *StepInfo, artifact ArtifactRef) error
	// AfterStep runs after the step sub-process returned, whether it failed or not.
	AfterStep(step *StepInfo, duration time.Duration, stepErr error) error
	// Finish runs after the pipeline is finished.
	Finish() error
}
