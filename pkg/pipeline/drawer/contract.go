package drawer

import (
	"time"

	"github.com/efigueira/genre-classification/pkg/pipeline/measure"
)

// Drawer is an interface that defines the methods for drawing a pipeline.
type Drawer interface {
	// AddStep adds a step to the pipeline drawer.
	AddStep(stepName string) error
	// AddLink adds an execution order link between two steps.
	AddLink(parentStepName, childStepName string) error
	// AddArtifact adds an artifact passed from producer to consumer.
	AddArtifact(producerStepName, consumerStepName, artifact string) error
	// SetFailed marks a step as failed.
	SetFailed(stepName string) error
	// SetTotalTime sets the total time for the step.
	SetTotalTime(stepName string, total time.Duration) error
	// AddMeasure adds a measure to the pipeline drawer.
	AddMeasure(measure measure.Measure) error
	// Draw creates a file with the pipeline graph.
	Draw() error
}
