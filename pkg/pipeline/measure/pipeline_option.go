package measure

import (
	"time"

	"github.com/pkg/errors"

	"github.com/efigueira/genre-classification/pkg/pipeline/model"
)

type textfileWriter interface {
	WriteToTextfile(path string) error
}

type pipelineMeasure struct {
	Measure
	textfile  string
	startTime time.Time
}

func (pm *pipelineMeasure) New() error {
	pm.startTime = time.Now()
	return nil
}

func (pm *pipelineMeasure) PrepareStep(_, _ *model.StepInfo) error {
	return nil
}

func (pm *pipelineMeasure) PrepareArtifact(_, _ *model.StepInfo, _ model.ArtifactRef) error {
	return nil
}

func (pm *pipelineMeasure) AfterStep(step *model.StepInfo, duration time.Duration, stepErr error) error {
	pm.Observe(step.Name(), duration, stepErr)
	return nil
}

func (pm *pipelineMeasure) Finish() error {
	pm.SetTotalDuration(time.Since(pm.startTime))

	if pm.textfile == "" {
		return nil
	}

	writer, ok := pm.Measure.(textfileWriter)
	if !ok {
		return nil
	}

	err := writer.WriteToTextfile(pm.textfile)
	if err != nil {
		return errors.Wrap(err, "unable to export metrics")
	}

	return nil
}

// PipelineMeasure records every step of a run in measure. When textfile is set and the measure supports it, the
// metrics are written there once the run finishes.
func PipelineMeasure(measure Measure, textfile string) model.PipelineOption {
	return &pipelineMeasure{Measure: measure, textfile: textfile}
}
