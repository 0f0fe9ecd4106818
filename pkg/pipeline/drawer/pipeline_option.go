package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/efigueira/genre-classification/pkg/pipeline/measure"
	"github.com/efigueira/genre-classification/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
	m         measure.Measure
	startTime time.Time
	last      *model.StepInfo
}

func (pd *pipelineDrawer) New() error {
	err := pd.AddStep(model.StartStep.Name())
	if err != nil {
		return errors.Wrap(err, "unable to add start step to drawer")
	}

	err = pd.AddStep(model.EndStep.Name())
	if err != nil {
		return errors.Wrap(err, "unable to add end step to drawer")
	}

	pd.last = model.StartStep

	return nil
}

func (pd *pipelineDrawer) PrepareStep(parentStep, step *model.StepInfo) error {
	err := pd.AddStep(step.Name())
	if err != nil {
		return err
	}

	err = pd.AddLink(parentStep.Name(), step.Name())
	if err != nil {
		return err
	}

	pd.last = step

	return nil
}

func (pd *pipelineDrawer) PrepareArtifact(producer, consumer *model.StepInfo, artifact model.ArtifactRef) error {
	return pd.AddArtifact(producer.Name(), consumer.Name(), artifact.String())
}

func (pd *pipelineDrawer) AfterStep(step *model.StepInfo, _ time.Duration, stepErr error) error {
	if stepErr == nil {
		return nil
	}

	return pd.SetFailed(step.Name())
}

func (pd *pipelineDrawer) Finish() error {
	err := pd.AddLink(pd.last.Name(), model.EndStep.Name())
	if err != nil {
		return errors.Wrap(err, "unable to link last step to end")
	}

	err = pd.SetTotalTime(model.EndStep.Name(), time.Since(pd.startTime).Round(time.Millisecond))
	if err != nil {
		return errors.Wrap(err, "unable to set total time")
	}

	if pd.m != nil {
		err = pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err = pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// PipelineDrawer draws the executed steps once the run finishes. measure may be nil.
func PipelineDrawer(drawer Drawer, measure measure.Measure) model.PipelineOption {
	return &pipelineDrawer{Drawer: drawer, m: measure, startTime: time.Now()}
}
