package pipeline_test

import (
	"fmt"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/efigueira/genre-classification/internal/config"
	"github.com/efigueira/genre-classification/pkg/pipeline/model"
)

const testConfig = `main:
  project_name: genre_classification
  experiment_name: dev
  execute_steps: [download, preprocess, check_data, segregate, random_forest, evaluate]
  random_seed: 42
data:
  file_url: "https://example.com/genres_mod.parquet"
  reference_dataset: "genre_classification_prod/data_test.csv:latest"
  ks_alpha: 0.05
  test_size: 0.3
  val_size: 0.3
  random_state: 58
  stratify: genre
random_forest_pipeline:
  random_forest:
    n_estimators: 100
    max_depth: 13
  features:
    numerical: [danceability, energy]
  export_artifact: model_export
`

const minimalConfig = `main:
  project_name: genre_classification
  experiment_name: dev
  execute_steps: download
data:
  file_url: "https://example.com/genres_mod.parquet"
`

func loadConfig(t require.TestingT, overrides ...string) *config.Config {
	cfg, err := config.Parse([]byte(testConfig), overrides...)
	require.NoError(t, err)

	return cfg
}

// recordingOption records the hooks called by the pipeline.
type recordingOption struct {
	calls     []string
	artifacts []string
	finishErr error
}

func (r *recordingOption) New() error {
	r.calls = append(r.calls, "new")
	return nil
}

func (r *recordingOption) PrepareStep(parentStep, step *model.StepInfo) error {
	r.calls = append(r.calls, fmt.Sprintf("prepare %s->%s", parentStep.Name(), step.Name()))
	return nil
}

func (r *recordingOption) PrepareArtifact(producer, consumer *model.StepInfo, artifact model.ArtifactRef) error {
	r.artifacts = append(r.artifacts, fmt.Sprintf("%s->%s %s", producer.Name(), consumer.Name(), artifact))
	return nil
}

func (r *recordingOption) AfterStep(step *model.StepInfo, _ time.Duration, stepErr error) error {
	status := "ok"
	if stepErr != nil {
		status = "failed"
	}

	r.calls = append(r.calls, fmt.Sprintf("after %s %s", step.Name(), status))

	return nil
}

func (r *recordingOption) Finish() error {
	r.calls = append(r.calls, "finish")
	return r.finishErr
}
