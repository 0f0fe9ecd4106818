package measure_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efigueira/genre-classification/pkg/pipeline/measure"
	"github.com/efigueira/genre-classification/pkg/pipeline/model"
)

func TestPrometheusMeasure(t *testing.T) {
	t.Parallel()

	msr, err := measure.NewPrometheusMeasure()
	require.NoError(t, err)

	msr.Observe("download", 1500*time.Millisecond, nil)
	msr.Observe("evaluate", 20*time.Millisecond, assert.AnError)

	assert.Equal(t, map[string]time.Duration{
		"download": 2 * time.Second,
		"evaluate": 20 * time.Millisecond,
	}, msr.Durations())

	count, err := testutil.GatherAndCount(msr.Registry(), "genre_pipeline_step_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = testutil.GatherAndCount(msr.Registry(), "genre_pipeline_step_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	msr.SetTotalDuration(3 * time.Second)
	assert.Equal(t, 3*time.Second, msr.TotalDuration())
}

func TestPipelineMeasure(t *testing.T) {
	t.Parallel()

	msr, err := measure.NewPrometheusMeasure()
	require.NoError(t, err)

	textfile := filepath.Join(t.TempDir(), "pipeline.prom")
	opt := measure.PipelineMeasure(msr, textfile)

	step := &model.StepInfo{ID: model.Segregate}

	require.NoError(t, opt.New())
	require.NoError(t, opt.PrepareStep(model.StartStep, step))
	require.NoError(t, opt.AfterStep(step, time.Second, nil))
	require.NoError(t, opt.Finish())

	assert.Contains(t, msr.Durations(), "segregate")

	data, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `genre_pipeline_step_runs_total{status="success",step="segregate"} 1`)
	assert.Contains(t, string(data), "genre_pipeline_run_duration_seconds")
}
