package drawer_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efigueira/genre-classification/pkg/pipeline/drawer"
	"github.com/efigueira/genre-classification/pkg/pipeline/measure"
	"github.com/efigueira/genre-classification/pkg/pipeline/model"
)

func TestDOTDrawer(t *testing.T) {
	t.Parallel()

	fileName := filepath.Join(t.TempDir(), "pipeline.dot")
	drw := drawer.NewDOTDrawer(fileName)

	require.NoError(t, drw.AddStep("download"))
	require.NoError(t, drw.AddStep("preprocess"))
	require.NoError(t, drw.AddStep("evaluate"))
	require.Error(t, drw.AddStep("download"))

	require.NoError(t, drw.AddLink("download", "preprocess"))
	require.NoError(t, drw.AddLink("preprocess", "evaluate"))
	require.Error(t, drw.AddLink("download", "unknown"))

	require.NoError(t, drw.AddArtifact("download", "preprocess", "raw_data.parquet"))
	require.NoError(t, drw.AddArtifact("download", "evaluate", "other.csv:latest"))
	require.NoError(t, drw.SetFailed("evaluate"))
	require.Error(t, drw.SetFailed("unknown"))

	require.NoError(t, drw.Draw())

	data, err := os.ReadFile(fileName)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "strict digraph")
	assert.Contains(t, content, `"download" -> "preprocess" [ label="raw_data.parquet",`)
	assert.Contains(t, content, `"download" -> "evaluate"`)
	assert.Contains(t, content, `style="dashed"`)
	assert.Contains(t, content, `color="red"`)
}

func TestDOTDrawerMeasure(t *testing.T) {
	t.Parallel()

	fileName := filepath.Join(t.TempDir(), "pipeline.dot")
	drw := drawer.NewDOTDrawer(fileName)

	require.NoError(t, drw.AddStep("download"))
	require.NoError(t, drw.AddStep("segregate"))

	msr, err := measure.NewPrometheusMeasure()
	require.NoError(t, err)
	msr.Observe("download", 10*time.Second, nil)
	msr.Observe("segregate", time.Second, nil)

	require.NoError(t, drw.AddMeasure(msr))
	require.NoError(t, drw.Draw())

	data, err := os.ReadFile(fileName)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, `<download <BR /> <FONT POINT-SIZE="12">10s</FONT>>`)
	assert.Contains(t, content, `<segregate <BR /> <FONT POINT-SIZE="12">1s</FONT>>`)
	assert.Equal(t, 2, strings.Count(content, `color="#`))
}

func TestPipelineDrawer(t *testing.T) {
	t.Parallel()

	fileName := filepath.Join(t.TempDir(), "pipeline.dot")
	opt := drawer.PipelineDrawer(drawer.NewDOTDrawer(fileName), nil)

	download := &model.StepInfo{ID: model.Download}
	preprocess := &model.StepInfo{ID: model.Preprocess}

	require.NoError(t, opt.New())
	require.NoError(t, opt.PrepareStep(model.StartStep, download))
	require.NoError(t, opt.PrepareStep(download, preprocess))
	require.NoError(t, opt.PrepareArtifact(download, preprocess, model.Exact("raw_data.parquet")))
	require.NoError(t, opt.AfterStep(download, time.Second, nil))
	require.NoError(t, opt.AfterStep(preprocess, time.Second, assert.AnError))
	require.NoError(t, opt.Finish())

	data, err := os.ReadFile(fileName)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, `"start" -> "download"`)
	assert.Contains(t, content, `"preprocess" -> "end"`)
	assert.Contains(t, content, `label="raw_data.parquet"`)
	assert.Contains(t, content, `color="red", penwidth="2", shape="box",`)
	assert.Less(t, strings.Index(content, `"start" -> "download"`), strings.Index(content, `"download" -> "preprocess"`))
	assert.Less(t, strings.Index(content, `"download" -> "preprocess"`), strings.Index(content, `"preprocess" -> "end"`))
}
