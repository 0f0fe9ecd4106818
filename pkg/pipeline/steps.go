package pipeline

import (
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/efigueira/genre-classification/internal/config"
	"github.com/efigueira/genre-classification/pkg/pipeline/model"
)

const (
	// EntryPoint is the entry point every step program exposes.
	EntryPoint = "main"
	// ModelConfigFile receives the random_forest_pipeline section before the random_forest step runs.
	ModelConfigFile = "random_forest_config.yml"

	RawDataArtifact       = "raw_data.parquet"
	ProcessedDataArtifact = "processed_data.csv"
	// SegregateInputArtifact is what segregate asks for. It differs from ProcessedDataArtifact and is reported by
	// CheckContracts.
	SegregateInputArtifact = "preprocessed_data.csv"
	SplitArtifactRoot      = "data"
	TrainDataArtifact      = SplitArtifactRoot + "_train.csv"
	TestDataArtifact       = SplitArtifactRoot + "_test.csv"
)

// stepEnv is what parameter builders and prepare hooks may read.
type stepEnv struct {
	cfg             *config.Config
	modelConfigPath string
}

// stepDef is one row of the step table.
type stepDef struct {
	id      model.StepID
	inputs  func(cfg *config.Config) []model.ArtifactRef
	outputs func(cfg *config.Config) []string
	params  func(env stepEnv, inputs []model.ArtifactRef) model.Params
	// requires lists the configuration keys validated when the step is selected.
	requires []string
	// prepare runs right before the step is launched.
	prepare func(env stepEnv) error
}

func noArtifacts(*config.Config) []model.ArtifactRef { return nil }

func noOutputs(*config.Config) []string { return nil }

// steps is the step table, in canonical execution order.
func steps() []stepDef {
	return []stepDef{
		{
			id:       model.Download,
			requires: []string{config.KeyFileURL},
			inputs:   noArtifacts,
			outputs:  func(*config.Config) []string { return []string{RawDataArtifact} },
			params: func(env stepEnv, _ []model.ArtifactRef) model.Params {
				return model.Params{
					"file_url":             env.cfg.Data.FileURL,
					"artifact_name":        RawDataArtifact,
					"artifact_type":        "raw_data",
					"artifact_description": "Data as downloaded",
				}
			},
		},
		{
			id: model.Preprocess,
			inputs: func(*config.Config) []model.ArtifactRef {
				return []model.ArtifactRef{model.Exact(RawDataArtifact)}
			},
			outputs: func(*config.Config) []string { return []string{ProcessedDataArtifact} },
			params: func(_ stepEnv, in []model.ArtifactRef) model.Params {
				return model.Params{
					"input_artifact":       in[0].String(),
					"artifact_name":        ProcessedDataArtifact,
					"artifact_type":        "processed_data",
					"artifact_description": "Data with preprocessing applied",
				}
			},
		},
		{
			id:       model.CheckData,
			requires: []string{config.KeyReferenceDataset, config.KeyKSAlpha},
			inputs: func(cfg *config.Config) []model.ArtifactRef {
				reference := model.ParseArtifactRef(cfg.Data.ReferenceDataset)
				reference.External = true

				return []model.ArtifactRef{reference, model.Latest(ProcessedDataArtifact)}
			},
			outputs: noOutputs,
			params: func(env stepEnv, in []model.ArtifactRef) model.Params {
				return model.Params{
					"reference_artifact": env.cfg.Data.ReferenceDataset,
					"sample_artifact":    in[1].String(),
					"ks_alpha":           formatFloat(env.cfg.Data.KSAlpha),
				}
			},
		},
		{
			id:       model.Segregate,
			requires: []string{config.KeyTestSize},
			inputs: func(*config.Config) []model.ArtifactRef {
				return []model.ArtifactRef{model.Latest(SegregateInputArtifact)}
			},
			outputs: func(*config.Config) []string { return []string{TrainDataArtifact, TestDataArtifact} },
			params: func(env stepEnv, in []model.ArtifactRef) model.Params {
				return model.Params{
					"input_artifact": in[0].String(),
					"artifact_root":  SplitArtifactRoot,
					"artifact_type":  "segregated_data",
					"test_size":      formatFloat(env.cfg.Data.TestSize),
					"random_state":   strconv.Itoa(env.cfg.Data.RandomState),
					"stratify":       env.cfg.Data.Stratify,
				}
			},
		},
		{
			id:       model.RandomForest,
			requires: []string{config.KeyTestSize, config.KeyExportArtifact},
			inputs: func(*config.Config) []model.ArtifactRef {
				return []model.ArtifactRef{model.Latest(TrainDataArtifact)}
			},
			outputs: func(cfg *config.Config) []string {
				return []string{cfg.RandomForestPipeline.ExportArtifact}
			},
			params: func(env stepEnv, in []model.ArtifactRef) model.Params {
				return model.Params{
					"train_data":      in[0].String(),
					"model_config":    env.modelConfigPath,
					"export_artifact": env.cfg.RandomForestPipeline.ExportArtifact,
					"random_seed":     strconv.Itoa(env.cfg.Main.RandomSeed),
					"val_size":        formatFloat(env.cfg.Data.TestSize),
					"stratify":        env.cfg.Data.Stratify,
				}
			},
			prepare: writeModelConfig,
		},
		{
			id:       model.Evaluate,
			requires: []string{config.KeyExportArtifact},
			inputs: func(cfg *config.Config) []model.ArtifactRef {
				return []model.ArtifactRef{
					model.Latest(cfg.RandomForestPipeline.ExportArtifact),
					model.Latest(TestDataArtifact),
				}
			},
			outputs: noOutputs,
			params: func(_ stepEnv, in []model.ArtifactRef) model.Params {
				return model.Params{
					"model_export": in[0].String(),
					"test_data":    in[1].String(),
				}
			},
		},
	}
}

// writeModelConfig dumps the random_forest_pipeline section because the training step reads its
// hyperparameters from a file.
func writeModelConfig(env stepEnv) error {
	data, err := env.cfg.MarshalSection(config.SectionRandomForest)
	if err != nil {
		return errors.Wrap(err, "unable to serialise model config")
	}

	err = os.WriteFile(env.modelConfigPath, data, 0o644) //nolint:gosec // read by the step sub-process
	if err != nil {
		return errors.Wrapf(err, "unable to write model config %s", env.modelConfigPath)
	}

	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
