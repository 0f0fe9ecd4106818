package config

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	SectionMain         = "main"
	SectionData         = "data"
	SectionRandomForest = "random_forest_pipeline"

	defaultStratify = "null"
)

var (
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrUnknownSection  = errors.New("unknown configuration section")
	ErrInvalidOverride = errors.New("invalid override")
)

// MainConfig is the main section.
type MainConfig struct {
	ProjectName    string `yaml:"project_name"`
	ExperimentName string `yaml:"experiment_name"`
	// ExecuteSteps is either a comma-separated string or a list; it is parsed by the pipeline.
	ExecuteSteps    any  `yaml:"execute_steps"`
	RandomSeed      int  `yaml:"random_seed"`
	StrictContracts bool `yaml:"strict_contracts"`
}

// DataConfig is the data section.
type DataConfig struct {
	FileURL          string  `yaml:"file_url"`
	ReferenceDataset string  `yaml:"reference_dataset"`
	KSAlpha          float64 `yaml:"ks_alpha"`
	TestSize         float64 `yaml:"test_size"`
	ValSize          float64 `yaml:"val_size"`
	RandomState      int     `yaml:"random_state"`
	Stratify         string  `yaml:"stratify"`
}

// RandomForestConfig is the random_forest_pipeline section. Only export_artifact is interpreted, the rest is
// handed over to the training step untouched.
type RandomForestConfig struct {
	ExportArtifact string         `yaml:"export_artifact"`
	Rest           map[string]any `yaml:",inline"`
}

// Config is the whole pipeline configuration. It is not modified after Load returns.
type Config struct {
	Main                 MainConfig         `yaml:"main"`
	Data                 DataConfig         `yaml:"data"`
	RandomForestPipeline RandomForestConfig `yaml:"random_forest_pipeline"`

	root *yaml.Node
}

// MarshalSection renders a top-level section as YAML, keeping key order and comments as loaded.
func (c *Config) MarshalSection(name string) ([]byte, error) {
	if c.root == nil {
		return nil, errors.Wrap(ErrUnknownSection, name)
	}

	node, _ := lookup(c.root, name)
	if node == nil {
		return nil, errors.Wrap(ErrUnknownSection, name)
	}

	out, err := yaml.Marshal(resolve(node))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to marshal section %s", name)
	}

	return out, nil
}

func (c *Config) applyDefaults() {
	if c.Data.Stratify == "" {
		c.Data.Stratify = defaultStratify
	}

	if c.Data.ValSize == 0 {
		c.Data.ValSize = c.Data.TestSize
	}
}

func (c *Config) validate() error {
	switch {
	case c.Main.ProjectName == "":
		return errors.Wrap(ErrInvalidConfig, "main.project_name must be set")
	case c.Main.ExperimentName == "":
		return errors.Wrap(ErrInvalidConfig, "main.experiment_name must be set")
	}

	return nil
}

// Keys checked by Require.
const (
	KeyFileURL          = "data.file_url"
	KeyReferenceDataset = "data.reference_dataset"
	KeyKSAlpha          = "data.ks_alpha"
	KeyTestSize         = "data.test_size"
	KeyExportArtifact   = "random_forest_pipeline.export_artifact"
)

// Require validates the given keys. Only the steps that run read their keys, so a partial configuration is
// accepted as long as the selected steps find what they need.
func (c *Config) Require(keys ...string) error {
	for _, key := range keys {
		var err error

		switch key {
		case KeyFileURL:
			err = notEmpty(key, c.Data.FileURL)
		case KeyReferenceDataset:
			err = notEmpty(key, c.Data.ReferenceDataset)
		case KeyKSAlpha:
			err = inUnitInterval(key, c.Data.KSAlpha)
		case KeyTestSize:
			err = inUnitInterval(key, c.Data.TestSize)
		case KeyExportArtifact:
			err = notEmpty(key, c.RandomForestPipeline.ExportArtifact)
		default:
			err = errors.Wrapf(ErrInvalidConfig, "no check for key %s", key)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func notEmpty(key, value string) error {
	if value == "" {
		return errors.Wrapf(ErrInvalidConfig, "%s must be set", key)
	}

	return nil
}

func inUnitInterval(key string, value float64) error {
	if value <= 0 || value >= 1 {
		return errors.Wrapf(ErrInvalidConfig, "%s must be in (0, 1), got %v", key, value)
	}

	return nil
}
