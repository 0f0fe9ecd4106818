package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile = "config.yaml"

	EnvConfigFile   = "GENRE_CONFIG"
	EnvExecuteSteps = "GENRE_EXECUTE_STEPS"
)

// Loader loads a Config. Precedence: file -> environment -> command-line overrides.
type Loader struct {
	configPath string
	pathSet    bool
	overrides  []string
	lookupEnv  func(string) (string, bool)
}

// NewLoader creates a loader reading DefaultConfigFile and the process environment.
func NewLoader() *Loader {
	return &Loader{
		configPath: DefaultConfigFile,
		lookupEnv:  os.LookupEnv,
	}
}

// WithConfigPath sets the configuration file. It takes precedence over GENRE_CONFIG.
func (l *Loader) WithConfigPath(path string) *Loader {
	if path != "" {
		l.configPath = path
		l.pathSet = true
	}

	return l
}

// WithOverrides appends dotted key=value overrides.
func (l *Loader) WithOverrides(overrides ...string) *Loader {
	l.overrides = append(l.overrides, overrides...)
	return l
}

// WithEnvLookup replaces the environment lookup function.
func (l *Loader) WithEnvLookup(fn func(string) (string, bool)) *Loader {
	l.lookupEnv = fn
	return l
}

// Path returns the configuration file Load will read.
func (l *Loader) Path() string {
	if !l.pathSet {
		if v, ok := l.lookupEnv(EnvConfigFile); ok && v != "" {
			return v
		}
	}

	return l.configPath
}

// Load reads, overrides, decodes and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	path := l.Path()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read config file %s", path)
	}

	overrides := make([]string, 0, len(l.overrides)+1)
	if v, ok := l.lookupEnv(EnvExecuteSteps); ok && v != "" {
		overrides = append(overrides, "++main.execute_steps="+v)
	}

	overrides = append(overrides, l.overrides...)

	cfg, err := Parse(data, overrides...)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to load config file %s", path)
	}

	return cfg, nil
}

// Parse builds a Config from YAML data and applies the overrides in order.
func Parse(data []byte, overrides ...string) (*Config, error) {
	root := &yaml.Node{}

	err := yaml.Unmarshal(data, root)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse yaml")
	}

	if root.Kind == 0 {
		root = &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}

	if mapping(root).Kind != yaml.MappingNode {
		return nil, errors.Wrap(ErrInvalidConfig, "top level must be a mapping")
	}

	for _, raw := range overrides {
		ovr, err := parseOverride(raw)
		if err != nil {
			return nil, err
		}

		err = ovr.apply(root)
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{}

	err = root.Decode(cfg)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidConfig, err.Error())
	}

	cfg.root = root
	cfg.applyDefaults()

	err = cfg.validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
