package pipeline

import (
	"go.uber.org/zap"

	"github.com/efigueira/genre-classification/pkg/pipeline/model"
)

// Option configures a Pipeline.
type Option func(p *Pipeline)

// WithLogger sets the logger. The default logger discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithRootDir sets the directory holding one sub-directory per step program.
func WithRootDir(dir string) Option {
	return func(p *Pipeline) {
		p.rootDir = dir
	}
}

// WithWorkDir sets the directory where the model config file is written.
func WithWorkDir(dir string) Option {
	return func(p *Pipeline) {
		p.workDir = dir
	}
}

// WithTracking replaces the tracking identifiers derived from the configuration.
func WithTracking(tracking Tracking) Option {
	return func(p *Pipeline) {
		p.tracking = tracking
	}
}

// WithDryRun logs the invocations without launching them or writing any file.
func WithDryRun() Option {
	return func(p *Pipeline) {
		p.dryRun = true
	}
}

// WithStrictContracts makes contract violations fatal.
func WithStrictContracts() Option {
	return func(p *Pipeline) {
		p.strict = true
	}
}

// WithPipelineOptions registers options notified around every step.
func WithPipelineOptions(opts ...model.PipelineOption) Option {
	return func(p *Pipeline) {
		p.opts = append(p.opts, opts...)
	}
}
