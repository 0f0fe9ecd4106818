package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/efigueira/genre-classification/internal/config"
	"github.com/efigueira/genre-classification/pkg/pipeline/model"
)

// Launcher starts a step sub-process and waits for it to finish.
type Launcher interface {
	Launch(ctx context.Context, inv model.Invocation) error
}

// Pipeline runs the steps selected in the configuration.
type Pipeline struct {
	cfg      *config.Config
	launcher Launcher
	steps    []stepDef
	opts     []model.PipelineOption
	logger   *zap.Logger
	tracking Tracking
	rootDir  string
	workDir  string
	dryRun   bool
	strict   bool

	modelConfigPath string
}

// New creates a new pipeline. The launcher may be nil for a dry run.
func New(cfg *config.Config, launcher Launcher, options ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, ErrConfigMustBeSet
	}

	pipe := &Pipeline{
		cfg:      cfg,
		launcher: launcher,
		steps:    steps(),
		logger:   zap.NewNop(),
		tracking: TrackingFromConfig(cfg),
		rootDir:  ".",
		workDir:  ".",
		strict:   cfg.Main.StrictContracts,
	}

	for _, option := range options {
		option(pipe)
	}

	if pipe.launcher == nil && !pipe.dryRun {
		return nil, ErrLauncherMustBeSet
	}

	modelConfigPath, err := filepath.Abs(filepath.Join(pipe.workDir, ModelConfigFile))
	if err != nil {
		return nil, errors.Wrap(err, "unable to resolve model config path")
	}

	pipe.modelConfigPath = modelConfigPath

	for _, opt := range pipe.opts {
		err := opt.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	return pipe, nil
}

// ModelConfigPath returns the absolute path of the file written before the random_forest step.
func (p *Pipeline) ModelConfigPath() string {
	return p.modelConfigPath
}

func (p *Pipeline) env() stepEnv {
	return stepEnv{cfg: p.cfg, modelConfigPath: p.modelConfigPath}
}

func (p *Pipeline) info(def stepDef) *model.StepInfo {
	return &model.StepInfo{
		ID:         def.id,
		URI:        filepath.Join(p.rootDir, string(def.id)),
		EntryPoint: EntryPoint,
		Inputs:     def.inputs(p.cfg),
		Outputs:    def.outputs(p.cfg),
	}
}

func (p *Pipeline) invocation(info *model.StepInfo, def stepDef) model.Invocation {
	return model.Invocation{
		Step:       def.id,
		URI:        info.URI,
		EntryPoint: info.EntryPoint,
		Params:     def.params(p.env(), info.Inputs),
		Env:        p.tracking.Env(),
	}
}

// selected parses main.execute_steps and returns the table rows to run, in table order. The configuration keys
// of the selected steps are validated here, before anything runs.
func (p *Pipeline) selected() ([]stepDef, error) {
	set, err := ParseExecutionSet(p.cfg.Main.ExecuteSteps)
	if err != nil {
		return nil, err
	}

	for _, name := range set.Unknown {
		p.logger.Warn("ignoring unknown step", zap.String("step", name))
	}

	res := make([]stepDef, 0, set.Len())

	for _, def := range p.steps {
		if !set.Contains(def.id) {
			continue
		}

		err := p.cfg.Require(def.requires...)
		if err != nil {
			return nil, errors.Wrapf(err, "step %s", def.id)
		}

		res = append(res, def)
	}

	return res, nil
}

// Plan returns the invocations a run would perform, in order, without side effects.
func (p *Pipeline) Plan() ([]model.Invocation, error) {
	defs, err := p.selected()
	if err != nil {
		return nil, err
	}

	res := make([]model.Invocation, 0, len(defs))
	for _, def := range defs {
		res = append(res, p.invocation(p.info(def), def))
	}

	return res, nil
}

// Run launches the selected steps one after the other and stops at the first failure.
func (p *Pipeline) Run(ctx context.Context) error {
	defs, err := p.selected()
	if err != nil {
		return err
	}

	deps, err := p.buildDependencies()
	if err != nil {
		return err
	}

	for _, violation := range deps.violations {
		p.logger.Warn("artifact contract violated", zap.Error(violation))
	}

	if p.strict && len(deps.violations) > 0 {
		return errors.Wrapf(ErrContractViolation, "%d violation(s), first: %v", len(deps.violations), deps.violations[0])
	}

	infos := make([]*model.StepInfo, len(defs))
	for i, def := range defs {
		infos[i] = p.info(def)
	}

	err = p.prepareOptions(deps, infos)
	if err != nil {
		return err
	}

	p.logger.Info("starting pipeline",
		zap.Int("steps", len(defs)),
		zap.String("project", p.tracking.Project),
		zap.String("run_group", p.tracking.RunGroup),
		zap.Bool("dry_run", p.dryRun),
	)

	runErr := p.runSteps(ctx, defs, infos)

	err = p.finishRun()
	if runErr != nil {
		if err != nil {
			p.logger.Error("unable to finish pipeline options", zap.Error(err))
		}

		return runErr
	}

	if err != nil {
		return err
	}

	p.logger.Info("pipeline finished")

	return nil
}

func (p *Pipeline) runSteps(ctx context.Context, defs []stepDef, infos []*model.StepInfo) error {
	for i, def := range defs {
		info := infos[i]
		inv := p.invocation(info, def)
		logger := p.logger.With(zap.Stringer("step", def.id), zap.String("uri", inv.URI))

		if p.dryRun {
			logger.Info("dry run", zap.Any("params", inv.Params))
			continue
		}

		if def.prepare != nil {
			err := def.prepare(p.env())
			if err != nil {
				return errors.Wrapf(err, "step %s", def.id)
			}
		}

		logger.Info("launching step", zap.Any("params", inv.Params))

		start := time.Now()
		stepErr := p.launcher.Launch(ctx, inv)
		elapsed := time.Since(start)

		for _, opt := range p.opts {
			err := opt.AfterStep(info, elapsed, stepErr)
			if err != nil {
				return errors.Wrap(err, "unable to run after step function")
			}
		}

		if stepErr != nil {
			logger.Error("step failed", zap.Duration("elapsed", elapsed), zap.Error(stepErr))
			return errors.Wrapf(stepErr, "step %s", def.id)
		}

		logger.Info("step finished", zap.Duration("elapsed", elapsed))
	}

	return nil
}

// prepareOptions announces the selected steps, chained in execution order, and the artifacts they pass to each
// other.
func (p *Pipeline) prepareOptions(deps *dependencies, infos []*model.StepInfo) error {
	if len(p.opts) == 0 {
		return nil
	}

	byID := make(map[model.StepID]*model.StepInfo, len(infos))
	parent := model.StartStep

	for _, info := range infos {
		for _, opt := range p.opts {
			err := opt.PrepareStep(parent, info)
			if err != nil {
				return errors.Wrap(err, "unable to run prepare step function")
			}
		}

		byID[info.ID] = info
		parent = info
	}

	for _, info := range infos {
		upstream, err := deps.upstream(info.ID)
		if err != nil {
			return err
		}

		for _, ho := range upstream {
			producer, ok := byID[ho.producer]
			if !ok {
				continue
			}

			for _, opt := range p.opts {
				err := opt.PrepareArtifact(producer, info, ho.artifact)
				if err != nil {
					return errors.Wrap(err, "unable to run prepare artifact function")
				}
			}
		}
	}

	return nil
}

// finishRun calls Finish on every option, even after one failed, and returns the first error.
func (p *Pipeline) finishRun() error {
	var firstErr error

	for _, opt := range p.opts {
		err := opt.Finish()
		if err == nil {
			continue
		}

		if firstErr != nil {
			p.logger.Error("unable to finish pipeline option", zap.Error(err))
			continue
		}

		firstErr = errors.Wrap(err, "unable to finish pipeline option")
	}

	return firstErr
}
