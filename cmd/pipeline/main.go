// Command pipeline runs the genre classification steps selected in the configuration.
//
// Usage:
//
//	pipeline [flags] [key=value ...]
//
// Arguments are configuration overrides such as main.execute_steps=download,evaluate. Flags must come before
// them.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/efigueira/genre-classification/internal/config"
	"github.com/efigueira/genre-classification/internal/launcher"
	"github.com/efigueira/genre-classification/pkg/pipeline"
	"github.com/efigueira/genre-classification/pkg/pipeline/drawer"
	"github.com/efigueira/genre-classification/pkg/pipeline/measure"
)

// exitError carries the process exit code of a failed run.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

type options struct {
	configPath  string
	rootDir     string
	workDir     string
	logLevel    string
	logFormat   string
	dryRun      bool
	strict      bool
	drawFile    string
	metricsFile string
	mlflow      string
	mlflowArgs  string
	overrides   []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}

		os.Exit(1)
	}
}

func parseFlags(args []string, output io.Writer) (*options, error) {
	opts := &options{}

	flagSet := flag.NewFlagSet("pipeline", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, "Usage:\n  pipeline [flags] [key=value ...]\n\n"+
			"Flags must come before the overrides.\n\nFlags:\n")
		flagSet.PrintDefaults()
	}

	flagSet.StringVar(&opts.configPath, "config", "", "Configuration file (default $"+config.EnvConfigFile+" or "+
		config.DefaultConfigFile+").")
	flagSet.StringVar(&opts.rootDir, "root", ".", "Directory holding one sub-directory per step.")
	flagSet.StringVar(&opts.workDir, "workdir", ".", "Directory where the model config file is written.")
	flagSet.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn or error.")
	flagSet.StringVar(&opts.logFormat, "log-format", "console", "Log format: console or json.")
	flagSet.BoolVar(&opts.dryRun, "dry-run", false, "Print the step commands without running them.")
	flagSet.BoolVar(&opts.strict, "strict", false, "Fail when an artifact contract is violated.")
	flagSet.StringVar(&opts.drawFile, "draw", "", "Write the executed steps as a DOT graph to this file.")
	flagSet.StringVar(&opts.metricsFile, "metrics-file", "", "Write step metrics in prometheus text format to this file.")
	flagSet.StringVar(&opts.mlflow, "mlflow", launcher.DefaultBinary, "mlflow executable.")
	flagSet.StringVar(&opts.mlflowArgs, "mlflow-args", "", "Extra arguments appended to every mlflow run, space separated.")

	err := flagSet.Parse(args)
	if err != nil {
		return nil, err
	}

	if opts.logFormat != "console" && opts.logFormat != "json" {
		return nil, errors.Errorf("invalid log-format %q: must be console or json", opts.logFormat)
	}

	for _, arg := range flagSet.Args() {
		if strings.HasPrefix(arg, "-") {
			return nil, errors.Errorf("flag %s found after the overrides: flags must come first", arg)
		}
	}

	opts.overrides = flagSet.Args()

	return opts, nil
}

func newLogger(level, format string, output io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "invalid log-level")
	}

	var encoder zapcore.Encoder

	if format == "json" {
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(output), lvl)

	return zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func run(ctx context.Context, outW, errW io.Writer, args []string) error {
	opts, err := parseFlags(args, errW)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}

	if err != nil {
		return &exitError{code: 2, err: err}
	}

	logger, err := newLogger(opts.logLevel, opts.logFormat, errW)
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	defer logger.Sync() //nolint:errcheck

	logger = logger.With(zap.String("run_id", uuid.NewString()))

	loader := config.NewLoader().WithConfigPath(opts.configPath).WithOverrides(opts.overrides...)

	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	logger.Debug("configuration loaded", zap.String("path", loader.Path()))

	mlflow := launcher.NewMLflow(
		launcher.WithBinary(opts.mlflow),
		launcher.WithExtraArgs(strings.Fields(opts.mlflowArgs)...),
		launcher.WithLogger(logger),
	)

	pipeOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithRootDir(opts.rootDir),
		pipeline.WithWorkDir(opts.workDir),
	}

	if opts.strict {
		pipeOpts = append(pipeOpts, pipeline.WithStrictContracts())
	}

	var stepLauncher pipeline.Launcher = mlflow
	if opts.dryRun {
		stepLauncher = nil

		pipeOpts = append(pipeOpts, pipeline.WithDryRun())
	}

	var msr measure.Measure

	if opts.metricsFile != "" || opts.drawFile != "" {
		prom, err := measure.NewPrometheusMeasure()
		if err != nil {
			return err
		}

		msr = prom
		pipeOpts = append(pipeOpts, pipeline.WithPipelineOptions(measure.PipelineMeasure(prom, opts.metricsFile)))
	}

	if opts.drawFile != "" {
		pipeOpts = append(pipeOpts,
			pipeline.WithPipelineOptions(drawer.PipelineDrawer(drawer.NewDOTDrawer(opts.drawFile), msr)))
	}

	pipe, err := pipeline.New(cfg, stepLauncher, pipeOpts...)
	if err != nil {
		return err
	}

	if opts.dryRun {
		plan, err := pipe.Plan()
		if err != nil {
			return err
		}

		for _, inv := range plan {
			fmt.Fprintf(outW, "%s %s\n", opts.mlflow, strings.Join(mlflow.Args(inv), " "))
		}
	}

	return pipe.Run(ctx)
}
