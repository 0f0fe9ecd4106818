package launcher

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/efigueira/genre-classification/pkg/pipeline/model"
)

const (
	DefaultBinary = "mlflow"

	maxLineSize = 1024 * 1024
)

// ExitError is returned when a step sub-process exits with a non-zero code.
type ExitError struct {
	Step model.StepID
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("step %s exited with code %d", e.Step, e.Code)
}

// MLflow launches steps with "mlflow run <uri> -e <entry point> -P key=value ...".
type MLflow struct {
	binary    string
	extraArgs []string
	dir       string
	logger    *zap.Logger
	environ   func() []string
}

// Option configures MLflow.
type Option func(m *MLflow)

// WithBinary sets the mlflow executable.
func WithBinary(binary string) Option {
	return func(m *MLflow) {
		m.binary = binary
	}
}

// WithExtraArgs appends arguments after the parameters, e.g. --env-manager=local.
func WithExtraArgs(args ...string) Option {
	return func(m *MLflow) {
		m.extraArgs = append(m.extraArgs, args...)
	}
}

// WithDir sets the working directory of the sub-process.
func WithDir(dir string) Option {
	return func(m *MLflow) {
		m.dir = dir
	}
}

// WithLogger sets the logger receiving the sub-process output.
func WithLogger(logger *zap.Logger) Option {
	return func(m *MLflow) {
		m.logger = logger
	}
}

// WithEnviron sets the base environment of the sub-process. It defaults to os.Environ.
func WithEnviron(environ func() []string) Option {
	return func(m *MLflow) {
		m.environ = environ
	}
}

// NewMLflow creates a launcher calling the mlflow CLI.
func NewMLflow(opts ...Option) *MLflow {
	m := &MLflow{
		binary:  DefaultBinary,
		logger:  zap.NewNop(),
		environ: os.Environ,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Args returns the command line arguments for inv, parameters sorted by name.
func (m *MLflow) Args(inv model.Invocation) []string {
	args := make([]string, 0, 4+2*len(inv.Params)+len(m.extraArgs))
	args = append(args, "run", inv.URI, "-e", inv.EntryPoint)

	for _, key := range inv.Params.Keys() {
		args = append(args, "-P", key+"="+inv.Params[key])
	}

	return append(args, m.extraArgs...)
}

// Launch runs the step and waits for it to exit.
func (m *MLflow) Launch(ctx context.Context, inv model.Invocation) error {
	cmd := exec.CommandContext(ctx, m.binary, m.Args(inv)...) //nolint:gosec // binary comes from the operator
	cmd.Dir = m.dir
	cmd.Env = append(m.environ(), inv.EnvList()...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.Wrap(err, "unable to create stdout pipe")
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return errors.Wrap(err, "unable to create stderr pipe")
	}

	err = cmd.Start()
	if err != nil {
		return errors.Wrapf(err, "unable to start %s", m.binary)
	}

	logger := m.logger.With(zap.Stringer("step", inv.Step))

	// Both pipes must be drained before Wait closes them.
	grp := errgroup.Group{}
	grp.Go(func() error {
		return pump(stdout, logger.With(zap.String("stream", "stdout")))
	})
	grp.Go(func() error {
		return pump(stderr, logger.With(zap.String("stream", "stderr")))
	})

	pumpErr := grp.Wait()

	err = cmd.Wait()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
			return &ExitError{Step: inv.Step, Code: exitErr.ExitCode()}
		}

		return errors.Wrapf(err, "step %s did not complete", inv.Step)
	}

	return errors.Wrap(pumpErr, "unable to read step output")
}

func pump(rdr io.Reader, logger *zap.Logger) error {
	scanner := bufio.NewScanner(rdr)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		logger.Info(scanner.Text())
	}

	return errors.Wrap(scanner.Err(), "unable to scan output")
}
