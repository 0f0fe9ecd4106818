package pipeline

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/efigueira/genre-classification/pkg/pipeline/model"
)

var (
	ErrConfigMustBeSet     = errors.New("config must be set")
	ErrLauncherMustBeSet   = errors.New("launcher must be set")
	ErrInvalidExecuteSteps = errors.New("execute_steps must be a string or a list of strings")
	ErrContractViolation   = errors.New("artifact contract violated")
	ErrNoProducer          = errors.New("no step produces this artifact")
	ErrBackwardDependency  = errors.New("artifact is produced by a later step")
)

// ContractViolation describes an artifact consumed by a step that the table cannot satisfy.
type ContractViolation struct {
	Consumer model.StepID
	Artifact model.ArtifactRef
	// Producer is empty when Err is ErrNoProducer.
	Producer model.StepID
	Err      error
}

func (v ContractViolation) Error() string {
	if v.Producer == "" {
		return fmt.Sprintf("step %s consumes %s: %v", v.Consumer, v.Artifact, v.Err)
	}

	return fmt.Sprintf("step %s consumes %s from %s: %v", v.Consumer, v.Artifact, v.Producer, v.Err)
}

func (v ContractViolation) Unwrap() error {
	return v.Err
}
