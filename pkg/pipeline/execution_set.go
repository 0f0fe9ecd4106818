package pipeline

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/efigueira/genre-classification/pkg/pipeline/model"
)

// ExecutionSet is the set of steps selected by main.execute_steps.
type ExecutionSet struct {
	steps map[model.StepID]struct{}
	// Unknown lists the requested names that are not pipeline steps, in the order given.
	Unknown []string
}

// ParseExecutionSet accepts a comma-separated string, as passed on the command line, or a list of strings, as
// written in the configuration file. Any other type is rejected.
func ParseExecutionSet(value any) (*ExecutionSet, error) {
	var names []string

	switch val := value.(type) {
	case string:
		names = strings.Split(val, ",")
	case []string:
		names = val
	case []any:
		names = make([]string, 0, len(val))

		for i, item := range val {
			name, ok := item.(string)
			if !ok {
				return nil, errors.Wrapf(ErrInvalidExecuteSteps, "item %d is %T", i, item)
			}

			names = append(names, name)
		}
	default:
		return nil, errors.Wrapf(ErrInvalidExecuteSteps, "got %T", value)
	}

	set := &ExecutionSet{steps: make(map[model.StepID]struct{}, len(names))}

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		id := model.StepID(name)
		if !id.Known() {
			set.Unknown = append(set.Unknown, name)
			continue
		}

		set.steps[id] = struct{}{}
	}

	return set, nil
}

// Contains reports whether the step was requested.
func (s *ExecutionSet) Contains(id model.StepID) bool {
	_, ok := s.steps[id]
	return ok
}

// Len returns the number of known steps requested.
func (s *ExecutionSet) Len() int {
	return len(s.steps)
}
