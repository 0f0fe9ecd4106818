package model

// StepID identifies one of the fixed pipeline steps.
type StepID string

const (
	Download     StepID = "download"
	Preprocess   StepID = "preprocess"
	CheckData    StepID = "check_data"
	Segregate    StepID = "segregate"
	RandomForest StepID = "random_forest"
	Evaluate     StepID = "evaluate"
)

// AllSteps lists every step in canonical execution order.
var AllSteps = []StepID{Download, Preprocess, CheckData, Segregate, RandomForest, Evaluate}

// Known reports whether id is one of AllSteps.
func (id StepID) Known() bool {
	for _, s := range AllSteps {
		if s == id {
			return true
		}
	}

	return false
}

func (id StepID) String() string {
	return string(id)
}

// StepInfo describes a step as seen by pipeline options.
type StepInfo struct {
	ID         StepID
	URI        string
	EntryPoint string
	Inputs     []ArtifactRef
	Outputs    []string
}

// Name returns the display name of the step.
func (s *StepInfo) Name() string {
	return string(s.ID)
}

var (
	StartStep = &StepInfo{ID: "start"}
	EndStep   = &StepInfo{ID: "end"}
)
