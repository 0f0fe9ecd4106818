package pipeline

import "github.com/efigueira/genre-classification/internal/config"

const (
	EnvTrackingProject  = "WANDB_PROJECT"
	EnvTrackingRunGroup = "WANDB_RUN_GROUP"
)

// Tracking identifies where the experiment tracker groups the runs of the steps.
// It is handed to every step through its environment; the driver's own environment is left untouched.
type Tracking struct {
	Project  string
	RunGroup string
}

// TrackingFromConfig groups runs under main.project_name and main.experiment_name.
func TrackingFromConfig(cfg *config.Config) Tracking {
	return Tracking{
		Project:  cfg.Main.ProjectName,
		RunGroup: cfg.Main.ExperimentName,
	}
}

// Env returns the variables read by the experiment tracker.
func (t Tracking) Env() map[string]string {
	return map[string]string{
		EnvTrackingProject:  t.Project,
		EnvTrackingRunGroup: t.RunGroup,
	}
}
