// Package launcher starts pipeline steps.
//
// MLflow runs each step through the mlflow CLI, streaming the sub-process output into the logger. Recorder keeps
// the invocations in memory instead of starting anything.
package launcher
