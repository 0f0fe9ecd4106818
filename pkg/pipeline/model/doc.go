// Package model provides the data structures shared by the pipeline package and its options.
// It defines the step identifiers, the artifact references passed between steps, the invocation handed to a
// launcher and the hook interface implemented by pipeline options such as the drawer and the measure.
package model
