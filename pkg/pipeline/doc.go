// Package pipeline runs the genre classification steps.
//
// The steps are declared once, in an ordered table: download, preprocess, check_data, segregate, random_forest and
// evaluate. Each entry names the artifacts the step consumes and produces and knows how to build the parameters of
// its sub-process from the configuration. A run walks the table exactly once and launches every step listed in
// main.execute_steps, so the execution order never depends on the order given in the configuration.
//
// Steps run one after the other. The first failing step stops the pipeline and its error is returned; nothing is
// retried and artifacts already produced are left in place.
//
// The declared inputs and outputs form a dependency graph. CheckContracts walks it and reports every consumed
// artifact that no step produces, which makes naming mismatches between steps visible before anything runs.
//
// Pipeline options, such as the drawer and the measure, are notified before and after each step.
package pipeline
