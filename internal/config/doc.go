// Package config loads the pipeline configuration.
//
// The configuration is a YAML document with three sections:
//
//	main:
//	  project_name: genre_classification
//	  experiment_name: dev
//	  execute_steps: [download, preprocess, check_data, segregate, random_forest, evaluate]
//	  random_seed: 42
//	data:
//	  file_url: https://example.com/genres_mod.parquet
//	  reference_dataset: genre_classification_prod/data_test.csv:latest
//	  ks_alpha: 0.05
//	  test_size: 0.3
//	  val_size: 0.3
//	  random_state: 58
//	  stratify: genre
//	random_forest_pipeline:
//	  random_forest: {n_estimators: 100, max_depth: 13}
//	  export_artifact: model_export
//
// Values are layered: file, then GENRE_* environment variables, then dotted key=value overrides, e.g.
// main.execute_steps=download,evaluate. Keys must exist unless the override is prefixed with a plus sign.
package config
