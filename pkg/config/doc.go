// Package config also documents how a run configuration file looks.
//
// # Configuration File
//
// Every field of RunConfig may be given in a YAML file passed with --config.
// ${VAR_NAME} references are expanded from the environment before parsing:
//
//	input:
//	  path: cluster.yaml
//	  expand_env: true
//	output:
//	  location: s3://${CONFIG_BUCKET}/hadoop
//	  format: xml
//	resolution:
//	  mode: topological
//	observability:
//	  log_level: debug
//	  metrics_file: /var/lib/node_exporter/hconf.prom
//
// # Precedence
//
// The CLI layers values in this order, later sources winning:
//
//  1. NewRunConfig defaults
//  2. the --config file (Load)
//  3. HCONF_* environment variables, e.g. HCONF_OUTPUT_FORMAT=json
//  4. explicit command line flags
//
// Validate is called once all layers are applied.
package config
