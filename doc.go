// Package hconf generates Hadoop style configuration files from a single
// multi-document YAML file of profiles.
//
// Each YAML document describes one profile. Profile metadata is given either
// as flat dotted keys or as a nested mapping:
//
//	profile.name: prod
//	profile.extends: default
//	core-site:
//	  fs.defaultFS: hdfs://prod-nn:8020
//
//	profile:
//	  name: prod
//	  extends: default
//
// Every other top-level key is a configuration (core-site, hdfs-site, ...)
// whose nested mapping is flattened into dotted property paths. A profile
// without an explicit parent extends the profile named "default".
//
// # Resolution
//
// Inheritance is resolved once per run. A child's configuration receives its
// parent's properties appended after its own, so consumers that apply "last
// write wins" see the parent value last; configurations the child does not
// declare are copied whole. Chains are resolved in topological order, and a
// cycle between profiles aborts the run before anything is written.
//
// # Packages
//
//   - pkg/document: YAML stream decoding into order-preserving mappings
//   - pkg/profile: descriptors, flattening, the registry and the resolver
//   - pkg/format: xml, json, yaml and properties serializers
//   - pkg/sink: directory, stdout, archive, S3 and GCS destinations
//   - pkg/compression: codecs for archive outputs
//   - pkg/config, pkg/logger, pkg/errors, pkg/metrics, pkg/observability:
//     the run configuration and its ambient services
//   - internal/pipeline: one generation run from input to artifacts
//
// # Command Line
//
//	hconf generate cluster.yaml -d hadoop-conf
//	hconf generate cluster.yaml --format json -d s3://configs/cluster
//	hconf profiles cluster.yaml
//	hconf formats
package hconf
