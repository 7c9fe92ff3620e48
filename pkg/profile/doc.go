// Package profile is the profile-resolution and property-flattening engine.
//
// A YAML stream describes one profile per document. Profile identity is given
// either with flat dotted keys or with a nested mapping:
//
//	profile.name: prod
//	profile.extends: base
//	core-site:
//	  fs:
//	    defaultFS: hdfs://prod-nn:8020
//	---
//	profile:
//	  name: base
//	hdfs-site:
//	  dfs.replication: 3
//
// Every other top-level key names a configuration (one output artifact) whose
// nested value is flattened into ordered dotted properties, e.g.
// core-site -> [("fs.defaultFS", "hdfs://prod-nn:8020")].
//
// # Usage
//
//	reg := profile.BuildRegistry(stream.Documents, logger)
//	report, err := profile.NewResolver(profile.ModeTopological, logger).Resolve(reg)
//	for _, p := range reg.Profiles() {
//	    for _, c := range p.Configurations() {
//	        // c.Properties is ready for serialization
//	    }
//	}
//
// # Inheritance
//
// A child's configuration of the same name keeps its own properties first and
// then receives the parent's, without deduplication; configurations the child
// lacks are deep-copied from the parent. Profiles without "extends" inherit
// from the profile named "default" when one exists.
package profile
