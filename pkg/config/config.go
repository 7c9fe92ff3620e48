// Package config provides the run configuration for hconf.
// A single RunConfig describes where documents come from, how profiles are
// resolved, and where the generated artifacts go.
//
// The configuration is organized into logical sections:
//   - Input: the YAML stream to read
//   - Output: artifact format, extension and destination
//   - Resolution: how profile inheritance is applied
//   - Observability: logging, metrics and tracing
//
// Example usage:
//
//	cfg := config.NewRunConfig()
//	cfg.Input.Path = "cluster.yaml"
//	cfg.Output.Format = "json"
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"strings"
	"time"

	"github.com/ajitpratap0/hconf/pkg/errors"
)

const (
	// DefaultOutputLocation is the directory artifacts are written to when none is given
	DefaultOutputLocation = "hadoop-conf"
	// DefaultFormat is the artifact format used when none is given
	DefaultFormat = "xml"
	// ResolutionTopological resolves ancestors before descendants
	ResolutionTopological = "topological"
	// ResolutionSinglePass resolves in declaration order in one pass
	ResolutionSinglePass = "single-pass"
	// StdioLocation reads input from stdin or writes output to stdout
	StdioLocation = "-"
)

// RunConfig is the complete configuration of one hconf run.
type RunConfig struct {
	// Input describes the document stream
	Input InputConfig `yaml:"input" json:"input" mapstructure:"input"`

	// Output describes the artifacts and where they go
	Output OutputConfig `yaml:"output" json:"output" mapstructure:"output"`

	// Resolution controls profile inheritance
	Resolution ResolutionConfig `yaml:"resolution" json:"resolution" mapstructure:"resolution"`

	// Observability settings for logs, metrics and traces
	Observability ObservabilityConfig `yaml:"observability" json:"observability" mapstructure:"observability"`

	// Timeout bounds the whole run
	Timeout time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`
}

// InputConfig describes the YAML document stream.
type InputConfig struct {
	// Path of the YAML file, or "-" for stdin
	Path string `yaml:"path" json:"path" mapstructure:"path"`
	// Format names the document source (see document.ListSources)
	Format string `yaml:"format" json:"format" mapstructure:"format"`
	// ExpandEnv substitutes ${VAR} references in the input before parsing
	ExpandEnv bool `yaml:"expand_env" json:"expand_env" mapstructure:"expand_env"`
}

// OutputConfig describes the generated artifacts.
type OutputConfig struct {
	// Location is a directory, "-", a .tar[.codec] archive, s3://bucket/prefix or gs://bucket/prefix
	Location string `yaml:"location" json:"location" mapstructure:"location"`
	// Format selects the serializer (xml, json, yaml, properties)
	Format string `yaml:"format" json:"format" mapstructure:"format"`
	// Extension overrides the serializer's file extension
	Extension string `yaml:"extension" json:"extension" mapstructure:"extension"`
	// CompressionLevel for archive outputs: 0 default, 1 fastest, 2 better, 3 best
	CompressionLevel int `yaml:"compression_level" json:"compression_level" mapstructure:"compression_level"`
	// Region for s3:// outputs; empty uses the SDK default chain
	Region string `yaml:"region" json:"region" mapstructure:"region"`
	// CredentialsFile for gs:// outputs; empty uses application default credentials
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file" mapstructure:"credentials_file"`
}

// ResolutionConfig controls profile inheritance.
type ResolutionConfig struct {
	// Mode is "topological" or "single-pass"
	Mode string `yaml:"mode" json:"mode" mapstructure:"mode"`
}

// ObservabilityConfig contains logging, metrics and tracing settings.
type ObservabilityConfig struct {
	// LogLevel sets logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level" json:"log_level" mapstructure:"log_level"`
	// LogEncoding is console or json
	LogEncoding string `yaml:"log_encoding" json:"log_encoding" mapstructure:"log_encoding"`
	// MetricsFile receives run metrics in the Prometheus text format when set
	MetricsFile string `yaml:"metrics_file" json:"metrics_file" mapstructure:"metrics_file"`
	// EnableTracing exports pipeline spans
	EnableTracing bool `yaml:"enable_tracing" json:"enable_tracing" mapstructure:"enable_tracing"`
	// TraceFile receives exported spans; empty means stderr
	TraceFile string `yaml:"trace_file" json:"trace_file" mapstructure:"trace_file"`
}

// NewRunConfig creates a RunConfig with the defaults of the original
// command line tool: XML artifacts under ./hadoop-conf.
func NewRunConfig() *RunConfig {
	return &RunConfig{
		Input: InputConfig{
			Format: "yaml",
		},
		Output: OutputConfig{
			Location: DefaultOutputLocation,
			Format:   DefaultFormat,
		},
		Resolution: ResolutionConfig{
			Mode: ResolutionTopological,
		},
		Observability: ObservabilityConfig{
			LogLevel:    "info",
			LogEncoding: "console",
		},
		Timeout: 5 * time.Minute,
	}
}

// Validate checks required fields and enumerations.
func (c *RunConfig) Validate() error {
	if c.Input.Path == "" {
		return errors.New(errors.ErrorTypeValidation, "input path is required")
	}
	if c.Input.Format == "" {
		return errors.New(errors.ErrorTypeValidation, "input format is required")
	}
	if c.Output.Location == "" {
		return errors.New(errors.ErrorTypeValidation, "output location is required")
	}
	if c.Output.Format == "" {
		return errors.New(errors.ErrorTypeValidation, "output format is required")
	}
	if strings.ContainsAny(c.Output.Extension, `/\`) {
		return errors.Newf(errors.ErrorTypeValidation, "extension %q must not contain path separators", c.Output.Extension)
	}
	if c.Output.CompressionLevel < 0 || c.Output.CompressionLevel > 3 {
		return errors.Newf(errors.ErrorTypeValidation, "compression_level must be between 0 and 3, got %d", c.Output.CompressionLevel)
	}
	switch c.Resolution.Mode {
	case ResolutionTopological, ResolutionSinglePass:
	default:
		return errors.Newf(errors.ErrorTypeValidation, "resolution mode %q is not one of %s, %s",
			c.Resolution.Mode, ResolutionTopological, ResolutionSinglePass)
	}
	switch c.Observability.LogEncoding {
	case "console", "json":
	default:
		return errors.Newf(errors.ErrorTypeValidation, "log encoding %q is not console or json", c.Observability.LogEncoding)
	}
	if c.Timeout < 0 {
		return errors.New(errors.ErrorTypeValidation, "timeout cannot be negative")
	}
	return nil
}

// ReadsStdin reports whether the input is read from stdin.
func (i *InputConfig) ReadsStdin() bool {
	return i.Path == StdioLocation
}

// WritesStdout reports whether artifacts are printed rather than stored.
func (o *OutputConfig) WritesStdout() bool {
	return o.Location == StdioLocation
}
