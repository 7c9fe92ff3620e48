package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ajitpratap0/hconf/pkg/config"
	"github.com/ajitpratap0/hconf/pkg/profile"
)

// envPrefix prefixes the environment variables read by the CLI, e.g.
// HCONF_OUTPUT_LOCATION for output.location.
const envPrefix = "HCONF"

// setting maps one run configuration key to its command line flag.
type setting struct {
	key   string
	flag  string
	apply func(cfg *config.RunConfig, v *viper.Viper, key string)
}

var settings = []setting{
	{"input.path", "", func(c *config.RunConfig, v *viper.Viper, k string) { c.Input.Path = v.GetString(k) }},
	{"input.format", "input-format", func(c *config.RunConfig, v *viper.Viper, k string) { c.Input.Format = v.GetString(k) }},
	{"input.expand_env", "expand-env", func(c *config.RunConfig, v *viper.Viper, k string) { c.Input.ExpandEnv = v.GetBool(k) }},
	{"output.location", "output-dir", func(c *config.RunConfig, v *viper.Viper, k string) { c.Output.Location = v.GetString(k) }},
	{"output.format", "format", func(c *config.RunConfig, v *viper.Viper, k string) { c.Output.Format = v.GetString(k) }},
	{"output.extension", "extension", func(c *config.RunConfig, v *viper.Viper, k string) { c.Output.Extension = v.GetString(k) }},
	{"output.compression_level", "compression-level", func(c *config.RunConfig, v *viper.Viper, k string) { c.Output.CompressionLevel = v.GetInt(k) }},
	{"output.region", "region", func(c *config.RunConfig, v *viper.Viper, k string) { c.Output.Region = v.GetString(k) }},
	{"output.credentials_file", "credentials-file", func(c *config.RunConfig, v *viper.Viper, k string) { c.Output.CredentialsFile = v.GetString(k) }},
	{"resolution.mode", "resolution", func(c *config.RunConfig, v *viper.Viper, k string) { c.Resolution.Mode = v.GetString(k) }},
	{"observability.log_level", "log-level", func(c *config.RunConfig, v *viper.Viper, k string) { c.Observability.LogLevel = v.GetString(k) }},
	{"observability.log_encoding", "log-encoding", func(c *config.RunConfig, v *viper.Viper, k string) { c.Observability.LogEncoding = v.GetString(k) }},
	{"observability.metrics_file", "metrics-file", func(c *config.RunConfig, v *viper.Viper, k string) { c.Observability.MetricsFile = v.GetString(k) }},
	{"observability.enable_tracing", "trace", func(c *config.RunConfig, v *viper.Viper, k string) { c.Observability.EnableTracing = v.GetBool(k) }},
	{"observability.trace_file", "trace-file", func(c *config.RunConfig, v *viper.Viper, k string) { c.Observability.TraceFile = v.GetString(k) }},
	{"timeout", "timeout", func(c *config.RunConfig, v *viper.Viper, k string) { c.Timeout = v.GetDuration(k) }},
}

// loadRunConfig layers the run configuration: defaults, then the --config
// file, then HCONF_* environment variables, then explicitly set flags. The
// positional argument, when given, is the input path.
func loadRunConfig(cmd *cobra.Command, args []string) (*config.RunConfig, error) {
	cfg := config.NewRunConfig()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	flags := cmd.Flags()
	for _, s := range settings {
		if s.flag == "" {
			continue
		}
		if f := flags.Lookup(s.flag); f != nil {
			if err := v.BindPFlag(s.key, f); err != nil {
				return nil, err
			}
		}
	}

	if path, _ := flags.GetString("config"); path != "" {
		if err := config.Load(path, cfg); err != nil {
			return nil, err
		}
	}

	for _, s := range settings {
		if v.IsSet(s.key) {
			s.apply(cfg, v, s.key)
		}
	}
	if len(args) > 0 {
		cfg.Input.Path = args[0]
	}

	mode, err := profile.ParseMode(cfg.Resolution.Mode)
	if err != nil {
		return nil, err
	}
	cfg.Resolution.Mode = string(mode)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
