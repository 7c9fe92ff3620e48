package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ajitpratap0/hconf/internal/pipeline"
	"github.com/ajitpratap0/hconf/pkg/compression"
	"github.com/ajitpratap0/hconf/pkg/config"
	"github.com/ajitpratap0/hconf/pkg/errors"
	"github.com/ajitpratap0/hconf/pkg/format"
	"github.com/ajitpratap0/hconf/pkg/logger"
	"github.com/ajitpratap0/hconf/pkg/observability"
	"github.com/ajitpratap0/hconf/pkg/sink"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hconf",
		Short: "hconf - Hadoop configuration generator",
		Long: `hconf turns a multi-document YAML file of profiles into Hadoop style
configuration files, one directory per profile and one file per configuration.

Profiles may extend a parent profile; the parent's properties are appended
after the child's own.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "Path to a YAML run configuration file")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-encoding", "console", "Log encoding (console, json)")

	root.AddCommand(newGenerateCmd(), newProfilesCmd(), newFormatsCmd(), newVersionCmd())
	return root
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [input]",
		Short: "Generate configuration files from a YAML profile stream",
		Long: `Generate configuration files for every profile in the input.

The input is a YAML file or "-" for stdin. The output location decides where
the files go: a directory (default hadoop-conf), "-" for stdout, a .tar
archive with an optional compression suffix, s3://bucket/prefix or
gs://bucket/prefix.

Example:
  hconf generate cluster.yaml -d hadoop-conf
  hconf generate cluster.yaml --format json -d conf.tar.zst`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRunConfig(cmd, args)
			if err != nil {
				return err
			}
			return runGenerate(cmd, cfg)
		},
	}

	fs := cmd.Flags()
	addInputFlags(fs)
	fs.StringP("output-dir", "d", config.DefaultOutputLocation, "Output location: directory, -, archive path, s3:// or gs:// URL")
	fs.StringP("format", "f", config.DefaultFormat, "Artifact format ("+strings.Join(format.List(), ", ")+")")
	fs.String("extension", "", "Override the artifact file extension")
	fs.Int("compression-level", 0, "Archive compression level: 0 default, 1 fastest, 2 better, 3 best")
	fs.String("region", "", "AWS region for s3:// outputs")
	fs.String("credentials-file", "", "Credentials file for s3:// or gs:// outputs")
	fs.String("metrics-file", "", "Write run metrics in Prometheus text format to this file")
	fs.Bool("trace", false, "Export pipeline spans")
	fs.String("trace-file", "", "Write exported spans to this file instead of stderr")
	fs.Duration("timeout", config.NewRunConfig().Timeout, "Run timeout")
	return cmd
}

func newProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles [input]",
		Short: "List profiles after inheritance resolution",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRunConfig(cmd, args)
			if err != nil {
				return err
			}
			return runProfiles(cmd, cfg)
		},
	}
	addInputFlags(cmd.Flags())
	return cmd
}

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List artifact formats and output locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "Formats:")
			for _, name := range format.List() {
				f, err := format.New(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "  %s\t.%s\t%s\n", f.Name(), f.Extension(), f.Description())
			}
			fmt.Fprintln(w, "\nOutputs:")
			for _, info := range sink.Kinds() {
				fmt.Fprintf(w, "  %s\t%s\n", info.Kind, info.Example)
			}
			fmt.Fprintf(w, "\nArchive suffixes: %s\n", strings.Join(compression.ArchiveSuffixes(), ", "))
			return w.Flush()
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "hconf v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func addInputFlags(fs *pflag.FlagSet) {
	fs.String("input-format", "yaml", "Input document format")
	fs.Bool("expand-env", false, "Expand ${VAR} references in the input before parsing")
	fs.String("resolution", config.ResolutionTopological, "Inheritance resolution mode (topological, single-pass)")
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "inheritance" {
			name = "resolution"
		}
		return pflag.NormalizedName(name)
	})
}

// runGenerate runs the pipeline with logging, tracing and the run timeout in
// place.
func runGenerate(cmd *cobra.Command, cfg *config.RunConfig) error {
	log, err := initLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	shutdown, err := startTracing(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Warn("failed to flush traces", zap.Error(err))
		}
	}()

	ctx := cmd.Context()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	p, err := pipeline.New(cfg, log,
		pipeline.WithStdin(cmd.InOrStdin()),
		pipeline.WithStdout(cmd.OutOrStdout()))
	if err != nil {
		return err
	}

	log.Debug("starting generation",
		zap.String("input", cfg.Input.Path),
		zap.String("output", cfg.Output.Location),
		zap.String("format", cfg.Output.Format),
		zap.String("resolution", cfg.Resolution.Mode))

	_, err = p.Run(ctx)
	return err
}

func runProfiles(cmd *cobra.Command, cfg *config.RunConfig) error {
	log, err := initLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Nothing is written; a stdout sink keeps New from validating the
	// configured output location.
	cfg.Output.Location = config.StdioLocation
	p, err := pipeline.New(cfg, log, pipeline.WithStdin(cmd.InOrStdin()))
	if err != nil {
		return err
	}
	reg, report, err := p.Load(cmd.Context())
	if err != nil {
		return err
	}

	orphans := make(map[string]bool, len(report.Orphans))
	for _, name := range report.Orphans {
		orphans[name] = true
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROFILE\tPARENT\tCONFIGURATIONS")
	for _, prof := range reg.Profiles() {
		parent := "-"
		if prof.HasParent() {
			parent = prof.Parent
			if orphans[prof.Name] {
				parent += " (missing)"
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", prof.Name, parent, strings.Join(prof.ConfigurationNames(), ", "))
	}
	return w.Flush()
}

func initLogger(cfg *config.RunConfig) (*zap.Logger, error) {
	lc := logger.DefaultConfig()
	lc.Level = cfg.Observability.LogLevel
	lc.Encoding = cfg.Observability.LogEncoding
	if err := logger.Init(lc); err != nil {
		return nil, err
	}
	return logger.Get().With(zap.String("component", "hconf-cli")), nil
}

// startTracing installs the span exporter when tracing is enabled. The
// returned shutdown also closes the trace file.
func startTracing(cfg *config.RunConfig) (observability.ShutdownFunc, error) {
	tc := observability.TracingConfig{
		Enabled:        cfg.Observability.EnableTracing,
		ServiceName:    "hconf",
		ServiceVersion: version,
	}

	var traceFile *os.File
	if tc.Enabled && cfg.Observability.TraceFile != "" {
		f, err := os.Create(cfg.Observability.TraceFile)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "unable to create trace file "+cfg.Observability.TraceFile)
		}
		traceFile = f
		tc.Output = f
	}

	shutdown, err := observability.InitTracing(tc)
	if err != nil {
		if traceFile != nil {
			_ = traceFile.Close()
		}
		return nil, err
	}
	return func(ctx context.Context) error {
		err := shutdown(ctx)
		if traceFile != nil {
			if cerr := traceFile.Close(); err == nil {
				err = cerr
			}
		}
		return err
	}, nil
}
