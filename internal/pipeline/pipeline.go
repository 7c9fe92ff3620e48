// Package pipeline runs one generation: it reads the document stream, builds
// and resolves the profile registry, serializes every configuration and
// hands the artifacts to a sink.
//
// # Basic Usage
//
//	cfg := config.NewRunConfig()
//	cfg.Input.Path = "cluster.yaml"
//
//	p, err := pipeline.New(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	result, err := p.Run(ctx)
//
// Stages run sequentially; each is traced as a span "pipeline.<stage>" and
// timed in the metrics collector. The first error aborts the run.
package pipeline

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ajitpratap0/hconf/pkg/compression"
	"github.com/ajitpratap0/hconf/pkg/config"
	"github.com/ajitpratap0/hconf/pkg/document"
	"github.com/ajitpratap0/hconf/pkg/errors"
	"github.com/ajitpratap0/hconf/pkg/format"
	"github.com/ajitpratap0/hconf/pkg/logger"
	"github.com/ajitpratap0/hconf/pkg/metrics"
	"github.com/ajitpratap0/hconf/pkg/observability"
	"github.com/ajitpratap0/hconf/pkg/profile"
	"github.com/ajitpratap0/hconf/pkg/sink"
)

// Stage names, used for spans and the stage duration metric
const (
	StageRead    = "read"
	StageBuild   = "build"
	StageResolve = "resolve"
	StageWrite   = "write"
)

// Pipeline generates artifacts for one run configuration.
type Pipeline struct {
	cfg      *config.RunConfig
	source   document.Source
	format   format.Format
	sink     sink.Sink
	resolver *profile.Resolver
	metrics  *metrics.Collector
	tracer   *observability.StageTracer
	logger   *zap.Logger

	stdin  io.Reader
	stdout io.Writer
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithSink replaces the sink selected from the output location
func WithSink(s sink.Sink) Option {
	return func(p *Pipeline) { p.sink = s }
}

// WithStdin sets the reader used for the "-" input
func WithStdin(r io.Reader) Option {
	return func(p *Pipeline) { p.stdin = r }
}

// WithStdout sets the writer used for the "-" output
func WithStdout(w io.Writer) Option {
	return func(p *Pipeline) { p.stdout = w }
}

// WithMetrics records into c instead of a fresh collector
func WithMetrics(c *metrics.Collector) Option {
	return func(p *Pipeline) { p.metrics = c }
}

// Result summarizes a finished run.
type Result struct {
	RunID     string
	Documents int
	Skipped   int
	Nameless  int
	Profiles  []string
	Orphans   []string
	Artifacts int
	Bytes     int
	Duration  time.Duration
}

// New validates cfg and resolves its components. Unknown formats, sources,
// resolution modes and output schemes fail here, before any input is read.
func New(cfg *config.RunConfig, log *zap.Logger, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	p := &Pipeline{
		cfg:    cfg,
		tracer: observability.NewStageTracer("pipeline"),
		logger: log.With(zap.String("component", "pipeline")),
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil {
		p.metrics = metrics.NewCollector("hconf")
	}

	source, err := document.CreateSource(strings.ToLower(cfg.Input.Format), document.Options{
		ExpandEnv: cfg.Input.ExpandEnv,
		Logger:    log,
	})
	if err != nil {
		return nil, err
	}
	p.source = source

	mode, err := profile.ParseMode(cfg.Resolution.Mode)
	if err != nil {
		return nil, err
	}
	p.resolver = profile.NewResolver(mode, log)

	if p.format, err = format.New(cfg.Output.Format); err != nil {
		return nil, err
	}

	if p.sink == nil {
		p.sink, err = sink.New(sink.Options{
			Location:         cfg.Output.Location,
			CompressionLevel: compression.Level(cfg.Output.CompressionLevel),
			Region:           cfg.Output.Region,
			CredentialsFile:  cfg.Output.CredentialsFile,
			Stdout:           p.stdout,
			Logger:           log,
		})
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Metrics returns the run's metrics collector
func (p *Pipeline) Metrics() *metrics.Collector {
	return p.metrics
}

// Extension returns the artifact file extension, without the dot.
func (p *Pipeline) Extension() string {
	if ext := strings.TrimPrefix(p.cfg.Output.Extension, "."); ext != "" {
		return ext
	}
	return p.format.Extension()
}

// Load reads the input and returns the resolved registry without writing
// anything.
func (p *Pipeline) Load(ctx context.Context) (*profile.Registry, *profile.ResolveReport, error) {
	var result Result
	reg, report, err := p.load(ctx, &result)
	return reg, report, err
}

// Run executes the whole generation.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{RunID: uuid.NewString()}
	ctx = context.WithValue(ctx, logger.RunIDKey, result.RunID)
	log := p.logger.With(zap.String("run_id", result.RunID))

	ctx, span := p.tracer.StartSpan(ctx, "run")
	defer span.End()

	err := p.run(ctx, log, result)
	result.Duration = time.Since(start)
	p.metrics.SetRunDuration(result.Duration)
	span.SetAttribute("hconf.run_id", result.RunID)

	if err != nil {
		span.Fail(err)
		p.metrics.RecordFailure(err)
		p.writeMetrics(log)
		return result, err
	}

	p.writeMetrics(log)
	log.Info("generation completed",
		zap.Int("profiles", len(result.Profiles)),
		zap.Int("artifacts", result.Artifacts),
		zap.Int("bytes", result.Bytes),
		zap.Duration("duration", result.Duration))
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, log *zap.Logger, result *Result) error {
	reg, _, err := p.load(ctx, result)
	if err != nil {
		return err
	}

	if err := p.sink.Open(ctx); err != nil {
		return err
	}
	writeErr := p.stage(ctx, StageWrite, func(ctx context.Context, span *observability.Span) error {
		return p.write(ctx, log, reg, result, span)
	})
	closeErr := p.sink.Close()
	if writeErr != nil {
		return writeErr
	}
	return closeErr
}

func (p *Pipeline) load(ctx context.Context, result *Result) (*profile.Registry, *profile.ResolveReport, error) {
	var stream *document.Stream
	err := p.stage(ctx, StageRead, func(ctx context.Context, span *observability.Span) error {
		var err error
		stream, err = p.read(ctx)
		if err != nil {
			return err
		}
		span.SetAttribute("hconf.documents", stream.Total)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	var reg *profile.Registry
	_ = p.stage(ctx, StageBuild, func(_ context.Context, span *observability.Span) error {
		reg = profile.BuildRegistry(stream.Documents, p.logger)
		span.SetAttribute("hconf.profiles", reg.Len())
		return nil
	})

	var report *profile.ResolveReport
	err = p.stage(ctx, StageResolve, func(_ context.Context, span *observability.Span) error {
		var err error
		report, err = p.resolver.Resolve(reg)
		if err != nil {
			return err
		}
		span.SetAttribute("hconf.mode", string(report.Mode))
		span.SetAttribute("hconf.orphans", report.Orphans)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	result.Documents = stream.Total
	result.Skipped = stream.Skipped
	result.Nameless = reg.Skipped()
	result.Profiles = reg.Names()
	result.Orphans = report.Orphans

	p.metrics.RecordDocuments(stream.Total, stream.Skipped+reg.Skipped())
	p.metrics.RecordProfiles(reg.Len(), len(report.Orphans))
	return reg, report, nil
}

func (p *Pipeline) read(ctx context.Context) (*document.Stream, error) {
	path := p.cfg.Input.Path
	if p.cfg.Input.ReadsStdin() {
		return p.source.Read(ctx, p.stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "unable to open "+path)
	}
	defer f.Close()

	stream, err := p.source.Read(ctx, f)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			return nil, e.WithDetail("input", path)
		}
		return nil, err
	}
	return stream, nil
}

func (p *Pipeline) write(ctx context.Context, log *zap.Logger, reg *profile.Registry, result *Result, span *observability.Span) error {
	ext := p.Extension()
	for _, prof := range reg.Profiles() {
		log.Info("generating configuration for profile " + prof.Name)
		if err := p.sink.OpenProfile(ctx, prof.Name); err != nil {
			return err
		}
		for _, c := range prof.Configurations() {
			data, err := p.format.Encode(c)
			if err != nil {
				return err
			}

			a := sink.Artifact{Profile: prof.Name, File: c.Name + "." + ext, Data: data}
			log.Info("writing " + p.sink.Target(a))
			if err := p.sink.Write(ctx, a); err != nil {
				return err
			}

			p.metrics.RecordConfiguration(len(c.Properties))
			p.metrics.RecordArtifact(p.format.Name(), string(p.sink.Kind()), len(data))
			result.Artifacts++
			result.Bytes += len(data)
		}
	}
	span.SetAttribute("hconf.artifacts", result.Artifacts)
	return nil
}

// stage runs fn as a traced, timed stage
func (p *Pipeline) stage(ctx context.Context, name string, fn func(ctx context.Context, span *observability.Span) error) error {
	timer := metrics.NewTimer(name)
	err := p.tracer.Trace(ctx, name, fn)
	p.metrics.ObserveStage(timer.Name(), timer.Stop())
	return err
}

func (p *Pipeline) writeMetrics(log *zap.Logger) {
	path := p.cfg.Observability.MetricsFile
	if path == "" {
		return
	}
	if err := p.metrics.WriteTextfile(path); err != nil {
		log.Warn("metrics file not written", logger.ErrorFields(err)...)
	}
}
