// Package sink places generated artifacts at an output location.
//
// The location string selects the sink:
//
//	hadoop-conf            directory, <dir>/<profile>/<file>
//	-                      stdout, each artifact behind a "==> profile/file <==" header
//	conf.tar.gz            tar archive, compressed according to the suffix
//	s3://bucket/prefix     S3 objects under prefix
//	gs://bucket/prefix     GCS objects under prefix
//
// A sink is opened once, receives every artifact in order, and is closed.
// Any failure aborts the run.
package sink

import (
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/ajitpratap0/hconf/pkg/compression"
	"github.com/ajitpratap0/hconf/pkg/errors"
)

// Kind identifies a sink implementation
type Kind string

const (
	// KindDir writes into a local directory tree
	KindDir Kind = "dir"
	// KindStdout writes to a stream
	KindStdout Kind = "stdout"
	// KindArchive writes one tar archive
	KindArchive Kind = "archive"
	// KindS3 uploads to Amazon S3
	KindS3 Kind = "s3"
	// KindGCS uploads to Google Cloud Storage
	KindGCS Kind = "gcs"
)

// Info describes a sink kind for listings
type Info struct {
	Kind    Kind
	Example string
}

// Kinds lists every sink kind with an example location
func Kinds() []Info {
	return []Info{
		{Kind: KindDir, Example: "hadoop-conf"},
		{Kind: KindStdout, Example: "-"},
		{Kind: KindArchive, Example: "conf.tar.gz"},
		{Kind: KindS3, Example: "s3://bucket/prefix"},
		{Kind: KindGCS, Example: "gs://bucket/prefix"},
	}
}

// Artifact is one generated file
type Artifact struct {
	Profile string
	File    string
	Data    []byte
}

// Path returns the artifact's path relative to the output root
func (a Artifact) Path() string {
	return path.Join(a.Profile, a.File)
}

// Sink receives artifacts
type Sink interface {
	// Kind returns the sink kind
	Kind() Kind
	// Open prepares the output location
	Open(ctx context.Context) error
	// OpenProfile prepares the place of one profile's artifacts. It is called
	// for every profile, including those without configurations.
	OpenProfile(ctx context.Context, name string) error
	// Write stores one artifact
	Write(ctx context.Context, a Artifact) error
	// Target describes where an artifact ends up, for progress messages
	Target(a Artifact) string
	// Close flushes and releases the output location
	Close() error
}

// Options configures sink creation
type Options struct {
	Location         string
	CompressionLevel compression.Level
	Region           string
	CredentialsFile  string
	// Stdout receives output for the "-" location; os.Stdout when nil
	Stdout io.Writer
	Logger *zap.Logger
}

// KindOf returns the sink kind selected by a location
func KindOf(location string) (Kind, error) {
	switch {
	case location == "":
		return "", errors.New(errors.ErrorTypeValidation, "output location is empty")
	case location == "-":
		return KindStdout, nil
	case strings.Contains(location, "://"):
		scheme := strings.ToLower(location[:strings.Index(location, "://")])
		switch scheme {
		case "s3":
			return KindS3, nil
		case "gs":
			return KindGCS, nil
		}
		return "", errors.Newf(errors.ErrorTypeCapability, "unsupported output scheme %q", scheme).
			WithDetail("available", "s3,gs")
	}
	if _, ok := compression.ForArchivePath(location); ok {
		return KindArchive, nil
	}
	return KindDir, nil
}

// New creates the sink selected by opts.Location. Nothing is touched until
// Open is called.
func New(opts Options) (Sink, error) {
	kind, err := KindOf(opts.Location)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "sink"), zap.String("kind", string(kind)))

	switch kind {
	case KindStdout:
		w := opts.Stdout
		if w == nil {
			w = os.Stdout
		}
		return NewWriterSink(w), nil
	case KindArchive:
		return NewArchiveSink(opts.Location, opts.CompressionLevel, logger), nil
	case KindS3:
		bucket, prefix, err := parseBucketURL(opts.Location)
		if err != nil {
			return nil, err
		}
		return NewS3Sink(bucket, prefix, S3Options{
			Region:          opts.Region,
			CredentialsFile: opts.CredentialsFile,
			Logger:          logger,
		}), nil
	case KindGCS:
		bucket, prefix, err := parseBucketURL(opts.Location)
		if err != nil {
			return nil, err
		}
		return NewGCSSink(bucket, prefix, GCSOptions{
			CredentialsFile: opts.CredentialsFile,
			Logger:          logger,
		}), nil
	}
	return NewDirSink(opts.Location, logger), nil
}

func parseBucketURL(location string) (bucket, prefix string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", errors.Wrap(err, errors.ErrorTypeValidation, "invalid output location").
			WithDetail("location", location)
	}
	if u.Host == "" {
		return "", "", errors.Newf(errors.ErrorTypeValidation, "output location %s has no bucket", location)
	}
	return u.Host, strings.Trim(u.Path, "/"), nil
}

// validate rejects artifacts whose names would leave the profile directory.
func validate(a Artifact) error {
	if err := validName("profile", a.Profile); err != nil {
		return err
	}
	return validName("file", a.File)
}

func validName(kind, value string) error {
	if value == "" || value == "." || value == ".." || strings.ContainsAny(value, `/\`) {
		return errors.Newf(errors.ErrorTypeValidation, "invalid %s name %q for an output path", kind, value)
	}
	return nil
}

// ContentType returns the MIME type for an artifact file name
func ContentType(file string) string {
	switch strings.ToLower(path.Ext(file)) {
	case ".xml":
		return "application/xml"
	case ".json":
		return "application/json"
	case ".yaml", ".yml":
		return "application/yaml"
	case ".properties", ".txt":
		return "text/plain; charset=utf-8"
	}
	return "application/octet-stream"
}
