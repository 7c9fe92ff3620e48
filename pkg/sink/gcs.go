package sink

import (
	"context"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/ajitpratap0/hconf/pkg/errors"
)

// ObjectWriterFunc opens a writer for one GCS object
type ObjectWriterFunc func(ctx context.Context, bucket, object, contentType string) io.WriteCloser

// GCSOptions configures a GCS sink
type GCSOptions struct {
	CredentialsFile string
	// NewWriter replaces the storage client, mainly for tests
	NewWriter ObjectWriterFunc
	Logger    *zap.Logger
}

// GCSSink uploads each artifact as gs://<bucket>/<prefix>/<profile>/<file>
type GCSSink struct {
	bucket    string
	prefix    string
	opts      GCSOptions
	client    *storage.Client
	newWriter ObjectWriterFunc
	logger    *zap.Logger
}

// NewGCSSink creates a GCS sink
func NewGCSSink(bucket, prefix string, opts GCSOptions) *GCSSink {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GCSSink{
		bucket:    bucket,
		prefix:    prefix,
		opts:      opts,
		newWriter: opts.NewWriter,
		logger:    logger,
	}
}

// Kind implements Sink
func (s *GCSSink) Kind() Kind { return KindGCS }

// Open creates the storage client unless a writer function was supplied
func (s *GCSSink) Open(ctx context.Context) error {
	if s.newWriter != nil {
		return nil
	}

	var opts []option.ClientOption
	if s.opts.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(s.opts.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to create GCS client")
	}

	s.client = client
	s.newWriter = func(ctx context.Context, bucket, object, contentType string) io.WriteCloser {
		w := client.Bucket(bucket).Object(object).NewWriter(ctx)
		w.ContentType = contentType
		return w
	}
	s.logger.Debug("gcs client initialized", zap.String("bucket", s.bucket))
	return nil
}

// OpenProfile only checks the name; GCS has no directories.
func (s *GCSSink) OpenProfile(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return validName("profile", name)
}

// Object returns the object name of an artifact
func (s *GCSSink) Object(a Artifact) string {
	return path.Join(s.prefix, a.Profile, a.File)
}

// Target implements Sink
func (s *GCSSink) Target(a Artifact) string {
	return "gs://" + s.bucket + "/" + s.Object(a)
}

// Write implements Sink
func (s *GCSSink) Write(ctx context.Context, a Artifact) error {
	if err := validate(a); err != nil {
		return err
	}
	if s.newWriter == nil {
		return errors.New(errors.ErrorTypeInternal, "gcs sink is not open")
	}

	w := s.newWriter(ctx, s.bucket, s.Object(a), ContentType(a.File))
	if _, err := w.Write(a.Data); err != nil {
		_ = w.Close()
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to upload "+s.Target(a))
	}
	// The object is committed on Close.
	if err := w.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to upload "+s.Target(a))
	}
	return nil
}

// Close releases the storage client
func (s *GCSSink) Close() error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to close GCS client")
	}
	return nil
}
