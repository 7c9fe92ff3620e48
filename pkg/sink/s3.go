package sink

import (
	"bytes"
	"context"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/ajitpratap0/hconf/pkg/errors"
)

// Uploader is the subset of manager.Uploader the S3 sink needs
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Options configures an S3 sink
type S3Options struct {
	Region          string
	CredentialsFile string
	// Uploader replaces the client built from the default AWS config
	Uploader Uploader
	Logger   *zap.Logger
}

// S3Sink uploads each artifact as s3://<bucket>/<prefix>/<profile>/<file>
type S3Sink struct {
	bucket   string
	prefix   string
	opts     S3Options
	uploader Uploader
	logger   *zap.Logger
}

// NewS3Sink creates an S3 sink
func NewS3Sink(bucket, prefix string, opts S3Options) *S3Sink {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &S3Sink{
		bucket:   bucket,
		prefix:   prefix,
		opts:     opts,
		uploader: opts.Uploader,
		logger:   logger,
	}
}

// Kind implements Sink
func (s *S3Sink) Kind() Kind { return KindS3 }

// Open loads AWS credentials unless an uploader was supplied
func (s *S3Sink) Open(ctx context.Context) error {
	if s.uploader != nil {
		return nil
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if s.opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(s.opts.Region))
	}
	if s.opts.CredentialsFile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedCredentialsFiles([]string{s.opts.CredentialsFile}))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to load AWS configuration")
	}

	s.uploader = manager.NewUploader(s3.NewFromConfig(cfg))
	s.logger.Debug("s3 client initialized", zap.String("bucket", s.bucket), zap.String("region", cfg.Region))
	return nil
}

// OpenProfile only checks the name; S3 has no directories.
func (s *S3Sink) OpenProfile(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return validName("profile", name)
}

// Key returns the object key of an artifact
func (s *S3Sink) Key(a Artifact) string {
	return path.Join(s.prefix, a.Profile, a.File)
}

// Target implements Sink
func (s *S3Sink) Target(a Artifact) string {
	return "s3://" + s.bucket + "/" + s.Key(a)
}

// Write implements Sink
func (s *S3Sink) Write(ctx context.Context, a Artifact) error {
	if err := validate(a); err != nil {
		return err
	}
	if s.uploader == nil {
		return errors.New(errors.ErrorTypeInternal, "s3 sink is not open")
	}

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.Key(a)),
		Body:          bytes.NewReader(a.Data),
		ContentLength: aws.Int64(int64(len(a.Data))),
		ContentType:   aws.String(ContentType(a.File)),
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to upload "+s.Target(a))
	}
	return nil
}

// Close implements Sink
func (s *S3Sink) Close() error { return nil }
