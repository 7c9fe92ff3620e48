package sink

import (
	"archive/tar"
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/hconf/pkg/compression"
	"github.com/ajitpratap0/hconf/pkg/errors"
)

// ArchiveSink writes all artifacts into one tar archive, compressed with the
// algorithm named by the file suffix (.tar.gz, .tar.zst, ...).
type ArchiveSink struct {
	path    string
	level   compression.Level
	logger  *zap.Logger
	modTime time.Time

	file *os.File
	cw   io.WriteCloser
	tw   *tar.Writer
	dirs map[string]bool
}

// NewArchiveSink creates an archive sink for path
func NewArchiveSink(path string, level compression.Level, logger *zap.Logger) *ArchiveSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArchiveSink{path: path, level: level, logger: logger, dirs: make(map[string]bool)}
}

// Kind implements Sink
func (s *ArchiveSink) Kind() Kind { return KindArchive }

// Open creates the archive file, truncating an existing one
func (s *ArchiveSink) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	alg, ok := compression.ForArchivePath(s.path)
	if !ok {
		return errors.Newf(errors.ErrorTypeCapability, "%s is not a recognised archive name", s.path).
			WithDetail("suffixes", compression.ArchiveSuffixes())
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "unable to create directory "+dir)
		}
	}
	f, err := os.Create(s.path)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "unable to create archive "+s.path)
	}

	cw, err := compression.NewWriter(f, alg, s.level)
	if err != nil {
		_ = f.Close()
		return err
	}

	s.file = f
	s.cw = cw
	s.tw = tar.NewWriter(cw)
	s.modTime = time.Now().Truncate(time.Second)
	s.logger.Debug("archive opened", zap.String("path", s.path), zap.String("compression", string(alg)))
	return nil
}

// OpenProfile writes the directory entry of profile name
func (s *ArchiveSink) OpenProfile(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.tw == nil {
		return errors.New(errors.ErrorTypeInternal, "archive sink is not open")
	}
	if err := validName("profile", name); err != nil {
		return err
	}
	return s.writeDir(name)
}

func (s *ArchiveSink) writeDir(profile string) error {
	if s.dirs[profile] {
		return nil
	}
	if err := s.tw.WriteHeader(&tar.Header{
		Typeflag: tar.TypeDir,
		Name:     profile + "/",
		Mode:     0o755,
		ModTime:  s.modTime,
	}); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "unable to write "+s.path+":"+profile+"/")
	}
	s.dirs[profile] = true
	return nil
}

// Target implements Sink
func (s *ArchiveSink) Target(a Artifact) string {
	return s.path + ":" + a.Path()
}

// Write implements Sink
func (s *ArchiveSink) Write(ctx context.Context, a Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.tw == nil {
		return errors.New(errors.ErrorTypeInternal, "archive sink is not open")
	}
	if err := validate(a); err != nil {
		return err
	}

	if err := s.writeDir(a.Profile); err != nil {
		return err
	}

	if err := s.tw.WriteHeader(&tar.Header{
		Typeflag: tar.TypeReg,
		Name:     a.Path(),
		Mode:     0o644,
		Size:     int64(len(a.Data)),
		ModTime:  s.modTime,
	}); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "unable to write "+s.Target(a))
	}
	if _, err := s.tw.Write(a.Data); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "unable to write "+s.Target(a))
	}
	return nil
}

// Close finishes the tar stream, the compressed stream and the file
func (s *ArchiveSink) Close() error {
	if s.file == nil {
		return nil
	}
	defer func() { s.file, s.cw, s.tw = nil, nil, nil }()

	if err := s.tw.Close(); err != nil {
		_ = s.cw.Close()
		_ = s.file.Close()
		return errors.Wrap(err, errors.ErrorTypeFile, "unable to finish archive "+s.path)
	}
	if err := s.cw.Close(); err != nil {
		_ = s.file.Close()
		return errors.Wrap(err, errors.ErrorTypeFile, "unable to finish archive "+s.path)
	}
	if err := s.file.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "unable to close archive "+s.path)
	}
	return nil
}
