package sink

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ajitpratap0/hconf/pkg/errors"
)

// DirSink writes <root>/<profile>/<file> on the local filesystem. Existing
// files are overwritten.
type DirSink struct {
	root   string
	logger *zap.Logger
	dirs   map[string]bool
}

// NewDirSink creates a directory sink rooted at root
func NewDirSink(root string, logger *zap.Logger) *DirSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirSink{root: root, logger: logger, dirs: make(map[string]bool)}
}

// Kind implements Sink
func (s *DirSink) Kind() Kind { return KindDir }

// Root returns the output directory
func (s *DirSink) Root() string { return s.root }

// Open creates the output directory
func (s *DirSink) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.ensureDir(s.root)
}

// OpenProfile creates <root>/<name>
func (s *DirSink) OpenProfile(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validName("profile", name); err != nil {
		return err
	}
	return s.ensureDir(filepath.Join(s.root, name))
}

// Target implements Sink
func (s *DirSink) Target(a Artifact) string {
	return filepath.Join(s.root, a.Profile, a.File)
}

// Write implements Sink
func (s *DirSink) Write(ctx context.Context, a Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validate(a); err != nil {
		return err
	}
	if err := s.ensureDir(filepath.Join(s.root, a.Profile)); err != nil {
		return err
	}

	target := s.Target(a)
	if err := os.WriteFile(target, a.Data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "unable to write "+target)
	}
	return nil
}

// Close implements Sink
func (s *DirSink) Close() error { return nil }

func (s *DirSink) ensureDir(dir string) error {
	if s.dirs[dir] {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "unable to create directory "+dir)
	}
	s.dirs[dir] = true
	s.logger.Debug("output directory ready", zap.String("dir", dir))
	return nil
}
