package sink

import (
	"context"
	"fmt"
	"io"

	"github.com/ajitpratap0/hconf/pkg/errors"
)

// WriterSink streams every artifact to one writer, each preceded by a
// "==> profile/file <==" header and separated by a blank line.
type WriterSink struct {
	w       io.Writer
	written int
}

// NewWriterSink creates a sink writing to w
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Kind implements Sink
func (s *WriterSink) Kind() Kind { return KindStdout }

// Open implements Sink
func (s *WriterSink) Open(ctx context.Context) error { return ctx.Err() }

// OpenProfile implements Sink; a stream has no per-profile structure.
func (s *WriterSink) OpenProfile(ctx context.Context, _ string) error { return ctx.Err() }

// Target implements Sink
func (s *WriterSink) Target(a Artifact) string { return a.Path() }

// Write implements Sink
func (s *WriterSink) Write(ctx context.Context, a Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sep := ""
	if s.written > 0 {
		sep = "\n"
	}
	if _, err := fmt.Fprintf(s.w, "%s==> %s <==\n", sep, a.Path()); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "unable to write "+a.Path())
	}
	if _, err := s.w.Write(a.Data); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "unable to write "+a.Path())
	}
	if n := len(a.Data); n > 0 && a.Data[n-1] != '\n' {
		if _, err := io.WriteString(s.w, "\n"); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "unable to write "+a.Path())
		}
	}
	s.written++
	return nil
}

// Close implements Sink
func (s *WriterSink) Close() error { return nil }
