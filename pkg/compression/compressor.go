// Package compression wraps the stream compressors used for archive output.
//
// Writers wrap the archive file and are closed before it:
//
//	w, err := compression.NewWriter(file, compression.Zstd, compression.Better)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//	tw := tar.NewWriter(w)
//
// The algorithm of an archive path is derived from its suffix with
// ForArchivePath, e.g. "conf.tar.zst" selects Zstd.
package compression

import (
	"io"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/ajitpratap0/hconf/pkg/errors"
)

// Algorithm names a stream codec.
type Algorithm string

// Supported codecs.
const (
	None   Algorithm = "none" // stream passes through unchanged
	Gzip   Algorithm = "gzip"
	Snappy Algorithm = "snappy" // framed format
	LZ4    Algorithm = "lz4"
	Zstd   Algorithm = "zstd"
	S2     Algorithm = "s2"
)

// Level trades speed for ratio. Codecs without levels ignore it.
type Level int

// Levels, from each codec's own default to its strongest setting.
const (
	Default Level = iota
	Fastest
	Better
	Best
)

// Algorithms returns the supported algorithms in name order
func Algorithms() []Algorithm {
	out := []Algorithm{None, Gzip, Snappy, LZ4, Zstd, S2}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseAlgorithm parses an algorithm name
func ParseAlgorithm(name string) (Algorithm, error) {
	alg := Algorithm(strings.ToLower(strings.TrimSpace(name)))
	if alg == "" {
		return None, nil
	}
	for _, a := range Algorithms() {
		if a == alg {
			return a, nil
		}
	}
	return "", errors.Newf(errors.ErrorTypeCapability, "unsupported compression algorithm %q", name).
		WithDetail("available", Algorithms())
}

// archiveSuffixes maps archive file suffixes to algorithms. Longer suffixes
// come first so ".tar.gz" is not taken for ".gz".
var archiveSuffixes = []struct {
	suffix string
	alg    Algorithm
}{
	{".tar.snappy", Snappy},
	{".tar.lz4", LZ4},
	{".tar.zst", Zstd},
	{".tar.gz", Gzip},
	{".tar.sz", Snappy},
	{".tar.s2", S2},
	{".tgz", Gzip},
	{".tar", None},
}

// ForArchivePath returns the algorithm implied by a tar archive path, or
// false when the path is not an archive.
func ForArchivePath(path string) (Algorithm, bool) {
	lower := strings.ToLower(path)
	for _, s := range archiveSuffixes {
		if strings.HasSuffix(lower, s.suffix) {
			return s.alg, true
		}
	}
	return "", false
}

// ArchiveSuffixes lists the recognised archive suffixes
func ArchiveSuffixes() []string {
	out := make([]string, len(archiveSuffixes))
	for i, s := range archiveSuffixes {
		out[i] = s.suffix
	}
	sort.Strings(out)
	return out
}

// NewWriter returns a writer compressing into dst. Closing it flushes the
// compressed stream but does not close dst.
func NewWriter(dst io.Writer, alg Algorithm, level Level) (io.WriteCloser, error) {
	switch alg {
	case None, "":
		return nopWriteCloser{dst}, nil
	case Gzip:
		w, err := gzip.NewWriterLevel(dst, gzipLevel(level))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to create gzip writer")
		}
		return w, nil
	case Zstd:
		w, err := zstd.NewWriter(dst, zstd.WithEncoderLevel(zstdLevel(level)))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to create zstd writer")
		}
		return w, nil
	case LZ4:
		w := lz4.NewWriter(dst)
		if err := w.Apply(lz4.CompressionLevelOption(lz4Level(level))); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to configure lz4 writer")
		}
		return w, nil
	case Snappy:
		return snappy.NewBufferedWriter(dst), nil
	case S2:
		return s2.NewWriter(dst, s2Options(level)...), nil
	}
	return nil, errors.Newf(errors.ErrorTypeCapability, "unsupported compression algorithm %q", alg)
}

// NewReader returns a reader decompressing src.
func NewReader(src io.Reader, alg Algorithm) (io.ReadCloser, error) {
	switch alg {
	case None, "":
		return io.NopCloser(src), nil
	case Gzip:
		r, err := gzip.NewReader(src)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to open gzip stream")
		}
		return r, nil
	case Zstd:
		d, err := zstd.NewReader(src)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to open zstd stream")
		}
		return d.IOReadCloser(), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(src)), nil
	case Snappy:
		return io.NopCloser(snappy.NewReader(src)), nil
	case S2:
		return io.NopCloser(s2.NewReader(src)), nil
	}
	return nil, errors.Newf(errors.ErrorTypeCapability, "unsupported compression algorithm %q", alg)
}

func gzipLevel(level Level) int {
	switch level {
	case Fastest:
		return gzip.BestSpeed
	case Better:
		return 7
	case Best:
		return gzip.BestCompression
	}
	return gzip.DefaultCompression
}

func zstdLevel(level Level) zstd.EncoderLevel {
	switch level {
	case Fastest:
		return zstd.SpeedFastest
	case Better:
		return zstd.SpeedBetterCompression
	case Best:
		return zstd.SpeedBestCompression
	}
	return zstd.SpeedDefault
}

func lz4Level(level Level) lz4.CompressionLevel {
	switch level {
	case Better:
		return lz4.Level5
	case Best:
		return lz4.Level9
	}
	return lz4.Fast
}

func s2Options(level Level) []s2.WriterOption {
	switch level {
	case Better:
		return []s2.WriterOption{s2.WriterBetterCompression()}
	case Best:
		return []s2.WriterOption{s2.WriterBestCompression()}
	}
	return nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
