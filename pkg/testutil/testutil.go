// Package testutil provides testing utilities for hconf
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/hconf/pkg/document"
)

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a test context with a 30-second timeout.
// The caller must call the returned cancel function to avoid leaks.
func TestContext(_ *testing.T) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// MustParse parses a YAML stream and returns its mapping documents.
func MustParse(t *testing.T, text string) []*document.Map {
	t.Helper()
	stream, err := document.ParseString(context.Background(), text)
	require.NoError(t, err, "parse test input")
	return stream.Documents
}

// MustParseOne parses a single mapping document.
func MustParseOne(t *testing.T, text string) *document.Map {
	t.Helper()
	docs := MustParse(t, text)
	require.Len(t, docs, 1, "expected exactly one mapping document")
	return docs[0]
}

// WriteFile writes content under dir and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.TrimLeft(content, "\n")), 0o644))
	return path
}

// ReadFile returns the content of dir/name, failing the test when missing.
func ReadFile(t *testing.T, dir string, elem ...string) string {
	t.Helper()
	path := filepath.Join(append([]string{dir}, elem...)...)
	data, err := os.ReadFile(path)
	require.NoError(t, err, "read %s", path)
	return string(data)
}
