package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/hconf/pkg/errors"
)

func validConfig() *RunConfig {
	cfg := NewRunConfig()
	cfg.Input.Path = "cluster.yaml"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RunConfig)
		errMsg string
	}{
		{name: "defaults with input", mutate: func(*RunConfig) {}},
		{name: "missing input", mutate: func(c *RunConfig) { c.Input.Path = "" }, errMsg: "input path is required"},
		{name: "missing input format", mutate: func(c *RunConfig) { c.Input.Format = "" }, errMsg: "input format is required"},
		{name: "missing output", mutate: func(c *RunConfig) { c.Output.Location = "" }, errMsg: "output location is required"},
		{name: "missing format", mutate: func(c *RunConfig) { c.Output.Format = "" }, errMsg: "output format is required"},
		{name: "extension with slash", mutate: func(c *RunConfig) { c.Output.Extension = "a/b" }, errMsg: "path separators"},
		{name: "compression level", mutate: func(c *RunConfig) { c.Output.CompressionLevel = 9 }, errMsg: "compression_level"},
		{name: "unknown mode", mutate: func(c *RunConfig) { c.Resolution.Mode = "lazy" }, errMsg: "resolution mode"},
		{name: "single pass", mutate: func(c *RunConfig) { c.Resolution.Mode = ResolutionSinglePass }},
		{name: "unknown encoding", mutate: func(c *RunConfig) { c.Observability.LogEncoding = "xml" }, errMsg: "log encoding"},
		{name: "negative timeout", mutate: func(c *RunConfig) { c.Timeout = -time.Second }, errMsg: "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	t.Setenv("HCONF_TEST_BUCKET", "configs")

	path := filepath.Join(t.TempDir(), "hconf.yaml")
	content := `input:
  path: cluster.yaml
output:
  location: s3://${HCONF_TEST_BUCKET}/hadoop
  format: json
timeout: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := NewRunConfig()
	require.NoError(t, Load(path, cfg))

	assert.Equal(t, "cluster.yaml", cfg.Input.Path)
	assert.Equal(t, "yaml", cfg.Input.Format)
	assert.Equal(t, "s3://configs/hadoop", cfg.Output.Location)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, ResolutionTopological, cfg.Resolution.Mode)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestLoadMissingFile(t *testing.T) {
	err := Load(filepath.Join(t.TempDir(), "nope.yaml"), NewRunConfig())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("input: [unclosed"), 0o644))

	err := Load(path, NewRunConfig())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := validConfig()
	cfg.Output.Format = "properties"
	require.NoError(t, Save(path, cfg))

	loaded := NewRunConfig()
	require.NoError(t, Load(path, loaded))
	assert.Equal(t, cfg, loaded)
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("HCONF_A", "alpha")

	assert.Equal(t, "x alpha y", ExpandEnv("x ${HCONF_A} y"))
	assert.Equal(t, "alphaalpha", ExpandEnv("${HCONF_A}${HCONF_A}"))
	assert.Equal(t, "[]", ExpandEnv("[${HCONF_UNSET_VARIABLE}]"))
	assert.Equal(t, "keep ${open", ExpandEnv("keep ${open"))
	assert.Equal(t, "no refs", ExpandEnv("no refs"))
}

func TestStdioHelpers(t *testing.T) {
	cfg := validConfig()
	assert.False(t, cfg.Input.ReadsStdin())
	assert.False(t, cfg.Output.WritesStdout())

	cfg.Input.Path = StdioLocation
	cfg.Output.Location = StdioLocation
	assert.True(t, cfg.Input.ReadsStdin())
	assert.True(t, cfg.Output.WritesStdout())
}
