package document

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/hconf/pkg/errors"
)

func read(t *testing.T, text string) *Stream {
	t.Helper()
	stream, err := ParseString(context.Background(), text)
	require.NoError(t, err)
	return stream
}

func TestReadPreservesKeyOrder(t *testing.T) {
	stream := read(t, `
zeta: 1
alpha: 2
mid:
  b: x
  a: y
`)
	require.Len(t, stream.Documents, 1)
	doc := stream.Documents[0]
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, Keys(doc))

	mid, ok := doc.Get("mid")
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, Keys(mid.(*Map)))
}

func TestReadMultipleDocuments(t *testing.T) {
	stream := read(t, `profile.name: base
core-site:
  fs.defaultFS: hdfs://a
---
profile:
  name: prod
  extends: base
---
42
---
- a
- b
`)
	assert.Equal(t, 4, stream.Total)
	assert.Equal(t, 2, stream.Skipped)
	require.Len(t, stream.Documents, 2)

	name, _ := stream.Documents[0].Get("profile.name")
	assert.Equal(t, "base", name)

	nested, _ := stream.Documents[1].Get("profile")
	assert.Equal(t, []string{"name", "extends"}, Keys(nested.(*Map)))
}

func TestReadScalarTypes(t *testing.T) {
	stream := read(t, `
i: 3
f: 1.5
b: true
n: ~
s: "007"
l: [1, two, {k: v}]
`)
	doc := stream.Documents[0]

	get := func(k string) any {
		v, ok := doc.Get(k)
		require.True(t, ok, k)
		return v
	}
	assert.Equal(t, 3, get("i"))
	assert.Equal(t, 1.5, get("f"))
	assert.Equal(t, true, get("b"))
	assert.Nil(t, get("n"))
	assert.Equal(t, "007", get("s"))

	list := get("l").([]any)
	require.Len(t, list, 3)
	assert.Equal(t, 1, list[0])
	assert.Equal(t, "two", list[1])
	assert.Equal(t, []string{"k"}, Keys(list[2].(*Map)))
}

func TestReadKeepsKeySpelling(t *testing.T) {
	stream := read(t, "versions:\n  1.0: old\n  true: flag\n  10: ten\n")
	versions, _ := stream.Documents[0].Get("versions")
	assert.Equal(t, []string{"1.0", "true", "10"}, Keys(versions.(*Map)))
}

func TestReadAliasesAndMergeKeys(t *testing.T) {
	stream := read(t, `
base: &base
  replication: 3
  block: 128m
site:
  <<: *base
  block: 256m
  extra: yes
`)
	site, _ := stream.Documents[0].Get("site")
	m := site.(*Map)
	assert.Equal(t, []string{"replication", "block", "extra"}, Keys(m))
	block, _ := m.Get("block")
	assert.Equal(t, "256m", block)
}

func TestReadRecursiveAlias(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"mapping", "profile.name: x\ncore: &a\n  k: *a\n"},
		{"sequence", "profile.name: x\nlist: &s [1, *s]\n"},
		{"nested", "profile.name: x\nouter: &o\n  inner:\n    deep: [*o]\n"},
		{"merge", "profile.name: x\nsite: &m\n  <<: *m\n"},
		{"key", "profile.name: x\nm: &k\n  ? *k\n  : v\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeData))
			assert.Contains(t, err.Error(), "recursive alias")
		})
	}
}

func TestReadRepeatedAliasIsNotRecursive(t *testing.T) {
	stream := read(t, "a: &a {x: 1}\nb: *a\nc: [*a, *a]\n")
	c, _ := stream.Documents[0].Get("c")
	require.Len(t, c.([]any), 2)
	assert.Equal(t, []string{"x"}, Keys(c.([]any)[1].(*Map)))
}

func TestReadExcessiveAliasing(t *testing.T) {
	var b strings.Builder
	b.WriteString("l0: &l0 [x, x, x, x, x, x, x, x, x, x]\n")
	for i := 1; i <= 7; i++ {
		ref := fmt.Sprintf("*l%d", i-1)
		fmt.Fprintf(&b, "l%d: &l%d [%s]\n", i, i, strings.TrimSuffix(strings.Repeat(ref+", ", 10), ", "))
	}

	_, err := ParseString(context.Background(), b.String())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))
	assert.Contains(t, err.Error(), "excessive aliasing")
}

func TestReadInvalidYAML(t *testing.T) {
	_, err := ParseString(context.Background(), "a: 1\n---\nb: [unclosed\n")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))
}

func TestReadExpandEnv(t *testing.T) {
	t.Setenv("HCONF_NAMENODE", "nn1.example.com")

	src, err := NewYAMLSource(Options{ExpandEnv: true, Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)

	stream, err := src.Read(context.Background(), strings.NewReader("core-site:\n  fs.defaultFS: hdfs://${HCONF_NAMENODE}\n"))
	require.NoError(t, err)

	site, _ := stream.Documents[0].Get("core-site")
	v, _ := site.(*Map).Get("fs.defaultFS")
	assert.Equal(t, "hdfs://nn1.example.com", v)
}

func TestReadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ParseString(ctx, "a: 1\n")
	require.Error(t, err)
}

func TestCloneValueIsDeep(t *testing.T) {
	orig := MapOf("list", []any{1, MapOf("k", "v")}, "n", 1)
	cp := CloneValue(orig).(*Map)

	list, _ := cp.Get("list")
	list.([]any)[1].(*Map).Set("k", "changed")
	cp.Set("n", 2)

	origList, _ := orig.Get("list")
	v, _ := origList.([]any)[1].(*Map).Get("k")
	assert.Equal(t, "v", v)
	n, _ := orig.Get("n")
	assert.Equal(t, 1, n)
}

func TestMapOfPanics(t *testing.T) {
	assert.Panics(t, func() { MapOf("a") })
	assert.Panics(t, func() { MapOf(1, 2) })
}

func TestSourceRegistry(t *testing.T) {
	assert.Equal(t, []string{"json", "yaml", "yml"}, ListSources())

	src, err := CreateSource("json", Options{Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	stream, err := src.Read(context.Background(), strings.NewReader(`{"profile.name": "x", "core-site": {"a": {"b": 1}}}`))
	require.NoError(t, err)
	require.Len(t, stream.Documents, 1)
	assert.Equal(t, []string{"profile.name", "core-site"}, Keys(stream.Documents[0]))

	_, err = CreateSource("toml", Options{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeCapability))

	err = RegisterSource("yaml", NewYAMLSource)
	require.Error(t, err)
}
