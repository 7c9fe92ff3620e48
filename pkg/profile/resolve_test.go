package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/hconf/pkg/errors"
	"github.com/ajitpratap0/hconf/pkg/testutil"
)

func resolve(t *testing.T, mode Mode, input string) (*Registry, *ResolveReport) {
	t.Helper()
	reg := BuildRegistry(testutil.MustParse(t, input), testutil.TestLogger(t))
	report, err := NewResolver(mode, testutil.TestLogger(t)).Resolve(reg)
	require.NoError(t, err)
	return reg, report
}

func configOf(t *testing.T, reg *Registry, profile, config string) *Configuration {
	t.Helper()
	p, ok := reg.Get(profile)
	require.True(t, ok, "profile %s", profile)
	c, ok := p.Configuration(config)
	require.True(t, ok, "configuration %s/%s", profile, config)
	return c
}

func TestResolveChildFirstConcatenation(t *testing.T) {
	for _, mode := range Modes() {
		t.Run(string(mode), func(t *testing.T) {
			reg, report := resolve(t, mode, `
profile.name: P
c:
  x: 1
---
profile.name: K
profile.extends: P
c:
  x: 2
`)
			assert.Equal(t, []Property{{Path: "x", Value: 2}, {Path: "x", Value: 1}}, configOf(t, reg, "K", "c").Properties)
			assert.Equal(t, []string{"K"}, report.Order)
			assert.Equal(t, 1, report.Extended)
			assert.Equal(t, 0, report.Inherited)
		})
	}
}

func TestResolveInheritsMissingConfigurations(t *testing.T) {
	reg, report := resolve(t, ModeTopological, `
profile.name: base
core-site:
  a: 1
hdfs-site:
  b: 2
---
profile.name: prod
profile.extends: base
yarn-site:
  c: 3
`)

	prod, _ := reg.Get("prod")
	assert.Equal(t, []string{"yarn-site", "core-site", "hdfs-site"}, prod.ConfigurationNames())
	assert.Equal(t, []Property{{Path: "a", Value: 1}}, configOf(t, reg, "prod", "core-site").Properties)
	assert.Equal(t, 2, report.Inherited)
}

func TestResolveCopyIsIndependent(t *testing.T) {
	reg, _ := resolve(t, ModeTopological, `
profile.name: P
c:
  hosts: [a, b]
---
profile.name: K
profile.extends: P
`)

	child := configOf(t, reg, "K", "c")
	child.Properties[0].Value.([]any)[0] = "mutated"
	child.Properties = append(child.Properties, Property{Path: "extra", Value: 1})

	parent := configOf(t, reg, "P", "c")
	assert.Equal(t, []Property{{Path: "hosts", Value: []any{"a", "b"}}}, parent.Properties)
}

func TestResolveDefaultParent(t *testing.T) {
	reg, report := resolve(t, ModeTopological, `
profile.name: default
core-site:
  fs.defaultFS: hdfs://default
---
profile.name: dev
core-site:
  hadoop.tmp.dir: /tmp
`)

	assert.Equal(t, []Property{
		{Path: "hadoop.tmp.dir", Value: "/tmp"},
		{Path: "fs.defaultFS", Value: "hdfs://default"},
	}, configOf(t, reg, "dev", "core-site").Properties)
	assert.Equal(t, []Property{{Path: "fs.defaultFS", Value: "hdfs://default"}}, configOf(t, reg, "default", "core-site").Properties)
	assert.Empty(t, report.Orphans)
}

func TestResolveWithoutDefaultProfile(t *testing.T) {
	reg, report := resolve(t, ModeTopological, `
profile.name: dev
core-site:
  a: 1
---
profile.name: qa
profile.extends: missing
core-site:
  b: 2
`)

	assert.Equal(t, []string{"dev", "qa"}, report.Orphans)
	assert.Empty(t, report.Order)
	assert.Equal(t, []Property{{Path: "a", Value: 1}}, configOf(t, reg, "dev", "core-site").Properties)
	assert.Equal(t, []Property{{Path: "b", Value: 2}}, configOf(t, reg, "qa", "core-site").Properties)
}

func TestResolveSelfParent(t *testing.T) {
	reg, report := resolve(t, ModeTopological, `
profile.name: loop
profile.extends: loop
c:
  x: 1
`)
	assert.Equal(t, []Property{{Path: "x", Value: 1}}, configOf(t, reg, "loop", "c").Properties)
	assert.Empty(t, report.Orphans)
	assert.Empty(t, report.Order)
}

const chainChildFirst = `
profile.name: C
profile.extends: B
c:
  z: 3
---
profile.name: B
profile.extends: A
c:
  y: 2
---
profile.name: A
c:
  x: 1
`

func TestResolveTopologicalChainAnyOrder(t *testing.T) {
	reg, report := resolve(t, ModeTopological, chainChildFirst)

	assert.Equal(t, []string{"B", "C"}, report.Order)
	assert.Equal(t, []Property{
		{Path: "z", Value: 3},
		{Path: "y", Value: 2},
		{Path: "x", Value: 1},
	}, configOf(t, reg, "C", "c").Properties)
	assert.Equal(t, []Property{
		{Path: "y", Value: 2},
		{Path: "x", Value: 1},
	}, configOf(t, reg, "B", "c").Properties)
}

func TestResolveSinglePassChainOrderDependent(t *testing.T) {
	reg, _ := resolve(t, ModeSinglePass, chainChildFirst)

	// C merged B before B had received A.
	assert.Equal(t, []Property{
		{Path: "z", Value: 3},
		{Path: "y", Value: 2},
	}, configOf(t, reg, "C", "c").Properties)

	ordered, _ := resolve(t, ModeSinglePass, `
profile.name: A
c: {x: 1}
---
profile.name: B
profile.extends: A
c: {y: 2}
---
profile.name: C
profile.extends: B
c: {z: 3}
`)
	assert.Equal(t, []Property{
		{Path: "z", Value: 3},
		{Path: "y", Value: 2},
		{Path: "x", Value: 1},
	}, configOf(t, ordered, "C", "c").Properties)
}

func TestResolveTopologicalTiesFollowDeclarationOrder(t *testing.T) {
	_, report := resolve(t, ModeTopological, `
profile.name: b2
profile.extends: base
---
profile.name: base
---
profile.name: b1
profile.extends: base
---
profile.name: leaf
profile.extends: b1
`)
	assert.Equal(t, []string{"b2", "b1", "leaf"}, report.Order)
}

func TestResolveCycle(t *testing.T) {
	reg := BuildRegistry(testutil.MustParse(t, `
profile.name: a
profile.extends: c
x: {k: a}
---
profile.name: b
profile.extends: a
x: {k: b}
---
profile.name: c
profile.extends: b
x: {k: c}
---
profile.name: d
profile.extends: a
---
profile.name: e
x: {k: e}
`), nil)

	_, err := NewResolver(ModeTopological, testutil.TestLogger(t)).Resolve(reg)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	assert.Contains(t, err.Error(), "a, b, c")
	assert.False(t, reg.Resolved())

	// Nothing was merged.
	assert.Equal(t, []Property{{Path: "k", Value: "a"}}, configOf(t, reg, "a", "x").Properties)
	d, _ := reg.Get("d")
	assert.Empty(t, d.ConfigurationNames())
}

func TestResolveIsIdempotent(t *testing.T) {
	reg := BuildRegistry(testutil.MustParse(t, `
profile.name: P
c: {x: 1}
---
profile.name: K
profile.extends: P
c: {x: 2}
`), nil)
	r := NewResolver(ModeTopological, nil)

	_, err := r.Resolve(reg)
	require.NoError(t, err)
	before := reg.Properties()

	report, err := r.Resolve(reg)
	require.NoError(t, err)
	assert.True(t, report.AlreadyResolved)
	assert.Equal(t, before, reg.Properties())
	assert.Len(t, configOf(t, reg, "K", "c").Properties, 2)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input    string
		expected Mode
		wantErr  bool
	}{
		{input: "", expected: ModeTopological},
		{input: "topological", expected: ModeTopological},
		{input: "Single-Pass", expected: ModeSinglePass},
		{input: "single_pass", expected: ModeSinglePass},
		{input: "bfs", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := ParseMode(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, mode)
		})
	}
}
