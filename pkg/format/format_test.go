package format

import (
	"encoding/xml"
	"testing"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/hconf/pkg/document"
	"github.com/ajitpratap0/hconf/pkg/errors"
	"github.com/ajitpratap0/hconf/pkg/profile"
)

func coreSite() *profile.Configuration {
	return &profile.Configuration{
		Name: "core-site",
		Properties: []profile.Property{
			{Path: "fs.defaultFS", Value: "hdfs://prod-nn:8020"},
			{Path: "io.file.buffer.size", Value: 131072},
			{Path: "fs.defaultFS", Value: "hdfs://nn:8020"},
		},
	}
}

func TestXMLEncode(t *testing.T) {
	data, err := XML{}.Encode(coreSite())
	require.NoError(t, err)

	expected := `<?xml version="1.0" encoding="UTF-8"?>
<?xml-stylesheet type="text/xsl" href="configuration.xsl"?>
<configuration>
  <property>
    <name>fs.defaultFS</name>
    <value>hdfs://prod-nn:8020</value>
  </property>
  <property>
    <name>io.file.buffer.size</name>
    <value>131072</value>
  </property>
  <property>
    <name>fs.defaultFS</name>
    <value>hdfs://nn:8020</value>
  </property>
</configuration>
`
	assert.Equal(t, expected, string(data))
}

func TestXMLEscapesValues(t *testing.T) {
	data, err := XML{}.Encode(&profile.Configuration{
		Name:       "c",
		Properties: []profile.Property{{Path: "a<b", Value: "x & y"}},
	})
	require.NoError(t, err)

	var parsed xmlConfiguration
	require.NoError(t, xml.Unmarshal(data, &parsed))
	require.Len(t, parsed.Properties, 1)
	assert.Equal(t, xmlProperty{Name: "a<b", Value: "x & y"}, parsed.Properties[0])
}

func TestJSONEncode(t *testing.T) {
	data, err := JSON{}.Encode(coreSite())
	require.NoError(t, err)

	expected := `{
  "fs.defaultFS": "hdfs://prod-nn:8020",
  "io.file.buffer.size": 131072,
  "fs.defaultFS": "hdfs://nn:8020"
}
`
	assert.Equal(t, expected, string(data))
	assert.True(t, gojson.Valid(data))
}

func TestJSONEncodeTypedValues(t *testing.T) {
	data, err := JSON{}.Encode(&profile.Configuration{Properties: []profile.Property{
		{Path: "list", Value: []any{"a", 1}},
		{Path: "empty", Value: nil},
		{Path: "html", Value: "<b>"},
		{Path: "nested", Value: []any{document.MapOf("k", true)}},
	}})
	require.NoError(t, err)
	assert.Equal(t, `{
  "list": ["a",1],
  "empty": null,
  "html": "<b>",
  "nested": [{"k":true}]
}
`, string(data))

	empty, err := JSON{}.Encode(&profile.Configuration{Name: "e"})
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(empty))
}

func TestYAMLEncode(t *testing.T) {
	data, err := YAML{}.Encode(coreSite())
	require.NoError(t, err)

	expected := `- [fs.defaultFS, 'hdfs://prod-nn:8020']
- [io.file.buffer.size, 131072]
- [fs.defaultFS, 'hdfs://nn:8020']
`
	assert.Equal(t, expected, string(data))

	var pairs [][]any
	require.NoError(t, yaml.Unmarshal(data, &pairs))
	require.Len(t, pairs, 3)
	assert.Equal(t, []any{"io.file.buffer.size", 131072}, pairs[1])
}

func TestPropertiesEncode(t *testing.T) {
	data, err := Properties{}.Encode(&profile.Configuration{Properties: []profile.Property{
		{Path: "fs.defaultFS", Value: "hdfs://nn:8020"},
		{Path: "hosts", Value: []any{"a", "b"}},
		{Path: "key with=sep", Value: " leading"},
		{Path: "empty", Value: nil},
		{Path: "#comment", Value: "multi\nline"},
	}})
	require.NoError(t, err)

	expected := `fs.defaultFS=hdfs://nn:8020
hosts=a,b
key\ with\=sep=\ leading
empty=
\#comment=multi\nline
`
	assert.Equal(t, expected, string(data))
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{"nil", nil, ""},
		{"string", "s", "s"},
		{"bool", true, "true"},
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"uint64", uint64(18446744073709551615), "18446744073709551615"},
		{"float", 0.75, "0.75"},
		{"large float", 1e6, "1000000"},
		{"list", []any{"a", 1, true}, "a,1,true"},
		{"nested list", []any{[]any{1, 2}, 3}, "1,2,3"},
		{"mapping in list", []any{document.MapOf("k", "v")}, `{"k":"v"}`},
		{"time", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "2024-01-02T03:04:05Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatValue(tt.value))
		})
	}
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"json", "properties", "xml", "yaml"}, List())

	for _, name := range List() {
		f, err := New(name)
		require.NoError(t, err)
		assert.Equal(t, name, f.Name())
		assert.NotEmpty(t, f.Extension())
		assert.NotEmpty(t, f.Description())
	}

	f, err := New("XML")
	require.NoError(t, err)
	assert.Equal(t, "xml", f.Name())

	_, err = New("toml")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeCapability))

	err = Register("xml", func() Format { return XML{} })
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestEncodingIsDeterministic(t *testing.T) {
	for _, name := range List() {
		f, err := New(name)
		require.NoError(t, err)
		first, err := f.Encode(coreSite())
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := f.Encode(coreSite())
			require.NoError(t, err)
			assert.Equal(t, first, again, name)
		}
	}
}
