package format

import (
	"bytes"

	gojson "github.com/goccy/go-json"

	"github.com/ajitpratap0/hconf/pkg/errors"
	"github.com/ajitpratap0/hconf/pkg/pool"
	"github.com/ajitpratap0/hconf/pkg/profile"
)

// JSON writes one object per configuration. Keys keep their order and
// repeated paths are written repeatedly.
type JSON struct{}

// Name implements Format
func (JSON) Name() string { return "json" }

// Extension implements Format
func (JSON) Extension() string { return "json" }

// Description implements Format
func (JSON) Description() string { return "ordered JSON object, values keep their YAML types" }

// Encode implements Format
func (JSON) Encode(c *profile.Configuration) ([]byte, error) {
	if len(c.Properties) == 0 {
		return []byte("{}\n"), nil
	}

	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	buf.WriteString("{\n")
	for i, p := range c.Properties {
		key, err := gojson.Marshal(p.Path)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to encode json key").
				WithDetail("configuration", c.Name)
		}
		value, err := gojson.MarshalNoEscape(p.Value)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to encode json value").
				WithDetail("configuration", c.Name).
				WithDetail("property", p.Path)
		}

		buf.WriteString("  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(value)
		if i < len(c.Properties)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return bytes.Clone(buf.Bytes()), nil
}
