package format

import (
	"bytes"
	"strings"

	"github.com/ajitpratap0/hconf/pkg/pool"
	"github.com/ajitpratap0/hconf/pkg/profile"
)

// Properties writes Java .properties files, one key=value per line.
type Properties struct{}

// Name implements Format
func (Properties) Name() string { return "properties" }

// Extension implements Format
func (Properties) Extension() string { return "properties" }

// Description implements Format
func (Properties) Description() string { return "Java properties, key=value per line" }

// Encode implements Format
func (Properties) Encode(c *profile.Configuration) ([]byte, error) {
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	for _, p := range c.Properties {
		buf.WriteString(escapeProperty(p.Path, true))
		buf.WriteByte('=')
		buf.WriteString(escapeProperty(FormatValue(p.Value), false))
		buf.WriteByte('\n')
	}
	return bytes.Clone(buf.Bytes()), nil
}

// escapeProperty escapes s for a properties file. Keys also escape
// separators and whitespace; values only a leading space.
func escapeProperty(s string, key bool) string {
	var b strings.Builder
	for i, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\f':
			b.WriteString(`\f`)
		case '=', ':':
			if key {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		case '#', '!':
			if i == 0 {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		case ' ':
			if key || i == 0 {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
