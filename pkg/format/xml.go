package format

import (
	"bytes"
	"encoding/xml"

	"github.com/ajitpratap0/hconf/pkg/errors"
	"github.com/ajitpratap0/hconf/pkg/pool"
	"github.com/ajitpratap0/hconf/pkg/profile"
)

const stylesheet = `<?xml-stylesheet type="text/xsl" href="configuration.xsl"?>` + "\n"

// XML writes Hadoop *-site.xml files.
type XML struct{}

type xmlConfiguration struct {
	XMLName    xml.Name      `xml:"configuration"`
	Properties []xmlProperty `xml:"property"`
}

type xmlProperty struct {
	Name  string `xml:"name"`
	Value string `xml:"value"`
}

// Name implements Format
func (XML) Name() string { return "xml" }

// Extension implements Format
func (XML) Extension() string { return "xml" }

// Description implements Format
func (XML) Description() string { return "Hadoop configuration XML (<configuration><property>...)" }

// Encode implements Format
func (XML) Encode(c *profile.Configuration) ([]byte, error) {
	doc := xmlConfiguration{Properties: make([]xmlProperty, len(c.Properties))}
	for i, p := range c.Properties {
		doc.Properties[i] = xmlProperty{Name: p.Path, Value: FormatValue(p.Value)}
	}

	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	buf.WriteString(xml.Header)
	buf.WriteString(stylesheet)

	enc := xml.NewEncoder(buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to encode xml").
			WithDetail("configuration", c.Name)
	}
	buf.WriteByte('\n')
	return bytes.Clone(buf.Bytes()), nil
}
