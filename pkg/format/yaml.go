package format

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/hconf/pkg/errors"
	"github.com/ajitpratap0/hconf/pkg/pool"
	"github.com/ajitpratap0/hconf/pkg/profile"
)

// YAML writes the property list as a sequence of [path, value] pairs.
type YAML struct{}

// Name implements Format
func (YAML) Name() string { return "yaml" }

// Extension implements Format
func (YAML) Extension() string { return "yaml" }

// Description implements Format
func (YAML) Description() string { return "YAML sequence of [name, value] pairs" }

// Encode implements Format
func (YAML) Encode(c *profile.Configuration) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.SequenceNode}
	for _, p := range c.Properties {
		value := &yaml.Node{}
		if err := value.Encode(p.Value); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to encode yaml value").
				WithDetail("configuration", c.Name).
				WithDetail("property", p.Path)
		}
		root.Content = append(root.Content, &yaml.Node{
			Kind:  yaml.SequenceNode,
			Style: yaml.FlowStyle,
			Content: []*yaml.Node{
				{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.Path},
				value,
			},
		})
	}

	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to encode yaml").
			WithDetail("configuration", c.Name)
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to encode yaml").
			WithDetail("configuration", c.Name)
	}
	return bytes.Clone(buf.Bytes()), nil
}
