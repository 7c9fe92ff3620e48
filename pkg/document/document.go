// Package document turns a multi-document YAML stream into ordered,
// string-keyed documents for the profile engine.
//
// Mappings are decoded into *Map (an insertion-ordered map) instead of Go's
// map[string]any so that property order in the generated artifacts follows
// the source file. Sequences become []any and scalars their natural Go type.
package document

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/hconf/pkg/errors"
)

// Map is an insertion-ordered mapping from key to value. Nested mappings are
// *Map, sequences are []any.
type Map = orderedmap.OrderedMap[string, any]

// Pair is one entry of a Map.
type Pair = orderedmap.Pair[string, any]

// NewMap returns an empty Map.
func NewMap() *Map {
	return orderedmap.New[string, any]()
}

// MapOf builds a Map from alternating key/value arguments. It panics on an
// odd argument count or a non-string key and exists for tests and examples.
func MapOf(kv ...any) *Map {
	if len(kv)%2 != 0 {
		panic("document.MapOf: odd number of arguments")
	}
	m := NewMap()
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("document.MapOf: key %v is not a string", kv[i]))
		}
		m.Set(k, kv[i+1])
	}
	return m
}

// Keys returns the keys of m in insertion order.
func Keys(m *Map) []string {
	keys := make([]string, 0, m.Len())
	for p := m.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// CloneValue deep-copies maps and sequences; scalars are returned as is.
func CloneValue(v any) any {
	switch t := v.(type) {
	case *Map:
		out := NewMap()
		for p := t.Oldest(); p != nil; p = p.Next() {
			out.Set(p.Key, CloneValue(p.Value))
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = CloneValue(e)
		}
		return out
	default:
		return v
	}
}

// converter turns decoded YAML nodes into Map / []any / scalar values. It
// expands aliases itself, so it also carries the guards yaml.v3 applies when
// decoding into Go values: an alias may not refer to a node that encloses it,
// and a document may not be mostly made of alias expansions.
type converter struct {
	// open holds the anchored nodes on the current conversion path
	open map[*yaml.Node]bool
	// aliasDepth counts the aliases being expanded
	aliasDepth int
	// nodes counts every node converted; aliased those converted below an alias
	nodes   int
	aliased int
}

func fromNode(n *yaml.Node) (any, error) {
	c := &converter{open: map[*yaml.Node]bool{}}
	return c.convert(n)
}

// allowedAliasRatio mirrors yaml.v3: small documents may alias freely, large
// ones only sparingly.
func allowedAliasRatio(nodes int) float64 {
	switch {
	case nodes <= 400_000:
		return 0.99
	case nodes >= 4_000_000:
		return 0.10
	default:
		return 0.99 - 0.89*(float64(nodes-400_000)/3_600_000)
	}
}

func (c *converter) count(n *yaml.Node) error {
	c.nodes++
	if c.aliasDepth == 0 {
		return nil
	}
	c.aliased++
	if c.aliased > 100 && c.nodes > 1000 && float64(c.aliased)/float64(c.nodes) > allowedAliasRatio(c.nodes) {
		return errors.Newf(errors.ErrorTypeData, "line %d: document contains excessive aliasing", n.Line)
	}
	return nil
}

func (c *converter) convert(n *yaml.Node) (any, error) {
	if err := c.count(n); err != nil {
		return nil, err
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return c.convert(n.Content[0])
	case yaml.AliasNode:
		return c.alias(n)
	case yaml.MappingNode:
		defer c.enter(n)()
		return c.mapping(n)
	case yaml.SequenceNode:
		defer c.enter(n)()
		seq := make([]any, 0, len(n.Content))
		for _, e := range n.Content {
			v, err := c.convert(e)
			if err != nil {
				return nil, err
			}
			seq = append(seq, v)
		}
		return seq, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
	}
}

// enter marks an anchored node as open until the returned func runs.
func (c *converter) enter(n *yaml.Node) func() {
	if n.Anchor == "" {
		return func() {}
	}
	c.open[n] = true
	return func() { delete(c.open, n) }
}

func (c *converter) alias(n *yaml.Node) (any, error) {
	if n.Alias == nil {
		return nil, errors.Newf(errors.ErrorTypeData, "line %d: unknown anchor %q", n.Line, n.Value)
	}
	if c.open[n.Alias] {
		return nil, errors.Newf(errors.ErrorTypeData, "line %d: recursive alias %q", n.Line, n.Value)
	}
	c.aliasDepth++
	defer func() { c.aliasDepth-- }()
	return c.convert(n.Alias)
}

func (c *converter) mapping(n *yaml.Node) (*Map, error) {
	m := NewMap()
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]

		if k.Kind == yaml.ScalarNode && k.Tag == "!!merge" {
			if err := c.merge(m, v); err != nil {
				return nil, err
			}
			continue
		}

		key, err := c.key(k)
		if err != nil {
			return nil, err
		}
		val, err := c.convert(v)
		if err != nil {
			return nil, err
		}
		m.Set(key, val)
	}
	return m, nil
}

// merge applies a "<<" merge key: entries of the referenced mapping(s) are
// added unless the key is already present.
func (c *converter) merge(m *Map, v *yaml.Node) error {
	sources := []*yaml.Node{v}
	if v.Kind == yaml.SequenceNode {
		sources = v.Content
	}
	for _, src := range sources {
		val, err := c.convert(src)
		if err != nil {
			return err
		}
		merged, ok := val.(*Map)
		if !ok {
			return fmt.Errorf("line %d: merge key value is not a mapping", src.Line)
		}
		for p := merged.Oldest(); p != nil; p = p.Next() {
			if _, present := m.Get(p.Key); !present {
				m.Set(p.Key, p.Value)
			}
		}
	}
	return nil
}

// key renders a mapping key as a path segment. Scalar keys keep their source
// spelling so that "1.0" or "true" are not reformatted.
func (c *converter) key(k *yaml.Node) (string, error) {
	if k.Kind == yaml.AliasNode && k.Alias != nil && k.Alias.Kind == yaml.ScalarNode {
		k = k.Alias
	}
	if k.Kind == yaml.ScalarNode {
		return k.Value, nil
	}
	v, err := c.convert(k)
	if err != nil {
		return "", err
	}
	return fmt.Sprint(v), nil
}
