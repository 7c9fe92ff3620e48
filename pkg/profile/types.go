package profile

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/ajitpratap0/hconf/pkg/document"
)

// DefaultParent is the parent of every profile that does not declare one.
const DefaultParent = "default"

// Property is one flattened leaf: a dotted path and the leaf value.
type Property struct {
	Path  string
	Value any
}

// Configuration is a named, ordered property list; one output artifact.
type Configuration struct {
	Name       string
	Properties []Property
}

// Clone returns a deep copy; list values are copied too.
func (c *Configuration) Clone() *Configuration {
	return &Configuration{
		Name:       c.Name,
		Properties: cloneProperties(c.Properties),
	}
}

// Lookup returns the value of the last property with the given path, which
// is the value a last-write-wins consumer sees.
func (c *Configuration) Lookup(path string) (any, bool) {
	for i := len(c.Properties) - 1; i >= 0; i-- {
		if c.Properties[i].Path == path {
			return c.Properties[i].Value, true
		}
	}
	return nil, false
}

func cloneProperties(props []Property) []Property {
	if props == nil {
		return nil
	}
	out := make([]Property, len(props))
	for i, p := range props {
		out[i] = Property{Path: p.Path, Value: document.CloneValue(p.Value)}
	}
	return out
}

// Profile is a named set of configurations that may extend another profile.
type Profile struct {
	Name   string
	Parent string

	configs *orderedmap.OrderedMap[string, *Configuration]
}

// NewProfile creates an empty profile
func NewProfile(name, parent string) *Profile {
	return &Profile{
		Name:    name,
		Parent:  parent,
		configs: orderedmap.New[string, *Configuration](),
	}
}

// Configuration returns the named configuration
func (p *Profile) Configuration(name string) (*Configuration, bool) {
	return p.configs.Get(name)
}

// Configurations returns the configurations in declaration order; inherited
// configurations follow the profile's own.
func (p *Profile) Configurations() []*Configuration {
	out := make([]*Configuration, 0, p.configs.Len())
	for pair := p.configs.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// ConfigurationNames returns the configuration names in order
func (p *Profile) ConfigurationNames() []string {
	out := make([]string, 0, p.configs.Len())
	for pair := p.configs.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// SetConfiguration adds c, replacing a configuration with the same name in place
func (p *Profile) SetConfiguration(c *Configuration) {
	p.configs.Set(c.Name, c)
}

// HasParent reports whether the profile names a parent other than itself.
func (p *Profile) HasParent() bool {
	return p.Parent != "" && p.Parent != p.Name
}

// Properties is the emitter-facing view of a resolved registry:
// profile -> configuration -> ordered properties.
type Properties map[string]map[string][]Property
