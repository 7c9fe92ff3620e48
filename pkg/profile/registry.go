package profile

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"

	"github.com/ajitpratap0/hconf/pkg/document"
)

// Registry maps profile names to profiles in declaration order.
type Registry struct {
	profiles *orderedmap.OrderedMap[string, *Profile]
	skipped  int
	resolved bool
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{profiles: orderedmap.New[string, *Profile]()}
}

// Add registers p. A profile with the same name is replaced but keeps its
// position; the return value reports whether that happened.
func (r *Registry) Add(p *Profile) bool {
	_, replaced := r.profiles.Set(p.Name, p)
	return replaced
}

// Get returns the named profile
func (r *Registry) Get(name string) (*Profile, bool) {
	return r.profiles.Get(name)
}

// Len returns the number of registered profiles
func (r *Registry) Len() int {
	return r.profiles.Len()
}

// Names returns profile names in declaration order
func (r *Registry) Names() []string {
	out := make([]string, 0, r.profiles.Len())
	for pair := r.profiles.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Profiles returns the profiles in declaration order
func (r *Registry) Profiles() []*Profile {
	out := make([]*Profile, 0, r.profiles.Len())
	for pair := r.profiles.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Skipped returns how many documents BuildRegistry ignored for lacking a
// profile name.
func (r *Registry) Skipped() int {
	return r.skipped
}

// Resolved reports whether inheritance has already been applied.
func (r *Registry) Resolved() bool {
	return r.resolved
}

// Properties returns the nested profile -> configuration -> properties view.
// Property slices are shared with the registry.
func (r *Registry) Properties() Properties {
	out := make(Properties, r.profiles.Len())
	for pair := r.profiles.Oldest(); pair != nil; pair = pair.Next() {
		configs := make(map[string][]Property)
		for _, c := range pair.Value.Configurations() {
			configs[c.Name] = c.Properties
		}
		out[pair.Key] = configs
	}
	return out
}

// BuildRegistry creates one profile per document that carries a profile
// name. Documents without one are skipped and counted.
func BuildRegistry(docs []*document.Map, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "profile_registry"))

	reg := NewRegistry()
	for i, doc := range docs {
		desc, ok := ExtractDescriptor(doc)
		if !ok {
			reg.skipped++
			logger.Debug("skipping document without profile name", zap.Int("document", i))
			continue
		}

		p := NewProfile(desc.Name, desc.Parent)
		for _, c := range ExtractConfigurations(doc) {
			p.SetConfiguration(c)
		}

		if reg.Add(p) {
			logger.Warn("profile declared more than once, later document wins",
				zap.String("profile", desc.Name),
				zap.Int("document", i))
			continue
		}
		logger.Debug("registered profile",
			zap.String("profile", desc.Name),
			zap.String("parent", desc.Parent),
			zap.Int("configurations", len(p.ConfigurationNames())))
	}
	return reg
}
