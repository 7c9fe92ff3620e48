package profile

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ajitpratap0/hconf/pkg/errors"
)

// Mode selects the order in which parents are merged into children.
type Mode string

const (
	// ModeTopological merges ancestors before descendants, so chains of any
	// length propagate regardless of declaration order.
	ModeTopological Mode = "topological"
	// ModeSinglePass walks the registry once in declaration order. A chain
	// only propagates when every parent is declared before its children.
	ModeSinglePass Mode = "single-pass"
)

// Modes lists the supported modes
func Modes() []Mode {
	return []Mode{ModeTopological, ModeSinglePass}
}

// ParseMode parses a mode name; the empty string selects ModeTopological.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeTopological:
		return ModeTopological, nil
	case ModeSinglePass, "singlepass", "single_pass":
		return ModeSinglePass, nil
	}
	return "", errors.Newf(errors.ErrorTypeValidation, "unknown resolution mode %q", s).
		WithDetail("available", Modes())
}

// ResolveReport describes what a Resolve call did.
type ResolveReport struct {
	Mode Mode
	// Order is the sequence in which children received their parent.
	Order []string
	// Orphans are profiles whose parent is not registered.
	Orphans []string
	// Extended counts configurations that received parent properties.
	Extended int
	// Inherited counts configurations copied whole from a parent.
	Inherited int
	// AlreadyResolved is set when the registry had been resolved before.
	AlreadyResolved bool
}

// Resolver applies profile inheritance to a registry.
type Resolver struct {
	mode   Mode
	logger *zap.Logger
}

// NewResolver creates a resolver. A nil logger discards output.
func NewResolver(mode Mode, logger *zap.Logger) *Resolver {
	if mode == "" {
		mode = ModeTopological
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		mode:   mode,
		logger: logger.With(zap.String("component", "profile_resolver")),
	}
}

// Mode returns the resolver's mode
func (r *Resolver) Mode() Mode {
	return r.mode
}

// Resolve merges every profile's parent into it, mutating reg. Calling it
// again on the same registry does nothing. A cycle is reported before any
// profile is modified.
func (r *Resolver) Resolve(reg *Registry) (*ResolveReport, error) {
	report := &ResolveReport{Mode: r.mode}
	if reg.resolved {
		report.AlreadyResolved = true
		r.logger.Debug("registry already resolved")
		return report, nil
	}

	report.Orphans = r.orphans(reg)

	var order []*Profile
	switch r.mode {
	case ModeTopological:
		var err error
		if order, err = topologicalOrder(reg); err != nil {
			return nil, err
		}
	case ModeSinglePass:
		order = reg.Profiles()
	default:
		return nil, errors.Newf(errors.ErrorTypeValidation, "unknown resolution mode %q", r.mode)
	}

	for _, child := range order {
		parent, ok := parentOf(reg, child)
		if !ok {
			continue
		}
		extended, inherited := merge(parent, child)
		report.Extended += extended
		report.Inherited += inherited
		report.Order = append(report.Order, child.Name)
		r.logger.Debug("merged parent profile",
			zap.String("profile", child.Name),
			zap.String("parent", parent.Name),
			zap.Int("extended", extended),
			zap.Int("inherited", inherited))
	}

	reg.resolved = true
	r.logger.Info("profiles resolved",
		zap.String("mode", string(r.mode)),
		zap.Int("profiles", reg.Len()),
		zap.Int("merged", len(report.Order)),
		zap.Int("orphans", len(report.Orphans)))
	return report, nil
}

func (r *Resolver) orphans(reg *Registry) []string {
	var out []string
	for _, p := range reg.Profiles() {
		if !p.HasParent() {
			continue
		}
		if _, ok := reg.Get(p.Parent); ok {
			continue
		}
		out = append(out, p.Name)
		if p.Parent == DefaultParent {
			r.logger.Debug("no default profile to inherit from", zap.String("profile", p.Name))
		} else {
			r.logger.Warn("parent profile not found, skipping inheritance",
				zap.String("profile", p.Name),
				zap.String("parent", p.Parent))
		}
	}
	return out
}

// parentOf returns the registered parent of p, if it has one.
func parentOf(reg *Registry, p *Profile) (*Profile, bool) {
	if !p.HasParent() {
		return nil, false
	}
	return reg.Get(p.Parent)
}

// merge folds parent's configurations into child: shared names get the
// parent's properties after the child's own, missing ones are deep-copied.
func merge(parent, child *Profile) (extended, inherited int) {
	for _, pc := range parent.Configurations() {
		if cc, ok := child.Configuration(pc.Name); ok {
			cc.Properties = append(cc.Properties, cloneProperties(pc.Properties)...)
			extended++
			continue
		}
		child.SetConfiguration(pc.Clone())
		inherited++
	}
	return extended, inherited
}

// topologicalOrder returns the profiles with every parent ahead of its
// children (Kahn's algorithm). Among ready profiles the one declared first
// goes first.
func topologicalOrder(reg *Registry) ([]*Profile, error) {
	profiles := reg.Profiles()
	index := make(map[string]int, len(profiles))
	for i, p := range profiles {
		index[p.Name] = i
	}

	children := make([][]int, len(profiles))
	indegree := make([]int, len(profiles))
	for i, p := range profiles {
		parent, ok := parentOf(reg, p)
		if !ok {
			continue
		}
		pi := index[parent.Name]
		children[pi] = append(children[pi], i)
		indegree[i]++
	}

	var ready []int
	for i := range profiles {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]*Profile, 0, len(profiles))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, profiles[n])
		for _, c := range children[n] {
			indegree[c]--
			if indegree[c] == 0 {
				at := sort.SearchInts(ready, c)
				ready = append(ready, 0)
				copy(ready[at+1:], ready[at:])
				ready[at] = c
			}
		}
	}

	if len(order) == len(profiles) {
		return order, nil
	}

	members := cycleMembers(reg, profiles, indegree)
	return nil, errors.Newf(errors.ErrorTypeConfig,
		"inheritance cycle between profiles: %s", strings.Join(members, ", ")).
		WithDetail("profiles", members)
}

// cycleMembers returns, in declaration order, the unplaced profiles whose
// parent chain leads back to themselves. Descendants of a cycle are left out.
func cycleMembers(reg *Registry, profiles []*Profile, indegree []int) []string {
	var members []string
	for i, p := range profiles {
		if indegree[i] == 0 {
			continue
		}
		cur := p
		for steps := 0; steps < len(profiles); steps++ {
			next, ok := parentOf(reg, cur)
			if !ok {
				break
			}
			if next.Name == p.Name {
				members = append(members, p.Name)
				break
			}
			cur = next
		}
	}
	return members
}
