// Package hierarchy holds the fixed tier table of the org structure
// (company down to role) and answers parenting and depth questions about it.
package hierarchy

import (
	"embed"
	"fmt"
	"sort"
	"sync"

	models "vantage/internal/domain/models/orgtree"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry is an immutable view over the tier table
type Registry struct {
	tiers map[models.EntityType]*Tier
	order []models.EntityType
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry built from the embedded tiers.yaml.
// It panics if the embedded file is invalid, which is a build-time defect.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := NewRegistry()
		if err != nil {
			panic(fmt.Sprintf("hierarchy: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// NewRegistry loads and validates the embedded tier table
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/tiers.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read tiers.yaml: %w", err)
	}
	return Parse(data)
}

// Parse builds a registry from a tiers YAML document
func Parse(data []byte) (*Registry, error) {
	var table tierTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tiers: %w", err)
	}

	r := &Registry{tiers: make(map[models.EntityType]*Tier, len(table.Tiers))}
	for i := range table.Tiers {
		tier := table.Tiers[i]
		if _, dup := r.tiers[tier.Type]; dup {
			return nil, fmt.Errorf("duplicate tier %q", tier.Type)
		}
		r.tiers[tier.Type] = &tier
		r.order = append(r.order, tier.Type)
	}

	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// validate checks the table is a single chain rooted at company, and that the
// literal role depth cap agrees with the one derived from the work group tier.
func (r *Registry) validate() error {
	root, ok := r.tiers[models.EntityCompany]
	if !ok {
		return fmt.Errorf("tier table has no company tier")
	}
	if root.MaxDepth != 0 || len(root.Parents) != 0 {
		return fmt.Errorf("company tier must be the root at depth 0")
	}

	for _, t := range r.order {
		for _, p := range r.tiers[t].Parents {
			if _, ok := r.tiers[p]; !ok {
				return fmt.Errorf("tier %q references unknown parent %q", t, p)
			}
		}
	}

	wg, hasWG := r.tiers[models.EntityWorkGroup]
	role, hasRole := r.tiers[models.EntityRole]
	if hasWG && hasRole {
		// role directly under a work group, plus one reporting level
		if derived := wg.MaxDepth + 2; role.MaxDepth != derived {
			return fmt.Errorf("role max_depth %d does not match derived depth %d", role.MaxDepth, derived)
		}
	}
	return nil
}

// Tier returns the tier definition for an entity type
func (r *Registry) Tier(t models.EntityType) (*Tier, bool) {
	tier, ok := r.tiers[t]
	return tier, ok
}

// Known reports whether t is a tier of the hierarchy
func (r *Registry) Known(t models.EntityType) bool {
	_, ok := r.tiers[t]
	return ok
}

// MaxDepth returns the deepest allowed depth for t, or -1 for unknown types
func (r *Registry) MaxDepth(t models.EntityType) int {
	tier, ok := r.tiers[t]
	if !ok {
		return -1
	}
	return tier.MaxDepth
}

// AllowsParent reports whether an item of type child may sit directly under parent
func (r *Registry) AllowsParent(child, parent models.EntityType) bool {
	tier, ok := r.tiers[child]
	if !ok {
		return false
	}
	for _, p := range tier.Parents {
		if p == parent {
			return true
		}
	}
	return false
}

// Parents returns the allowed parent tiers for t
func (r *Registry) Parents(t models.EntityType) []models.EntityType {
	tier, ok := r.tiers[t]
	if !ok {
		return nil
	}
	return tier.Parents
}

// Label returns the display label of t, falling back to the raw tag
func (r *Registry) Label(t models.EntityType) string {
	if tier, ok := r.tiers[t]; ok && tier.Label != "" {
		return tier.Label
	}
	return string(t)
}

// Types returns all tiers from top to bottom
func (r *Registry) Types() []models.EntityType {
	out := make([]models.EntityType, len(r.order))
	copy(out, r.order)
	return out
}

// TagsLongestFirst returns tier tags sorted for unambiguous prefix matching:
// longer tags first, ties broken alphabetically.
func (r *Registry) TagsLongestFirst() []models.EntityType {
	tags := r.Types()
	sort.SliceStable(tags, func(i, j int) bool {
		if len(tags[i]) != len(tags[j]) {
			return len(tags[i]) > len(tags[j])
		}
		return tags[i] < tags[j]
	})
	return tags
}

// ChildType returns the tier that sits directly below t. Self-nesting (role
// under role) is not a child tier. ok is false for the bottom tier.
func (r *Registry) ChildType(t models.EntityType) (models.EntityType, bool) {
	for _, candidate := range r.order {
		if candidate == t {
			continue
		}
		for _, p := range r.tiers[candidate].Parents {
			if p == t {
				return candidate, true
			}
		}
	}
	return "", false
}
