// Package features maps DRIMS role codes to the features they unlock.
//
// The table is embedded in the binary and parsed once. A Registry is never
// modified after Load returns, so it is safe for concurrent use without
// locking.
package features

import (
	"bytes"
	_ "embed"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"gopkg.in/yaml.v3"
)

//go:embed features.yaml
var defaultTable []byte

const defaultPriority = 999

// Feature describes one unit of functionality and the roles allowed to use it.
type Feature struct {
	Key             string   `json:"key" yaml:"key"`
	Name            string   `json:"name" yaml:"name"`
	Description     string   `json:"description" yaml:"description"`
	Roles           []string `json:"roles" yaml:"roles"`
	URL             string   `json:"url" yaml:"url"`
	Icon            string   `json:"icon" yaml:"icon"`
	Category        string   `json:"category" yaml:"category"`
	DashboardWidget string   `json:"dashboard_widget,omitempty" yaml:"dashboard_widget"`
	NavigationGroup string   `json:"navigation_group,omitempty" yaml:"navigation_group"`
	Priority        int      `json:"priority" yaml:"-"`
	IsDashboard     bool     `json:"is_dashboard,omitempty" yaml:"is_dashboard"`

	roles mapset.Set[string]
}

// Role is a role code with its display name.
type Role struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

type table struct {
	Roles    []Role `yaml:"roles"`
	Features []struct {
		Feature  `yaml:",inline"`
		Priority *int `yaml:"priority"`
	} `yaml:"features"`
}

// Registry is an immutable feature table.
type Registry struct {
	features  []*Feature
	byKey     map[string]*Feature
	roles     []Role
	roleNames map[string]string
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the registry built from the embedded table.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := Load(defaultTable)
		if err != nil {
			panic(fmt.Sprintf("features: embedded table is invalid: %v", err))
		}
		defaultReg = r
	})
	return defaultReg
}

// Load parses a YAML feature table.
func Load(data []byte) (*Registry, error) {
	var t table
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("parse feature table: %w", err)
	}

	r := &Registry{
		byKey:     make(map[string]*Feature, len(t.Features)),
		roles:     t.Roles,
		roleNames: make(map[string]string, len(t.Roles)),
	}
	for _, role := range t.Roles {
		if role.Code == "" {
			return nil, fmt.Errorf("role with empty code")
		}
		if _, dup := r.roleNames[role.Code]; dup {
			return nil, fmt.Errorf("duplicate role %q", role.Code)
		}
		r.roleNames[role.Code] = role.Name
	}

	for i := range t.Features {
		f := t.Features[i].Feature
		if f.Key == "" {
			return nil, fmt.Errorf("feature %d has no key", i)
		}
		if _, dup := r.byKey[f.Key]; dup {
			return nil, fmt.Errorf("duplicate feature %q", f.Key)
		}
		if len(f.Roles) == 0 {
			return nil, fmt.Errorf("feature %q grants no roles", f.Key)
		}
		for _, code := range f.Roles {
			if _, ok := r.roleNames[code]; !ok {
				return nil, fmt.Errorf("feature %q references unknown role %q", f.Key, code)
			}
		}
		f.Priority = defaultPriority
		if p := t.Features[i].Priority; p != nil {
			f.Priority = *p
		}
		f.roles = mapset.NewThreadUnsafeSet(f.Roles...)
		r.features = append(r.features, &f)
		r.byKey[f.Key] = &f
	}
	return r, nil
}

// Get returns the feature registered under key.
func (r *Registry) Get(key string) (Feature, bool) {
	f, ok := r.byKey[key]
	if !ok {
		return Feature{}, false
	}
	return f.clone(), true
}

// Keys returns all feature keys in table order.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.features))
	for i, f := range r.features {
		keys[i] = f.Key
	}
	return keys
}

// Roles returns the known roles in precedence order.
func (r *Registry) Roles() []Role {
	return slices.Clone(r.roles)
}

// HasAccess reports whether any of roles is granted the feature. Unknown
// features grant nothing.
func (r *Registry) HasAccess(roles []string, key string) bool {
	f, ok := r.byKey[key]
	if !ok {
		return false
	}
	return f.grants(roleSet(roles))
}

// Accessible returns every feature granted to roles, in table order.
func (r *Registry) Accessible(roles []string) []Feature {
	return r.filter(roles, func(*Feature) bool { return true })
}

// Dashboard returns accessible features that carry a dashboard widget,
// highest priority first.
func (r *Registry) Dashboard(roles []string) []Feature {
	out := r.filter(roles, func(f *Feature) bool { return f.DashboardWidget != "" })
	byPriority(out)
	return out
}

// Navigation returns accessible features in a navigation group, highest
// priority first. An empty group matches any feature with a group.
func (r *Registry) Navigation(roles []string, group string) []Feature {
	out := r.filter(roles, func(f *Feature) bool {
		if group != "" {
			return f.NavigationGroup == group
		}
		return f.NavigationGroup != ""
	})
	byPriority(out)
	return out
}

// ByCategory returns accessible features in category, in table order.
func (r *Registry) ByCategory(roles []string, category string) []Feature {
	return r.filter(roles, func(f *Feature) bool { return f.Category == category })
}

// Landing returns the highest-priority dashboard page for roles.
func (r *Registry) Landing(roles []string) (Feature, bool) {
	out := r.filter(roles, func(f *Feature) bool { return f.IsDashboard })
	if len(out) == 0 {
		return Feature{}, false
	}
	byPriority(out)
	return out[0], true
}

// PrimaryRole picks the most senior known role. Users holding only unknown
// roles get the lexically smallest one; no roles yields "".
func (r *Registry) PrimaryRole(roles []string) string {
	held := roleSet(roles)
	for _, role := range r.roles {
		if held.Contains(role.Code) {
			return role.Code
		}
	}
	if held.Cardinality() == 0 {
		return ""
	}
	codes := held.ToSlice()
	sort.Strings(codes)
	return codes[0]
}

// RoleDisplayName returns the human-readable name of a role code, or the
// code itself when unknown.
func (r *Registry) RoleDisplayName(code string) string {
	if name, ok := r.roleNames[code]; ok {
		return name
	}
	return code
}

func (r *Registry) filter(roles []string, keep func(*Feature) bool) []Feature {
	held := roleSet(roles)
	var out []Feature
	for _, f := range r.features {
		if f.grants(held) && keep(f) {
			out = append(out, f.clone())
		}
	}
	return out
}

func (f *Feature) grants(held mapset.Set[string]) bool {
	return f.roles.Intersect(held).Cardinality() > 0
}

func (f *Feature) clone() Feature {
	c := *f
	c.Roles = slices.Clone(f.Roles)
	c.roles = nil
	return c
}

func roleSet(roles []string) mapset.Set[string] {
	s := mapset.NewThreadUnsafeSet[string]()
	for _, r := range roles {
		if r = strings.TrimSpace(r); r != "" {
			s.Add(r)
		}
	}
	return s
}

// byPriority sorts highest priority first, keeping table order for ties.
func byPriority(fs []Feature) {
	sort.SliceStable(fs, func(i, j int) bool { return fs[i].Priority > fs[j].Priority })
}
