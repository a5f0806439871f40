// Package environment is the live configuration view handed to callers and
// filters: the merged property stack plus the active and default profile
// sets. Property reads resolve placeholders against the full stack.
package environment

import (
	"sync"

	"github.com/spf13/cast"

	"github.com/stratumcfg/stratum/pkg/profile"
	"github.com/stratumcfg/stratum/pkg/property"
)

// Well-known environment keys.
const (
	ActiveProfilesProperty  = "stratum.profiles.active"
	IncludeProfilesProperty = "stratum.profiles.include"
)

// ReservedDefaultProfileName cannot be activated explicitly; it would alias
// the default sentinel. The profile mutators silently drop it from the
// active set.
const ReservedDefaultProfileName = "default"

// Environment combines a property stack with profile state.
type Environment struct {
	mu       sync.RWMutex
	stack    *property.Stack
	active   []string
	defaults []string
}

// New creates an environment over an empty stack with the standard default
// profile.
func New() *Environment {
	return &Environment{
		stack:    property.NewStack(),
		defaults: []string{ReservedDefaultProfileName},
	}
}

// NewWithStack creates an environment over an existing stack.
func NewWithStack(stack *property.Stack) *Environment {
	return &Environment{
		stack:    stack,
		defaults: []string{ReservedDefaultProfileName},
	}
}

// PropertySources exposes the underlying stack for merge operations.
func (e *Environment) PropertySources() *property.Stack {
	return e.stack
}

// ActiveProfiles returns the active profile names in activation order.
func (e *Environment) ActiveProfiles() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, len(e.active))
	copy(out, e.active)
	return out
}

// SetActiveProfiles replaces the active set. The reserved default profile
// name is dropped.
func (e *Environment) SetActiveProfiles(names ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = e.active[:0:0]
	for _, name := range names {
		if name != ReservedDefaultProfileName {
			e.active = append(e.active, name)
		}
	}
}

// AddActiveProfile appends a profile unless already active. The reserved
// default profile name is dropped.
func (e *Environment) AddActiveProfile(name string) {
	if name == ReservedDefaultProfileName {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, existing := range e.active {
		if existing == name {
			return
		}
	}
	e.active = append(e.active, name)
}

// DefaultProfiles returns the profiles assumed when nothing is active.
func (e *Environment) DefaultProfiles() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, len(e.defaults))
	copy(out, e.defaults)
	return out
}

// SetDefaultProfiles replaces the default profile names.
func (e *Environment) SetDefaultProfiles(names ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.defaults = append(e.defaults[:0:0], names...)
}

// AcceptsProfiles reports whether a document or contribution declaring the
// given profiles applies. The active set is consulted when non-empty,
// otherwise the default set stands in.
func (e *Environment) AcceptsProfiles(declared ...string) bool {
	e.mu.RLock()
	current := e.active
	if len(current) == 0 {
		current = e.defaults
	}
	names := make([]string, len(current))
	copy(names, current)
	e.mu.RUnlock()
	return profile.Accepts(names, declared)
}

// ContainsKey reports whether any layer defines the key.
func (e *Environment) ContainsKey(key string) bool {
	return e.stack.ContainsKey(key)
}

// GetProperty returns the highest-precedence value for key with placeholders
// resolved leniently: unresolvable references stay intact rather than fail.
func (e *Environment) GetProperty(key string) (string, bool) {
	raw, ok := e.stack.Lookup(key)
	if !ok {
		return "", false
	}
	return property.NewResolver(e.stack).Resolve(raw), true
}

// GetString returns the resolved value or def when absent.
func (e *Environment) GetString(key, def string) string {
	if v, ok := e.GetProperty(key); ok {
		return v
	}
	return def
}

// GetBool returns the value parsed as a boolean, or def when absent or
// unparseable.
func (e *Environment) GetBool(key string, def bool) bool {
	v, ok := e.GetProperty(key)
	if !ok {
		return def
	}
	parsed, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return parsed
}

// GetInt returns the value parsed as an integer, or def when absent or
// unparseable.
func (e *Environment) GetInt(key string, def int) int {
	v, ok := e.GetProperty(key)
	if !ok {
		return def
	}
	parsed, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return parsed
}

// GetStringSlice reads a string-list value: a comma-separated scalar or, when
// the key itself is absent, its indexed children (key[0], key[1], ...) as
// produced by the structured document loaders. Absent keys yield nil.
func (e *Environment) GetStringSlice(key string) []string {
	return property.ListValue(e.GetProperty, key)
}

// Bind decodes the subtree under key onto out with strict placeholder
// resolution.
func (e *Environment) Bind(key string, out interface{}) error {
	return property.Bind(e.stack, key, out)
}
