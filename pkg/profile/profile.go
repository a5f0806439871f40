// Package profile defines the named configuration overlays that drive
// document selection. The default profile is a distinguished sentinel that is
// always processed first with the lowest precedence.
package profile

import "strings"

// Profile identifies a configuration overlay. Equality is by name only.
// The zero value is the default sentinel.
type Profile struct {
	name  string
	deflt bool
}

// Default is the sentinel processed first with the lowest precedence. It is
// not a named profile and is never added to the environment's active set.
var Default = Profile{}

// New creates a named profile.
func New(name string) Profile {
	return Profile{name: name}
}

// NewDefault creates a named profile that came from the environment's
// configured default-profile names. Such profiles are loaded but never
// promoted to the active set and are discarded once a real activation occurs.
func NewDefault(name string) Profile {
	return Profile{name: name, deflt: true}
}

// Name returns the profile name, empty for the sentinel.
func (p Profile) Name() string {
	return p.name
}

// IsSentinel reports whether p is the default sentinel.
func (p Profile) IsSentinel() bool {
	return p.name == ""
}

// IsDefault reports whether p came from the default-profile names.
func (p Profile) IsDefault() bool {
	return p.deflt
}

func (p Profile) String() string {
	if p.IsSentinel() {
		return "<default>"
	}
	return p.name
}

// Accepts reports whether a document declaring the given profiles would be
// accepted when the listed profiles are active. A declared entry prefixed
// with "!" matches when that profile is not active. An empty declaration is
// always accepted.
func Accepts(active []string, declared []string) bool {
	if len(declared) == 0 {
		return true
	}
	for _, d := range declared {
		if matches(active, d) {
			return true
		}
	}
	return false
}

func matches(active []string, declared string) bool {
	if negated := strings.TrimPrefix(declared, "!"); negated != declared {
		return !contains(active, negated)
	}
	return contains(active, declared)
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
