// Package stratum resolves layered configuration: it discovers conditional
// contribution candidates, validates exclusions, filters and orders the
// survivors, loads profile-scoped configuration documents from a set of
// search locations, and merges everything into one deterministic,
// placeholder-aware property view.
//
// # Quick start
//
//	env := environment.New()
//	registry := manifest.NewRegistry()
//	registry.Register("datasource", "postgres", "mysql")
//
//	cfg, err := stratum.Resolve(stratum.Context{
//		Environment: env,
//		Resources:   resource.NewLoader(bundledFS),
//		Registry:    registry,
//	}, stratum.DefaultOptions("datasource"))
//	if err != nil {
//		return err
//	}
//	port := env.GetInt("server.port", 8080)
//
// Profiles activate overlays: a document may declare itself for a profile
// ("stratum.profiles"), activate further profiles ("stratum.profiles.active")
// or include them ("stratum.profiles.include"). Precedence is deterministic:
// profile-specific documents override unconditional ones, later-processed
// profiles override earlier ones, more specific locations override less
// specific ones, and layers installed before resolving override everything
// loaded from files. Placeholders like ${key} and ${key:fallback} resolve
// lazily against the fully merged stack.
package stratum

import (
	"github.com/stratumcfg/stratum/internal/resolver"
)

// Re-exported resolution types. The reusable building blocks live in the
// pkg/ packages; this package is the assembled pipeline.
type (
	Options               = resolver.Options
	Context               = resolver.Context
	Event                 = resolver.Event
	Listener              = resolver.Listener
	ListenerFunc          = resolver.ListenerFunc
	MetricsListener       = resolver.MetricsListener
	Resolver              = resolver.Resolver
	ResolvedConfiguration = resolver.ResolvedConfiguration
)

// Recognized environment keys.
const (
	ConfigNameProperty               = resolver.ConfigNameProperty
	ConfigLocationProperty           = resolver.ConfigLocationProperty
	ConfigAdditionalLocationProperty = resolver.ConfigAdditionalLocationProperty
	EnabledProperty                  = resolver.EnabledProperty
)

// DefaultOptions returns the standard options for a contribution category.
func DefaultOptions(category string) Options {
	return resolver.DefaultOptions(category)
}

// New creates a resolver over a fixed context and options. A resolver is
// single-use: give each pass a fresh environment and resolver.
func New(ctx Context, opts Options) (*Resolver, error) {
	return resolver.New(ctx, opts)
}

// Resolve runs one resolution pass.
func Resolve(ctx Context, opts Options) (*ResolvedConfiguration, error) {
	r, err := resolver.New(ctx, opts)
	if err != nil {
		return nil, err
	}
	return r.Resolve()
}
