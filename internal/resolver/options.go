package resolver

import (
	"github.com/stratumcfg/stratum/pkg/document"
	"github.com/stratumcfg/stratum/pkg/filter"
	"github.com/stratumcfg/stratum/pkg/resource"
)

// Environment keys the resolver recognises.
const (
	// ConfigNameProperty overrides the search names.
	ConfigNameProperty = "stratum.config.name"
	// ConfigLocationProperty replaces the search locations entirely.
	ConfigLocationProperty = "stratum.config.location"
	// ConfigAdditionalLocationProperty prepends locations that win over the
	// defaults.
	ConfigAdditionalLocationProperty = "stratum.config.additional-location"
	// EnabledProperty turns contribution resolution off; it is ANDed with
	// Options.Enabled.
	EnabledProperty = "stratum.contributions.enabled"
)

// Options configure one resolution pass. The zero value is not usable;
// start from DefaultOptions.
type Options struct {
	// Category selects which manifest category to resolve contributions for.
	Category string
	// Exclude lists contribution identifiers to suppress.
	Exclude []string
	// ExcludeNames lists additional identifiers to suppress, kept separate
	// so callers can distinguish programmatic from configured exclusions.
	ExcludeNames []string
	// SearchLocations are the roots probed for configuration documents,
	// written least specific first. Empty means the defaults.
	SearchLocations []string
	// SearchNames are the base filenames probed per location, written least
	// specific first. Empty means "application".
	SearchNames []string
	// Enabled gates contribution resolution. Document loading always runs.
	Enabled bool
	// Loaders are the document format loaders, in probe order. Empty means
	// the built-in set.
	Loaders []document.Loader
	// Filters run over the candidate batch in registration order.
	Filters []filter.Filter
	// Resolvable reports whether an excluded identifier exists at all in
	// the host; unresolvable identifiers skip exclusion validation. Nil
	// treats every identifier as resolvable.
	Resolvable func(string) bool
	// Listeners observe the finished contribution list.
	Listeners []Listener
}

// DefaultOptions returns the standard options: contribution resolution
// enabled, default locations and names, built-in loaders, reference filters.
func DefaultOptions(category string) Options {
	return Options{
		Category:        category,
		Enabled:         true,
		SearchLocations: resource.DefaultSearchLocations(),
		SearchNames:     []string{resource.DefaultSearchName},
		Loaders:         document.DefaultLoaders(),
		Filters: []filter.Filter{
			filter.NewRequiresKeyFilter(),
			filter.NewProfileFilter(),
		},
	}
}

func (o *Options) searchLocations() []string {
	if len(o.SearchLocations) > 0 {
		return o.SearchLocations
	}
	return resource.DefaultSearchLocations()
}

func (o *Options) searchNames() []string {
	if len(o.SearchNames) > 0 {
		return o.SearchNames
	}
	return []string{resource.DefaultSearchName}
}

func (o *Options) loaders() []document.Loader {
	if len(o.Loaders) > 0 {
		return o.Loaders
	}
	return document.DefaultLoaders()
}
