// Package filter implements the batch exclusion filter chain. Filters run
// over the full candidate list at once, answer with parallel boolean arrays,
// and are ANDed together: a candidate survives only if every filter keeps
// it. Filters never reorder candidates.
package filter

import (
	"go.uber.org/zap"

	"github.com/stratumcfg/stratum/pkg/errors"
	"github.com/stratumcfg/stratum/pkg/logger"
	"github.com/stratumcfg/stratum/pkg/manifest"
	"github.com/stratumcfg/stratum/pkg/resource"
)

// Capability flags declare which context facets a filter needs. Only the
// requested facets are injected; everything else stays nil so a filter
// cannot grow undeclared dependencies.
type Capability uint8

const (
	CapEnvironment Capability = 1 << iota
	CapResources
	CapRegistry
)

// PropertyEnvironment is the environment facet exposed to filters.
type PropertyEnvironment interface {
	ContainsKey(key string) bool
	GetProperty(key string) (string, bool)
	AcceptsProfiles(declared ...string) bool
}

// CandidateRegistry is the discovery facet exposed to filters.
type CandidateRegistry interface {
	Known(id string) bool
}

// Context carries the facets a filter may request via its capabilities.
type Context struct {
	Environment PropertyEnvironment
	Resources   resource.Loader
	Registry    CandidateRegistry
	Logger      *zap.Logger
}

// Filter evaluates a batch of candidates. Match returns one boolean per
// candidate, in the same positions; false means exclude.
type Filter interface {
	// Name identifies the filter in logs and trace output.
	Name() string
	// Requires declares the context facets the filter consumes.
	Requires() Capability
	// Inject hands the filter its masked context before Match runs.
	Inject(ctx Context)
	// Match evaluates all candidates in one pass.
	Match(ids []string, meta *manifest.Metadata) []bool
}

// Chain runs filters in registration order with short-circuiting on
// already-excluded candidates.
type Chain struct {
	filters []Filter
	ctx     Context
	logger  *zap.Logger
}

// NewChain builds a chain around a shared context. Each filter receives only
// the facets its capabilities request.
func NewChain(ctx Context, filters ...Filter) *Chain {
	log := ctx.Logger
	if log == nil {
		log = logger.Get()
	}
	return &Chain{
		filters: filters,
		ctx:     ctx,
		logger:  log.With(zap.String("component", "filter_chain")),
	}
}

// Apply runs every filter over the candidates and returns the survivors in
// their original order. When nothing was excluded the input slice is
// returned as-is.
func (c *Chain) Apply(ids []string, meta *manifest.Metadata) ([]string, error) {
	if len(c.filters) == 0 || len(ids) == 0 {
		return ids, nil
	}

	skip := make([]bool, len(ids))
	skipped := false
	for _, f := range c.filters {
		f.Inject(mask(c.ctx, f.Requires()))
		match := f.Match(ids, meta)
		if len(match) != len(ids) {
			return nil, errors.Newf(errors.ErrorTypeInternal,
				"filter %q returned %d results for %d candidates",
				f.Name(), len(match), len(ids))
		}
		for i, ok := range match {
			if !ok && !skip[i] {
				skip[i] = true
				skipped = true
				c.logger.Debug("candidate filtered",
					zap.String("filter", f.Name()), zap.String("candidate", ids[i]))
			}
		}
	}
	if !skipped {
		return ids, nil
	}

	out := make([]string, 0, len(ids))
	for i, id := range ids {
		if !skip[i] {
			out = append(out, id)
		}
	}
	return out, nil
}

func mask(ctx Context, caps Capability) Context {
	masked := Context{Logger: ctx.Logger}
	if caps&CapEnvironment != 0 {
		masked.Environment = ctx.Environment
	}
	if caps&CapResources != 0 {
		masked.Resources = ctx.Resources
	}
	if caps&CapRegistry != 0 {
		masked.Registry = ctx.Registry
	}
	return masked
}
