package resolver

import (
	"go.uber.org/zap"

	"github.com/stratumcfg/stratum/pkg/exclusion"
	"github.com/stratumcfg/stratum/pkg/filter"
	"github.com/stratumcfg/stratum/pkg/manifest"
	"github.com/stratumcfg/stratum/pkg/metrics"
	"github.com/stratumcfg/stratum/pkg/order"
)

// resolveContributions runs discovery, exclusion, filtering and ordering for
// the configured category, then notifies listeners. Returns the ordered
// contribution list and the exclusion set.
func (r *Resolver) resolveContributions() ([]string, []string, error) {
	if !r.enabled() {
		r.logger.Debug("contribution resolution disabled")
		return nil, nil, nil
	}

	candidates, err := r.ctx.Registry.LoadCandidates(r.opts.Category)
	if err != nil {
		return nil, nil, err
	}
	candidates = manifest.RemoveDuplicates(candidates)

	exclusions := exclusion.Build(r.opts.Exclude, r.opts.ExcludeNames, r.ctx.Environment)
	if err := exclusion.Validate(candidates, exclusions, r.opts.Resolvable); err != nil {
		return nil, nil, err
	}
	remaining := exclusion.Subtract(candidates, exclusions)
	if removed := len(candidates) - len(remaining); removed > 0 {
		metrics.CandidatesFiltered.WithLabelValues("exclusion").Add(float64(removed))
	}

	chain := filter.NewChain(filter.Context{
		Environment: r.ctx.Environment,
		Resources:   r.ctx.Resources,
		Registry:    r.ctx.Registry,
		Logger:      r.logger,
	}, r.opts.Filters...)
	filtered, err := chain.Apply(remaining, r.ctx.Metadata)
	if err != nil {
		return nil, nil, err
	}
	if removed := len(remaining) - len(filtered); removed > 0 {
		metrics.CandidatesFiltered.WithLabelValues("filter").Add(float64(removed))
	}

	sorted, err := order.Sort(filtered, r.ctx.Metadata)
	if err != nil {
		return nil, nil, err
	}

	if len(r.opts.Listeners) > 0 {
		event := Event{
			Contributions: append(make([]string, 0, len(sorted)), sorted...),
			Exclusions:    append(make([]string, 0, len(exclusions)), exclusions...),
		}
		for _, l := range r.opts.Listeners {
			if err := l.OnResolved(event); err != nil {
				return nil, nil, err
			}
		}
	}

	r.logger.Info("contributions resolved",
		zap.String("category", r.opts.Category),
		zap.Int("discovered", len(candidates)),
		zap.Int("resolved", len(sorted)),
		zap.Int("excluded", len(exclusions)))
	return sorted, exclusions, nil
}

func (r *Resolver) enabled() bool {
	if !r.opts.Enabled {
		return false
	}
	return r.ctx.Environment.GetBool(EnabledProperty, true)
}
