// Package resolver orchestrates one configuration resolution pass: profile
// resolution, profile-aware document loading, property source merging, and
// the contribution pipeline (discovery, exclusion, filtering, ordering). A
// pass either fully succeeds or fully fails; no partial result is returned.
//
// A resolver is single-use and single-threaded. Hosts running independent
// passes in parallel must give each its own resolver, registry and
// environment; nothing here is safe to share mid-pass.
package resolver

import (
	"hash/fnv"
	"time"

	"go.uber.org/zap"

	"github.com/stratumcfg/stratum/pkg/environment"
	"github.com/stratumcfg/stratum/pkg/errors"
	"github.com/stratumcfg/stratum/pkg/logger"
	"github.com/stratumcfg/stratum/pkg/manifest"
	"github.com/stratumcfg/stratum/pkg/metrics"
	"github.com/stratumcfg/stratum/pkg/property"
	"github.com/stratumcfg/stratum/pkg/resource"
	stringpool "github.com/stratumcfg/stratum/pkg/strings"
)

// Context carries the capabilities a resolution pass needs. All fields
// except Metadata and Logger are required.
type Context struct {
	Environment *environment.Environment
	Resources   resource.Loader
	Registry    *manifest.Registry
	Metadata    *manifest.Metadata
	Logger      *zap.Logger
}

// Resolver runs resolution passes over a fixed context and options.
type Resolver struct {
	ctx    Context
	opts   Options
	logger *zap.Logger
}

// New creates a resolver. Missing optional context fields are defaulted.
func New(ctx Context, opts Options) (*Resolver, error) {
	if ctx.Environment == nil {
		return nil, errors.New(errors.ErrorTypeValidation, "resolver requires an environment")
	}
	if ctx.Resources == nil {
		return nil, errors.New(errors.ErrorTypeValidation, "resolver requires a resource loader")
	}
	if ctx.Registry == nil {
		return nil, errors.New(errors.ErrorTypeValidation, "resolver requires a candidate registry")
	}
	if ctx.Metadata == nil {
		ctx.Metadata = manifest.NewMetadata(nil)
	}
	if ctx.Logger == nil {
		ctx.Logger = logger.Get()
	}
	return &Resolver{
		ctx:    ctx,
		opts:   opts,
		logger: ctx.Logger.With(zap.String("component", "resolver")),
	}, nil
}

// ResolvedConfiguration is the immutable outcome of one pass.
type ResolvedConfiguration struct {
	// Contributions is the final ordered contribution list.
	Contributions []string
	// Exclusions is the complete exclusion set that was applied.
	Exclusions []string
	// Profiles are the profiles processed during document loading, in
	// processing order, excluding the sentinel.
	Profiles []string

	searchLocations []string
	searchNames     []string
	stack           *property.Stack
}

// PropertySources returns the merged layer stack.
func (c *ResolvedConfiguration) PropertySources() *property.Stack {
	return c.stack
}

// Fingerprint identifies the inputs that shaped this configuration: active
// profiles, the effective search locations and names, contributions and
// exclusions. Two passes over identical inputs produce equal fingerprints,
// so callers may cache by it.
func (c *ResolvedConfiguration) Fingerprint() string {
	h := fnv.New64a()
	groups := [][]string{
		c.Profiles,
		c.searchLocations,
		c.searchNames,
		c.Contributions,
		c.Exclusions,
	}
	for _, group := range groups {
		for _, item := range group {
			h.Write([]byte(item))
			h.Write([]byte{0})
		}
		h.Write([]byte{0xff})
	}
	return stringpool.Sprintf("%016x", h.Sum64())
}

// Resolve runs one full pass: documents and profiles first, contributions
// second, both driven by the same environment.
func (r *Resolver) Resolve() (*ResolvedConfiguration, error) {
	start := time.Now()
	cfg, err := r.resolve()
	metrics.ObserveResolution(start, err)
	if err != nil {
		r.logger.Error("resolution failed", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}

func (r *Resolver) resolve() (*ResolvedConfiguration, error) {
	dl := newDocumentLoader(r.ctx, &r.opts, r.logger)
	if err := dl.load(); err != nil {
		return nil, err
	}

	contributions, exclusions, err := r.resolveContributions()
	if err != nil {
		return nil, err
	}

	return &ResolvedConfiguration{
		Contributions:   contributions,
		Exclusions:      exclusions,
		Profiles:        r.ctx.Environment.ActiveProfiles(),
		searchLocations: dl.searchLocations(),
		searchNames:     dl.searchNames(),
		stack:           r.ctx.Environment.PropertySources(),
	}, nil
}
