// Package manifest implements the contribution discovery registry. A
// discovery manifest maps a contribution category to an ordered list of
// candidate identifiers; candidates may also be registered programmatically
// at startup. The registry knows nothing about ordering, filtering or
// exclusion — it only discovers.
package manifest

import (
	"io"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/stratumcfg/stratum/pkg/errors"
	"github.com/stratumcfg/stratum/pkg/logger"
	"github.com/stratumcfg/stratum/pkg/resource"
)

// Registry manages candidate discovery per contribution category.
type Registry struct {
	mu         sync.RWMutex
	categories map[string][]string
	logger     *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		categories: make(map[string][]string),
		logger:     logger.Get().With(zap.String("component", "manifest_registry")),
	}
}

// Register appends candidate identifiers to a category, preserving
// registration order. Duplicates are kept; deduplication happens in the
// resolution pipeline so that manifest order stays observable.
func (r *Registry) Register(category string, ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.categories[category] = append(r.categories[category], ids...)
	r.logger.Debug("candidates registered",
		zap.String("category", category), zap.Int("count", len(ids)))
}

// LoadManifest reads a YAML discovery manifest mapping categories to ordered
// candidate identifier lists and merges it into the registry. A missing or
// unreadable manifest is a fatal discovery error.
func (r *Registry) LoadManifest(res resource.Resource) error {
	if !res.Exists() {
		return errors.Newf(errors.ErrorTypeDiscovery,
			"discovery manifest %q not found", res.Location())
	}

	rc, err := res.Open()
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeDiscovery,
			"failed to open discovery manifest")
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeDiscovery,
			"failed to read discovery manifest")
	}

	var parsed map[string][]string
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return errors.Wrap(err, errors.ErrorTypeDiscovery,
			"failed to parse discovery manifest")
	}
	if len(parsed) == 0 {
		return errors.Newf(errors.ErrorTypeDiscovery,
			"discovery manifest %q is empty", res.Location())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for category, ids := range parsed {
		r.categories[category] = append(r.categories[category], ids...)
	}
	r.logger.Info("discovery manifest loaded",
		zap.String("location", res.Location()), zap.Int("categories", len(parsed)))
	return nil
}

// LoadCandidates returns the candidates of a category in manifest order,
// duplicates included. An unknown or empty category is a fatal discovery
// error: without candidates nothing can be resolved.
func (r *Registry) LoadCandidates(category string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.categories[category]
	if len(ids) == 0 {
		return nil, errors.Newf(errors.ErrorTypeDiscovery,
			"no candidates discovered for category %q; is the manifest present and populated?",
			category)
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}

// Known reports whether an identifier appears in any category. Used by
// exclusion validation to decide which excluded identifiers are resolvable.
func (r *Registry) Known(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ids := range r.categories {
		for _, candidate := range ids {
			if candidate == id {
				return true
			}
		}
	}
	return false
}

// Categories returns the registered category names.
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.categories))
	for name := range r.categories {
		names = append(names, name)
	}
	return names
}

// RemoveDuplicates drops repeated identifiers, preserving first-seen order.
func RemoveDuplicates(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
