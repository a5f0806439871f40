// Package document loads configuration documents from resources. A resource
// may contain several documents (YAML multi-document files); each becomes an
// insertion-ordered property layer plus the profile directives extracted
// from it.
package document

import (
	"sync"

	"github.com/stratumcfg/stratum/pkg/profile"
	"github.com/stratumcfg/stratum/pkg/property"
	"github.com/stratumcfg/stratum/pkg/resource"
)

// Profile directive keys recognised inside documents.
const (
	ProfilesKey        = "stratum.profiles"
	ActiveProfilesKey  = "stratum.profiles.active"
	IncludeProfilesKey = "stratum.profiles.include"
)

// Document is one loaded configuration document.
type Document struct {
	// Layer holds the document's properties in file order.
	Layer *property.Layer
	// Profiles are the profiles the document declares itself for; empty
	// means the document applies unconditionally.
	Profiles []profile.Profile
	// ActiveProfiles is the value of the activation directive, if any.
	ActiveProfiles []string
	// IncludeProfiles is the value of the include directive, if any.
	IncludeProfiles []string
}

// New builds a document from a loaded layer, extracting profile directives.
// Directives may be comma-separated scalars or list values, which the
// structured loaders flatten to indexed keys.
func New(layer *property.Layer) *Document {
	doc := &Document{Layer: layer}
	for _, name := range property.ListValue(layer.Get, ProfilesKey) {
		doc.Profiles = append(doc.Profiles, profile.New(name))
	}
	doc.ActiveProfiles = property.ListValue(layer.Get, ActiveProfilesKey)
	doc.IncludeProfiles = property.ListValue(layer.Get, IncludeProfilesKey)
	return doc
}

// Loader parses one file format into documents.
type Loader interface {
	// Name identifies the loader; it keys the document cache.
	Name() string
	// Extensions returns the file extensions the loader handles, without
	// the leading dot, in probe order.
	Extensions() []string
	// Load parses every document in the resource. The name becomes the
	// layer name prefix.
	Load(name string, res resource.Resource) ([]*Document, error)
}

// Cache memoises document loads within one resolution pass so that a
// location probed under several profile filters is parsed once.
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey][]*Document
}

type cacheKey struct {
	loader   string
	location string
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey][]*Document)}
}

// Load returns the cached documents for (loader, location) or parses and
// caches them.
func (c *Cache) Load(loader Loader, name string, res resource.Resource) ([]*Document, error) {
	key := cacheKey{loader: loader.Name(), location: res.Location()}

	c.mu.Lock()
	docs, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		return docs, nil
	}

	docs, err := loader.Load(name, res)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries[key] = docs
	c.mu.Unlock()
	return docs, nil
}
