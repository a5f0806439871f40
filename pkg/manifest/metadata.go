package manifest

import (
	"io"
	"strings"

	"github.com/magiconair/properties"

	"github.com/stratumcfg/stratum/pkg/errors"
	"github.com/stratumcfg/stratum/pkg/resource"
)

// Metadata holds the precomputed contribution metadata sidecar: a properties
// table keyed <id>.<attribute> that filters and the ordering sorter consult
// instead of fully loading every candidate.
type Metadata struct {
	props *properties.Properties
}

// Metadata attribute suffixes.
const (
	AttrOrder    = "order"
	AttrBefore   = "before"
	AttrAfter    = "after"
	AttrRequires = "requires"
	AttrProfile  = "profile"
)

// NewMetadata wraps an already parsed properties table.
func NewMetadata(props *properties.Properties) *Metadata {
	if props == nil {
		props = properties.NewProperties()
	}
	return &Metadata{props: props}
}

// LoadMetadata reads the metadata sidecar in properties format. A missing
// sidecar yields an empty table: candidates without metadata simply have no
// ordering hints or filter requirements.
func LoadMetadata(res resource.Resource) (*Metadata, error) {
	if !res.Exists() {
		return NewMetadata(nil), nil
	}

	rc, err := res.Open()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeDiscovery,
			"failed to open contribution metadata")
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeDiscovery,
			"failed to read contribution metadata")
	}
	props, err := properties.Load(data, properties.UTF8)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeDiscovery,
			"failed to parse contribution metadata")
	}
	return &Metadata{props: props}, nil
}

// Get returns the raw attribute value for a candidate, or "" when absent.
func (m *Metadata) Get(id, attr string) string {
	v, _ := m.props.Get(id + "." + attr)
	return v
}

// Has reports whether an attribute is present for a candidate.
func (m *Metadata) Has(id, attr string) bool {
	_, ok := m.props.Get(id + "." + attr)
	return ok
}

// GetSet returns a comma-separated attribute as a slice, empty when absent.
func (m *Metadata) GetSet(id, attr string) []string {
	v, ok := m.props.Get(id + "." + attr)
	if !ok || v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GetInt returns a numeric attribute, falling back to def when absent or
// unparseable.
func (m *Metadata) GetInt(id, attr string, def int) int {
	key := id + "." + attr
	if _, ok := m.props.Get(key); !ok {
		return def
	}
	return m.props.GetInt(key, def)
}
