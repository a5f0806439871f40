// Package property provides the ordered property layers that make up a
// resolved configuration view, placeholder resolution across the merged
// stack, and structured binding of keys onto Go values.
package property

// FallbackLayerName is the designated lowest-priority layer. When present in
// a stack it is pinned to the lowest-precedence position; merged document
// layers are spliced in directly above it.
const FallbackLayerName = "defaultProperties"

// Layer is a named, insertion-ordered key to value mapping. Keys are unique;
// setting an existing key overwrites the value but keeps the original
// position. Layers are built once by a document loader and then treated as
// immutable by everything downstream.
type Layer struct {
	name   string
	keys   []string
	values map[string]string
}

// NewLayer creates an empty layer with the given name.
func NewLayer(name string) *Layer {
	return &Layer{
		name:   name,
		values: make(map[string]string),
	}
}

// Name returns the layer name.
func (l *Layer) Name() string {
	return l.name
}

// Set stores a key-value pair, preserving first-seen key order.
func (l *Layer) Set(key, value string) {
	if _, exists := l.values[key]; !exists {
		l.keys = append(l.keys, key)
	}
	l.values[key] = value
}

// Get returns the value for key and whether it is present.
func (l *Layer) Get(key string) (string, bool) {
	v, ok := l.values[key]
	return v, ok
}

// Has reports whether key is present.
func (l *Layer) Has(key string) bool {
	_, ok := l.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (l *Layer) Keys() []string {
	out := make([]string, len(l.keys))
	copy(out, l.keys)
	return out
}

// Len returns the number of keys.
func (l *Layer) Len() int {
	return len(l.keys)
}
