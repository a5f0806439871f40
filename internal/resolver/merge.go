package resolver

import (
	"github.com/stratumcfg/stratum/pkg/metrics"
	"github.com/stratumcfg/stratum/pkg/property"
)

// apply splices the loaded buckets into the environment's property stack.
//
// Buckets are walked in reverse processing order so later-processed profiles
// override earlier ones; within a bucket, documents consumed earlier have
// higher precedence. The first occurrence of a layer name wins, which keeps
// exactly the highest-precedence copy of a layer loaded under several
// profiles. Layers from the negative pass always rank below every positively
// matched layer.
//
// The merged layers are then inserted at the low-precedence end of the
// stack: directly above the designated fallback layer when present, below
// every pre-existing layer otherwise. Layers the caller installed before
// resolving, such as command-line overrides, therefore keep overriding
// everything loaded from files.
func (l *documentLoader) apply() error {
	var emit []*property.Layer // highest precedence first
	added := make(map[string]bool)
	appendLayer := func(layer *property.Layer) {
		if !added[layer.Name()] {
			added[layer.Name()] = true
			emit = append(emit, layer)
		}
	}
	for i := len(l.bucketOrder) - 1; i >= 0; i-- {
		for _, layer := range l.buckets[l.bucketOrder[i]] {
			appendLayer(layer)
		}
	}
	for _, layer := range l.negative {
		appendLayer(layer)
	}

	// The stack is last-match-wins, so insert lowest precedence first.
	stack := l.env.PropertySources()
	anchor := ""
	if stack.Contains(property.FallbackLayerName) {
		anchor = property.FallbackLayerName
	}
	for i := len(emit) - 1; i >= 0; i-- {
		layer := emit[i]
		var err error
		if anchor == "" {
			err = stack.AddFirst(layer)
		} else {
			err = stack.AddAfter(anchor, layer)
		}
		if err != nil {
			return err
		}
		anchor = layer.Name()
		metrics.LayersMerged.Inc()
	}
	return nil
}
