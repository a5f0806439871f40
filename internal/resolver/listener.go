package resolver

import (
	"github.com/stratumcfg/stratum/pkg/metrics"
)

// Event is the immutable message emitted after contribution resolution. It
// carries the final ordered contribution list and the complete exclusion set.
type Event struct {
	Contributions []string
	Exclusions    []string
}

// Listener observes finished resolutions. Listener errors abort the pass:
// once registered, a listener is part of the pipeline.
type Listener interface {
	OnResolved(Event) error
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(Event) error

func (f ListenerFunc) OnResolved(e Event) error { return f(e) }

// MetricsListener records resolution outcomes into the Prometheus counters.
type MetricsListener struct{}

func (MetricsListener) OnResolved(e Event) error {
	metrics.ContributionsResolved.Add(float64(len(e.Contributions)))
	return nil
}
