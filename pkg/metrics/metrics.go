// Package metrics provides Prometheus instrumentation for the resolution
// pipeline: resolution pass counts and latency, documents accepted into the
// merge, candidates removed before ordering, and layers spliced into the
// environment.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ResolutionsTotal counts resolution passes by outcome.
	ResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stratum",
		Name:      "resolutions_total",
		Help:      "Configuration resolution passes by outcome.",
	}, []string{"outcome"})

	// DocumentsLoaded counts configuration documents accepted into the merge.
	DocumentsLoaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stratum",
		Name:      "documents_loaded_total",
		Help:      "Configuration documents accepted into the merge, by format.",
	}, []string{"format"})

	// CandidatesFiltered counts contribution candidates removed by exclusions
	// or filters.
	CandidatesFiltered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stratum",
		Name:      "candidates_filtered_total",
		Help:      "Contribution candidates removed before ordering, by reason.",
	}, []string{"reason"})

	// ContributionsResolved counts contributions that survived the pipeline.
	ContributionsResolved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "stratum",
		Name:      "contributions_resolved_total",
		Help:      "Contributions that survived exclusion, filtering and ordering.",
	})

	// LayersMerged counts property layers spliced into the environment.
	LayersMerged = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "stratum",
		Name:      "layers_merged_total",
		Help:      "Property layers spliced into the environment.",
	})

	// ResolutionDuration tracks end-to-end resolution latency.
	ResolutionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stratum",
		Name:      "resolution_duration_seconds",
		Help:      "End-to-end configuration resolution latency.",
		Buckets:   prometheus.DefBuckets,
	})
)

// ObserveResolution records one finished resolution pass.
func ObserveResolution(start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	ResolutionsTotal.WithLabelValues(outcome).Inc()
	ResolutionDuration.Observe(time.Since(start).Seconds())
}
