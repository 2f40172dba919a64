package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	DocumentsIngested  prometheus.Counter
	ExtractionFailures prometheus.Counter
	ExtractionTime     prometheus.Histogram
	HistoryCommits     *prometheus.CounterVec
	DuplicatesFlagged  prometheus.Counter
	ExportsGenerated   prometheus.Counter
	ErrorsCount        *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics registered on reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DocumentsIngested: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_ingested_total",
			Help:      "The total number of documents accepted for extraction",
		}),
		ExtractionFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_failures_total",
			Help:      "The total number of documents whose extraction failed",
		}),
		ExtractionTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_time_seconds",
			Help:      "Time taken by the recognition service per document",
			Buckets:   prometheus.DefBuckets,
		}),
		HistoryCommits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_commits_total",
			Help:      "The total number of manifest snapshots committed",
		}, []string{"operation"}),
		DuplicatesFlagged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_flagged_total",
			Help:      "The total number of extracted records flagged as possible duplicates",
		}),
		ExportsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_generated_total",
			Help:      "The total number of manifest exports generated",
		}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
