package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	phaseBooks       = "books"
	phaseRatings     = "ratings"
	phaseTags        = "tags"
	phaseEditionTags = "edition_tags"
)

var (
	rowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookrating_ingest_rows_total",
		Help: "Source rows processed by the ingestion pipeline, by phase and outcome.",
	}, []string{"phase", "outcome"})

	batchSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bookrating_ingest_batch_seconds",
		Help:    "Time spent flushing one rating batch, retries included.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	batchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookrating_ingest_batch_failures_total",
		Help: "Rating batches that failed after every retry.",
	})
)

func countRow(phase, outcome string) {
	rowsTotal.WithLabelValues(phase, outcome).Inc()
}
