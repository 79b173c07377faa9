package syncer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oresync_syncs_total",
		Help: "Sync attempts by document type and final status.",
	}, []string{"doc_type", "status"})

	rowsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oresync_rows_written_total",
		Help: "Rows persisted by document type.",
	}, []string{"doc_type"})

	rowsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oresync_rows_skipped_total",
		Help: "Malformed rows skipped during parse by document type.",
	}, []string{"doc_type"})
)
