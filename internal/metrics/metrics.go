package metrics

import "github.com/prometheus/client_golang/prometheus"

// Sync worker Prometheus metrics.
var (
	SyncOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchsync",
			Name:      "sync_ops_total",
			Help:      "Total record sync operations against the search engine",
		},
		[]string{"op", "status"}, // op: save/delete/bulk_index/bulk_delete, status: ok/error
	)

	ReindexBatchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "searchsync",
			Name:      "reindex_batches_total",
			Help:      "Total batches submitted during full rebuilds",
		},
	)

	ReindexDocumentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "searchsync",
			Name:      "reindex_documents_total",
			Help:      "Total documents written during full rebuilds",
		},
	)

	RebuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchsync",
			Name:      "rebuilds_total",
			Help:      "Full alias-swap rebuilds by outcome",
		},
		[]string{"status"}, // "ok" / "error"
	)
)

var registered bool

// Register registers all collectors. Must be called once from main.
func Register() {
	if registered {
		return
	}
	registered = true
	prometheus.MustRegister(
		SyncOpsTotal,
		ReindexBatchesTotal,
		ReindexDocumentsTotal,
		RebuildsTotal,
	)
}
