package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fg_api_requests_total",
			Help: "Number of API requests",
		},
		[]string{"method", "path", "status"},
	)
	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fg_api_latency_seconds",
			Help:    "API latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	SchemaCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fg_schema_cache_hits_total",
			Help: "Schema cache hits",
		},
	)
	SchemaCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fg_schema_cache_misses_total",
			Help: "Schema cache misses",
		},
	)
	RecordWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fg_record_writes_total",
			Help: "Generic record writes by table and outcome",
		},
		[]string{"table", "status"},
	)
	OptionFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fg_option_fetches_total",
			Help: "Select option fetches by outcome",
		},
		[]string{"status"},
	)
	ConfigSyncs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fg_config_syncs_total",
			Help: "User config sync attempts by outcome",
		},
		[]string{"status"},
	)
	GridRows = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fg_grid_rows",
			Help: "Rows loaded per table",
		},
		[]string{"table"},
	)
)

func init() {
	prometheus.MustRegister(
		APIRequests,
		APILatency,
		SchemaCacheHits,
		SchemaCacheMisses,
		RecordWrites,
		OptionFetches,
		ConfigSyncs,
		GridRows,
	)
}
