package observability

import (
	"time"

	"github.com/tarjetero/tarjetero-api/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the card tracker.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration    *prometheus.HistogramVec
	summariesComputed  prometheus.Counter
	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec
	danglingReferences prometheus.Counter
	snapshotPersists   prometheus.Counter
	backupPushes       *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tarjetero_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		summariesComputed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tarjetero_summaries_computed_total",
				Help: "Total card summaries computed by the engine.",
			},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tarjetero_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tarjetero_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		danglingReferences: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tarjetero_dangling_references_total",
				Help: "Total payments whose installment reference did not resolve.",
			},
		),
		snapshotPersists: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tarjetero_snapshot_persists_total",
				Help: "Total snapshot writes to the data file.",
			},
		),
		backupPushes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tarjetero_backup_pushes_total",
				Help: "Total snapshot pushes to the backup mirror.",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrSummariesComputed increments the computed-summaries counter.
func (m *Metrics) IncrSummariesComputed() {
	m.summariesComputed.Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrDanglingReference increments the dangling-reference counter.
func (m *Metrics) IncrDanglingReference() {
	m.danglingReferences.Inc()
}

// IncrSnapshotPersist increments the snapshot-persist counter.
func (m *Metrics) IncrSnapshotPersist() {
	m.snapshotPersists.Inc()
}

// IncrBackupPush increments the backup push counter with a status label.
func (m *Metrics) IncrBackupPush(status string) {
	m.backupPushes.WithLabelValues(status).Inc()
}

// GetEngineSnapshot returns a snapshot of engine-related counters suitable
// for the GET /v1/metrics/engine endpoint.
func (m *Metrics) GetEngineSnapshot() *domain.EngineMetrics {
	// Prometheus counters expose cumulative values; read them back through
	// the client_model protobuf.
	summaries := readCounter(m.summariesComputed)
	dangling := readCounter(m.danglingReferences)
	persists := readCounter(m.snapshotPersists)
	hits := readCounterVec(m.cacheHits, "summary")
	misses := readCounterVec(m.cacheMisses, "summary")

	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &domain.EngineMetrics{
		SummariesComputed:  int64(summaries),
		CacheHitRate:       hitRate,
		DanglingReferences: int64(dangling),
		SnapshotsPersisted: int64(persists),
	}
}

// readCounter extracts the current float64 value from a Counter.
func readCounter(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

// readCounterVec extracts the current float64 value for a given label.
func readCounterVec(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
