package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the sequencer.
type Metrics struct {
	// Token allocation metrics
	TokenRequestsTotal    prometheus.Counter
	TokenRequestsDuration prometheus.Histogram
	TokensIssuedTotal     prometheus.Counter
	QueryRequestsTotal    prometheus.Counter

	// Transaction resolution metrics
	TxnResolutionsTotal prometheus.Counter
	TxnAbortsTotal      prometheus.Counter
	TxnCommitsTotal     prometheus.Counter

	// Lease metrics
	LeaseRenewalsTotal    prometheus.Counter
	LeaseRenewalDuration  prometheus.Histogram
	LeaseExhaustedTotal   prometheus.Counter
	LeaseBoundary         prometheus.Gauge
	GlobalTail            prometheus.Gauge

	// Conflict cache metrics
	ConflictCacheHitsTotal   prometheus.Counter
	ConflictCacheMissesTotal prometheus.Counter
	ConflictCacheEvictionsTotal prometheus.Counter
	ConflictCacheEntriesTotal   prometheus.Gauge

	// Stream index metrics
	StreamIndexEntriesTotal prometheus.Gauge

	// Membership metrics
	MembershipMembersTotal   prometheus.Gauge
	MembershipMembersHealthy prometheus.Gauge

	// Error metrics
	MalformedRequestsTotal     prometheus.Counter
	StorageUnavailableTotal    prometheus.Counter

	// System metrics
	GoroutinesTotal prometheus.Gauge

	// Background worker pool metrics
	WorkerPoolQueueUtilization  prometheus.Gauge
	WorkerPoolWorkerUtilization prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(nodeID string) *Metrics {
	labels := prometheus.Labels{"node_id": nodeID}

	return &Metrics{
		TokenRequestsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "sequencer",
			Subsystem:   "allocator",
			Name:        "token_requests_total",
			Help:        "Total number of grant and non-stream token requests handled",
			ConstLabels: labels,
		}),
		TokenRequestsDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "sequencer",
			Subsystem:   "allocator",
			Name:        "token_requests_duration_seconds",
			Help:        "Histogram of Handle call durations",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.00001, 2, 16),
		}),
		TokensIssuedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "sequencer",
			Subsystem:   "allocator",
			Name:        "tokens_issued_total",
			Help:        "Total number of individual positions issued",
			ConstLabels: labels,
		}),
		QueryRequestsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "sequencer",
			Subsystem:   "allocator",
			Name:        "query_requests_total",
			Help:        "Total number of n=0 query-path requests",
			ConstLabels: labels,
		}),

		TxnResolutionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "sequencer",
			Subsystem:   "txn",
			Name:        "resolutions_total",
			Help:        "Total number of transaction resolution requests",
			ConstLabels: labels,
		}),
		TxnAbortsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "sequencer",
			Subsystem:   "txn",
			Name:        "aborts_total",
			Help:        "Total number of transactions aborted",
			ConstLabels: labels,
		}),
		TxnCommitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "sequencer",
			Subsystem:   "txn",
			Name:        "commits_total",
			Help:        "Total number of transactions committed",
			ConstLabels: labels,
		}),

		LeaseRenewalsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "sequencer",
			Subsystem:   "lease",
			Name:        "renewals_total",
			Help:        "Total number of successful lease renewals",
			ConstLabels: labels,
		}),
		LeaseRenewalDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "sequencer",
			Subsystem:   "lease",
			Name:        "renewal_duration_seconds",
			Help:        "Histogram of lease store write latency during renewal",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}),
		LeaseExhaustedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "sequencer",
			Subsystem:   "lease",
			Name:        "exhausted_total",
			Help:        "Total number of requests refused because the lease boundary was reached",
			ConstLabels: labels,
		}),
		LeaseBoundary: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace:   "sequencer",
			Subsystem:   "lease",
			Name:        "boundary",
			Help:        "Current in-memory lease start L",
			ConstLabels: labels,
		}),
		GlobalTail: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace:   "sequencer",
			Subsystem:   "allocator",
			Name:        "global_tail",
			Help:        "Current global tail T",
			ConstLabels: labels,
		}),

		ConflictCacheHitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "sequencer",
			Subsystem:   "conflict_cache",
			Name:        "hits_total",
			Help:        "Total number of conflict cache lookups that found an entry",
			ConstLabels: labels,
		}),
		ConflictCacheMissesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "sequencer",
			Subsystem:   "conflict_cache",
			Name:        "misses_total",
			Help:        "Total number of conflict cache lookups with no entry (ambiguous: absent or evicted)",
			ConstLabels: labels,
		}),
		ConflictCacheEvictionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "sequencer",
			Subsystem:   "conflict_cache",
			Name:        "evictions_total",
			Help:        "Total number of conflict cache entries evicted",
			ConstLabels: labels,
		}),
		ConflictCacheEntriesTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace:   "sequencer",
			Subsystem:   "conflict_cache",
			Name:        "entries",
			Help:        "Current number of entries in the conflict cache",
			ConstLabels: labels,
		}),

		StreamIndexEntriesTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace:   "sequencer",
			Subsystem:   "stream_index",
			Name:        "entries",
			Help:        "Current number of distinct streams tracked by the stream index",
			ConstLabels: labels,
		}),

		MembershipMembersTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace:   "sequencer",
			Subsystem:   "membership",
			Name:        "members_total",
			Help:        "Total number of members visible in the informational gossip view",
			ConstLabels: labels,
		}),
		MembershipMembersHealthy: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace:   "sequencer",
			Subsystem:   "membership",
			Name:        "members_healthy",
			Help:        "Number of members visible and marked healthy in the informational gossip view",
			ConstLabels: labels,
		}),

		MalformedRequestsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "sequencer",
			Subsystem:   "errors",
			Name:        "malformed_requests_total",
			Help:        "Total number of requests rejected as malformed",
			ConstLabels: labels,
		}),
		StorageUnavailableTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "sequencer",
			Subsystem:   "errors",
			Name:        "storage_unavailable_total",
			Help:        "Total number of lease store failures observed at runtime",
			ConstLabels: labels,
		}),

		GoroutinesTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace:   "sequencer",
			Subsystem:   "runtime",
			Name:        "goroutines",
			Help:        "Current number of goroutines",
			ConstLabels: labels,
		}),

		WorkerPoolQueueUtilization: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace:   "sequencer",
			Subsystem:   "worker_pool",
			Name:        "queue_utilization_percent",
			Help:        "Percentage of the background worker pool's queue capacity currently occupied",
			ConstLabels: labels,
		}),
		WorkerPoolWorkerUtilization: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace:   "sequencer",
			Subsystem:   "worker_pool",
			Name:        "worker_utilization_percent",
			Help:        "Percentage of the background worker pool's workers currently busy",
			ConstLabels: labels,
		}),
	}
}
