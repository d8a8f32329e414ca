// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Router metrics
	SwapsSettled    prometheus.Counter
	SwapsFailed     *prometheus.CounterVec
	SwapVolumeIn    prometheus.Counter
	SwapFeesCharged prometheus.Counter
	QuoteDeviation  prometheus.Histogram

	// Venue metrics
	VenueCallLatency *prometheus.HistogramVec
	VenueCallErrors  *prometheus.CounterVec

	// Registry metrics
	CreatorsRegistered prometheus.Counter
	CreatorsReassigned prometheus.Counter

	// Locker metrics
	LocksCreated  prometheus.Counter
	LocksReleased prometheus.Counter

	// Bootstrap metrics
	PoolsBootstrapped prometheus.Counter

	// Event metrics
	EventSinkErrors *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulSwap prometheus.Gauge
	UptimeSeconds      prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "memeswap_router"
	}

	return &Metrics{
		// Router metrics
		SwapsSettled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "swaps_settled_total",
			Help:      "Total number of swaps settled",
		}),
		SwapsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "swaps_failed_total",
			Help:      "Total number of failed swaps by reason",
		}, []string{"reason"}),
		SwapVolumeIn: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "swap_volume_in_units_total",
			Help:      "Total input volume routed, in base asset units",
		}),
		SwapFeesCharged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "swap_fees_charged_units_total",
			Help:      "Total fees charged across swaps, in output asset units",
		}),
		QuoteDeviation: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "quote_deviation_ratio",
			Help:      "Executed output relative to quoted output",
			Buckets:   []float64{0.5, 0.8, 0.9, 0.95, 0.99, 1.0, 1.01, 1.05, 1.1, 1.5},
		}),

		// Venue metrics
		VenueCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "venue",
			Name:      "call_latency_seconds",
			Help:      "Venue RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		VenueCallErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "venue",
			Name:      "call_errors_total",
			Help:      "Total number of venue RPC call errors by method",
		}, []string{"method"}),

		// Registry metrics
		CreatorsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "creators_registered_total",
			Help:      "Total number of creator bindings registered",
		}),
		CreatorsReassigned: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "creators_reassigned_total",
			Help:      "Total number of creator bindings reassigned",
		}),

		// Locker metrics
		LocksCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "locker",
			Name:      "locks_created_total",
			Help:      "Total number of liquidity locks created",
		}),
		LocksReleased: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "locker",
			Name:      "locks_released_total",
			Help:      "Total number of liquidity locks released",
		}),

		// Bootstrap metrics
		PoolsBootstrapped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bootstrap",
			Name:      "pools_bootstrapped_total",
			Help:      "Total number of pools bootstrapped",
		}),

		// Event metrics
		EventSinkErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "sink_errors_total",
			Help:      "Total number of event sink delivery errors",
		}, []string{"sink"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulSwap: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_swap_timestamp",
			Help:      "Unix timestamp of the last settled swap",
		}),
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordSwapSettled records a settled swap.
func RecordSwapSettled(timestampSeconds float64) {
	DefaultMetrics.SwapsSettled.Inc()
	DefaultMetrics.LastSuccessfulSwap.Set(timestampSeconds)
}

// RecordSwapFailed records a failed swap by reason.
func RecordSwapFailed(reason string) {
	DefaultMetrics.SwapsFailed.WithLabelValues(reason).Inc()
}

// RecordSwapVolume adds a settled swap's input and fee to the volume counters.
func RecordSwapVolume(amountIn, fee float64) {
	DefaultMetrics.SwapVolumeIn.Add(amountIn)
	DefaultMetrics.SwapFeesCharged.Add(fee)
}

// RecordQuoteDeviation records executed output relative to the quote.
func RecordQuoteDeviation(ratio float64) {
	DefaultMetrics.QuoteDeviation.Observe(ratio)
}

// RecordVenueCall records venue call latency and errors.
func RecordVenueCall(method string, seconds float64, err error) {
	DefaultMetrics.VenueCallLatency.WithLabelValues(method).Observe(seconds)
	if err != nil {
		DefaultMetrics.VenueCallErrors.WithLabelValues(method).Inc()
	}
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordCreatorRegistered records a new creator binding.
func RecordCreatorRegistered() {
	DefaultMetrics.CreatorsRegistered.Inc()
}

// RecordCreatorReassigned records a creator binding change.
func RecordCreatorReassigned() {
	DefaultMetrics.CreatorsReassigned.Inc()
}

// RecordLockCreated records a new liquidity lock.
func RecordLockCreated() {
	DefaultMetrics.LocksCreated.Inc()
}

// RecordLockReleased records a released liquidity lock.
func RecordLockReleased() {
	DefaultMetrics.LocksReleased.Inc()
}

// RecordPoolBootstrapped records a completed pool bootstrap.
func RecordPoolBootstrapped() {
	DefaultMetrics.PoolsBootstrapped.Inc()
}

// RecordEventSinkError records a delivery failure for a sink.
func RecordEventSinkError(sink string) {
	DefaultMetrics.EventSinkErrors.WithLabelValues(sink).Inc()
}

// TickUptime advances the uptime counter by one second.
func TickUptime() {
	DefaultMetrics.UptimeSeconds.Inc()
}
