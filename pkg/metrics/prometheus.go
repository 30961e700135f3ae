package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	upstreamCalls     *prometheus.CounterVec
	capacityExhausted *prometheus.CounterVec
	predictions       *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
	lastPrice         *prometheus.GaugeVec
	queueDepth        *prometheus.GaugeVec
	latency           *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		upstreamCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsight_upstream_calls_total",
				Help: "Total number of upstream API calls by result",
			},
			[]string{"api", "result"},
		),
		capacityExhausted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsight_capacity_exhausted_total",
				Help: "Total number of rate-bucket wait timeouts",
			},
			[]string{"api"},
		),
		predictions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsight_predictions_total",
				Help: "Total number of predictions produced",
			},
			[]string{"symbol", "direction"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsight_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coinsight_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		queueDepth: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coinsight_dispatcher_queue_depth",
				Help: "Pending tasks in a dispatcher queue",
			},
			[]string{"queue"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinsight_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordUpstreamCall records one call to an external API and its outcome.
func (r *Recorder) RecordUpstreamCall(api, result string) {
	r.upstreamCalls.WithLabelValues(api, result).Inc()
}

// RecordCapacityExhausted records a rate-bucket wait timeout.
func (r *Recorder) RecordCapacityExhausted(api string) {
	r.capacityExhausted.WithLabelValues(api).Inc()
}

// RecordPrediction records a produced prediction.
func (r *Recorder) RecordPrediction(symbol, direction string) {
	r.predictions.WithLabelValues(symbol, direction).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordQueueDepth records the pending task count of a dispatcher queue.
func (r *Recorder) RecordQueueDepth(queue string, depth int) {
	r.queueDepth.WithLabelValues(queue).Set(float64(depth))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
