package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	scansTotal    *prometheus.CounterVec
	scanOutcomes  *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	lastClose     *prometheus.GaugeVec
	squeezeCounts *prometheus.GaugeVec
	scanDuration  *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		scansTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "squeezescan_scans_total",
				Help: "Total number of symbol scans performed",
			},
			[]string{"symbol"},
		),
		scanOutcomes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "squeezescan_scan_outcomes_total",
				Help: "Scan outcomes by result",
			},
			[]string{"outcome"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "squeezescan_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastClose: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "squeezescan_last_close",
				Help: "Last close price per symbol",
			},
			[]string{"symbol"},
		),
		squeezeCounts: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "squeezescan_universe_squeeze_count",
				Help: "Number of symbols per squeeze status in the last universe scan",
			},
			[]string{"status"},
		),
		scanDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "squeezescan_scan_duration_seconds",
				Help:    "Duration of scan operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordScan records one completed symbol scan.
func (r *Recorder) RecordScan(symbol string, seconds float64) {
	r.scansTotal.WithLabelValues(symbol).Inc()
	r.scanDuration.WithLabelValues("scan_symbol").Observe(seconds)
}

// RecordScanOutcome records the outcome of a symbol scan.
func (r *Recorder) RecordScanOutcome(outcome string) {
	r.scanOutcomes.WithLabelValues(outcome).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastClose records the last close price for a symbol.
func (r *Recorder) RecordLastClose(symbol string, price float64) {
	r.lastClose.WithLabelValues(symbol).Set(price)
}

// RecordSqueezeCounts records universe-level squeeze tallies after a scan.
func (r *Recorder) RecordSqueezeCounts(on, fired int) {
	r.squeezeCounts.WithLabelValues("on").Set(float64(on))
	r.squeezeCounts.WithLabelValues("fired").Set(float64(fired))
}
