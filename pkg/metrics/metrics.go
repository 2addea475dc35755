package metrics

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ssargent/axlframe/pkg/codec"
	"github.com/ssargent/axlframe/pkg/collection"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds the Prometheus metrics for frame decoding and archiving
type Metrics struct {
	registry *prometheus.Registry

	// Frame decode metrics
	framesTotal      *prometheus.CounterVec
	frameErrorsTotal *prometheus.CounterVec
	remainderBytes   prometheus.Counter
	collectionsTotal *prometheus.CounterVec
	samplesTotal     prometheus.Counter

	// Archive metrics
	archiveOperationsTotal *prometheus.CounterVec
}

// NewMetrics creates all metrics on a private registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,

		framesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "axl_frames_total",
				Help: "Total number of frame slots decoded",
			},
			[]string{"status"},
		),

		frameErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "axl_frame_errors_total",
				Help: "Dropped frames by failure reason",
			},
			[]string{"reason"},
		),

		remainderBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "axl_remainder_bytes_total",
				Help: "Trailing bytes ignored after the last whole frame",
			},
		),

		collectionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "axl_collections_total",
				Help: "Total number of collection sources read",
			},
			[]string{"status"},
		),

		samplesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "axl_samples_total",
				Help: "Total number of IMU samples in decoded packets",
			},
		),

		archiveOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "axl_archive_operations_total",
				Help: "Total number of packet archive operations",
			},
			[]string{"operation", "status"},
		),
	}

	return m
}

// ObserveFrame records the outcome of one frame decode
func (m *Metrics) ObserveFrame(r collection.FrameResult) {
	if r.OK() {
		m.framesTotal.WithLabelValues(statusSuccess).Inc()
		m.samplesTotal.Add(float64(r.Packet.Data.Len()))
		return
	}
	m.framesTotal.WithLabelValues(statusError).Inc()
	m.frameErrorsTotal.WithLabelValues(Reason(r.Err)).Inc()
}

// ObserveRemainder records ignored trailing bytes
func (m *Metrics) ObserveRemainder(bytes int) {
	m.remainderBytes.Add(float64(bytes))
}

// RecordCollection records a collection read attempt
func (m *Metrics) RecordCollection(success bool) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.collectionsTotal.WithLabelValues(status).Inc()
}

// RecordArchiveOperation records an archive operation
func (m *Metrics) RecordArchiveOperation(operation string, success bool) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.archiveOperationsTotal.WithLabelValues(operation, status).Inc()
}

// Registry returns the registry holding the metrics
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Reason maps a frame decode error to a low-cardinality label.
func Reason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, codec.ErrInvalidFraming):
		return "framing"
	case errors.Is(err, codec.ErrTruncated):
		return "truncated"
	case errors.Is(err, codec.ErrTrailingBytes):
		return "trailing_bytes"
	case errors.Is(err, codec.ErrBadVarint):
		return "varint"
	case errors.Is(err, codec.ErrBadOptionTag):
		return "option_tag"
	case errors.Is(err, codec.ErrCapacityExceeded):
		return "capacity"
	}
	return "other"
}

var _ collection.Observer = (*Metrics)(nil)
