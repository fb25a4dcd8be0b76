// Package metric provides Prometheus instrumentation for transport channel
// operations.
//
// All recording methods are safe on a nil *Metrics, which disables
// instrumentation entirely; transports therefore carry a plain *Metrics
// pointer without guarding every call site.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the channel-level transport metrics.
type Metrics struct {
	BytesRead    *prometheus.CounterVec
	BytesWritten *prometheus.CounterVec
	Timeouts     *prometheus.CounterVec
	Errors       *prometheus.CounterVec
}

// NewMetrics creates the transport metrics set. The metrics start
// unregistered; expose them on a registry with MustRegister.
func NewMetrics() *Metrics {
	return &Metrics{
		BytesRead: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "godaq",
				Subsystem: "transport",
				Name:      "bytes_read_total",
				Help:      "Total number of payload bytes read from a channel",
			},
			[]string{"channel", "name"},
		),
		BytesWritten: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "godaq",
				Subsystem: "transport",
				Name:      "bytes_written_total",
				Help:      "Total number of payload bytes written to a channel",
			},
			[]string{"channel", "name"},
		),
		Timeouts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "godaq",
				Subsystem: "transport",
				Name:      "timeouts_total",
				Help:      "Total number of channel operations that timed out",
			},
			[]string{"channel", "name", "operation"},
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "godaq",
				Subsystem: "transport",
				Name:      "errors_total",
				Help:      "Total number of failed channel operations",
			},
			[]string{"channel", "name", "operation"},
		),
	}
}

// MustRegister registers all metrics with the given Prometheus registry.
func (m *Metrics) MustRegister(reg *prometheus.Registry) {
	reg.MustRegister(m.BytesRead, m.BytesWritten, m.Timeouts, m.Errors)
}

// RecordRead adds n to the read byte counter of a channel.
func (m *Metrics) RecordRead(channel, name string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.BytesRead.WithLabelValues(channel, name).Add(float64(n))
}

// RecordWrite adds n to the written byte counter of a channel.
func (m *Metrics) RecordWrite(channel, name string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.BytesWritten.WithLabelValues(channel, name).Add(float64(n))
}

// RecordTimeout increments the timeout counter for an operation.
func (m *Metrics) RecordTimeout(channel, name, operation string) {
	if m == nil {
		return
	}
	m.Timeouts.WithLabelValues(channel, name, operation).Inc()
}

// RecordError increments the error counter for an operation.
func (m *Metrics) RecordError(channel, name, operation string) {
	if m == nil {
		return
	}
	m.Errors.WithLabelValues(channel, name, operation).Inc()
}
