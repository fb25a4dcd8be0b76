package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCounters(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	m.MustRegister(reg)

	m.RecordRead("tcp", "trx0", 16)
	m.RecordRead("tcp", "trx0", 4)
	m.RecordWrite("tcp", "trx0", 8)
	m.RecordTimeout("serial", "uart1", "read")
	m.RecordError("udp", "dg0", "write")

	assert.Equal(t, 20.0, testutil.ToFloat64(m.BytesRead.WithLabelValues("tcp", "trx0")))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.BytesWritten.WithLabelValues("tcp", "trx0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Timeouts.WithLabelValues("serial", "uart1", "read")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("udp", "dg0", "write")))
}

func TestNegativeAndZeroByteCountsIgnored(t *testing.T) {
	m := NewMetrics()
	m.RecordRead("tcp", "trx0", 0)
	m.RecordRead("tcp", "trx0", -3)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.BytesRead.WithLabelValues("tcp", "trx0")))
}

func TestNilMetricsDisabled(t *testing.T) {
	var m *Metrics

	require.NotPanics(t, func() {
		m.RecordRead("tcp", "x", 1)
		m.RecordWrite("tcp", "x", 1)
		m.RecordTimeout("tcp", "x", "read")
		m.RecordError("tcp", "x", "read")
	})
}
