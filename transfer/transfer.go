// Package transfer defines the transfer-layer contracts and the concrete
// communication interfaces built on the transport channel wrappers.
//
// Two addressing models exist: DirectInterface exchanges plain byte sequences
// with a single endpoint, MuxedInterface adds a 64-bit bus address to every
// access for channels that multiplex several devices. Both share lifecycle,
// buffer introspection and the query sequencing implemented here.
package transfer

import (
	"fmt"
	"math"
	"time"

	"github.com/flooklab/godaq/component"
	"github.com/flooklab/godaq/config"
	"github.com/flooklab/godaq/errors"
	"github.com/flooklab/godaq/metric"
)

// Interface is the contract shared by all transfer-layer components.
type Interface interface {
	component.Component

	// ReadBufferEmpty reports whether no received data is pending.
	ReadBufferEmpty() (bool, error)
	// ClearReadBuffer discards all pending received data.
	ClearReadBuffer() error
}

// DirectInterface exchanges byte sequences with a single endpoint.
//
// For all reads, size == -1 requests all bytes up to the channel's read
// termination (or one datagram), size == 0 yields an empty slice and a zero
// timeout waits indefinitely.
type DirectInterface interface {
	Interface

	Read(size int, timeout time.Duration) ([]byte, error)
	ReadMax(size int, timeout time.Duration) ([]byte, error)
	Write(data []byte, timeout time.Duration) error
	// Query performs the write-then-read round trip: a non-empty read buffer
	// is cleared (with a warning) first, then data is written, the configured
	// query delay elapses and size bytes are read.
	Query(data []byte, size int, timeout time.Duration) ([]byte, error)
}

// MuxedInterface exchanges byte sequences over a channel shared by multiple
// addressable devices. Size and timeout semantics match DirectInterface.
type MuxedInterface interface {
	Interface

	Read(addr uint64, size int, timeout time.Duration) ([]byte, error)
	Write(addr uint64, data []byte, timeout time.Duration) error
	// Query writes to writeAddr and reads size bytes from readAddr, applying
	// the same buffer-clear and delay sequencing as the direct variant.
	Query(writeAddr, readAddr uint64, data []byte, size int, timeout time.Duration) ([]byte, error)
}

// metrics instruments all transport channels created by this package.
// Nil (the default) disables instrumentation.
var metrics *metric.Metrics

// SetMetrics installs the transport metrics set used by interfaces created
// afterwards. Call once at startup, before building a device.
func SetMetrics(m *metric.Metrics) {
	metrics = m
}

// Base carries the transfer-layer state shared by every interface: the
// component core plus the configured query delay (init.query_delay,
// milliseconds, rounded to microsecond granularity).
type Base struct {
	*component.Base
	queryDelay time.Duration
}

// NewBase validates the configuration and extracts the query delay.
// A negative delay is a configuration error.
func NewBase(typeName, name string, cfg, required config.Config) (*Base, error) {
	cb, err := component.NewBase(component.TransferLayer, typeName, name, cfg, required)
	if err != nil {
		return nil, err
	}

	delayMs := cfg.GetFloat("init.query_delay", 0)
	if delayMs < 0 {
		return nil, errors.WrapConfig(
			fmt.Errorf("%w: negative query delay %g ms", errors.ErrInvalidConfig, delayMs),
			typeName, "NewBase", "configuring "+cb.SelfDescription())
	}

	return &Base{
		Base:       cb,
		queryDelay: time.Duration(math.Round(delayMs*1000)) * time.Microsecond,
	}, nil
}

// QueryDelay returns the configured pause between the write and read halves
// of a query.
func (b *Base) QueryDelay() time.Duration {
	return b.queryDelay
}

// RunQuery executes the query sequence shared by both addressing models:
// clear a stale read buffer (warning, not an error), run the write half,
// wait the query delay, run the read half.
func (b *Base) RunQuery(intf Interface, write func() error, read func() ([]byte, error)) ([]byte, error) {
	empty, err := intf.ReadBufferEmpty()
	if err != nil {
		return nil, err
	}
	if !empty {
		b.Logger().Warn("clearing stale data from read buffer before query")
		if err := intf.ClearReadBuffer(); err != nil {
			return nil, err
		}
	}

	if err := write(); err != nil {
		return nil, err
	}
	if b.queryDelay > 0 {
		time.Sleep(b.queryDelay)
	}
	return read()
}
