package transfer

import (
	"time"

	"github.com/flooklab/godaq/config"
)

// TypeNameDummyInterface is the registered type name of the direct dummy.
const TypeNameDummyInterface = "DummyInterface"

// TypeNameDummyMuxedInterface is the registered type name of the muxed dummy.
const TypeNameDummyMuxedInterface = "DummyMuxedInterface"

// DummyInterface is a direct interface that ignores writes and returns empty
// reads, logging every call at debug level. Useful for testing device
// configurations without hardware.
type DummyInterface struct {
	*Base
}

// NewDummyInterface creates a dummy direct interface.
func NewDummyInterface(name string, cfg config.Config) (*DummyInterface, error) {
	base, err := NewBase(TypeNameDummyInterface, name, cfg, config.New())
	if err != nil {
		return nil, err
	}
	return &DummyInterface{Base: base}, nil
}

// Read returns an empty byte sequence.
func (d *DummyInterface) Read(size int, timeout time.Duration) ([]byte, error) {
	d.Logger().Debug("read called", "size", size)
	return []byte{}, nil
}

// ReadMax returns an empty byte sequence.
func (d *DummyInterface) ReadMax(size int, timeout time.Duration) ([]byte, error) {
	d.Logger().Debug("readMax called", "size", size)
	return []byte{}, nil
}

// Write discards the data.
func (d *DummyInterface) Write(data []byte, timeout time.Duration) error {
	d.Logger().Debug("write called", "bytes", len(data))
	return nil
}

// Query discards the data and returns an empty byte sequence.
func (d *DummyInterface) Query(data []byte, size int, timeout time.Duration) ([]byte, error) {
	d.Logger().Debug("query called", "bytes", len(data), "size", size)
	return []byte{}, nil
}

// ReadBufferEmpty always reports an empty buffer.
func (d *DummyInterface) ReadBufferEmpty() (bool, error) { return true, nil }

// ClearReadBuffer does nothing.
func (d *DummyInterface) ClearReadBuffer() error { return nil }

// DummyMuxedInterface is the addressed counterpart of DummyInterface.
type DummyMuxedInterface struct {
	*Base
}

// NewDummyMuxedInterface creates a dummy muxed interface.
func NewDummyMuxedInterface(name string, cfg config.Config) (*DummyMuxedInterface, error) {
	base, err := NewBase(TypeNameDummyMuxedInterface, name, cfg, config.New())
	if err != nil {
		return nil, err
	}
	return &DummyMuxedInterface{Base: base}, nil
}

// Read returns an empty byte sequence.
func (d *DummyMuxedInterface) Read(addr uint64, size int, timeout time.Duration) ([]byte, error) {
	d.Logger().Debug("read called", "addr", addr, "size", size)
	return []byte{}, nil
}

// Write discards the data.
func (d *DummyMuxedInterface) Write(addr uint64, data []byte, timeout time.Duration) error {
	d.Logger().Debug("write called", "addr", addr, "bytes", len(data))
	return nil
}

// Query discards the data and returns an empty byte sequence.
func (d *DummyMuxedInterface) Query(writeAddr, readAddr uint64, data []byte, size int,
	timeout time.Duration) ([]byte, error) {

	d.Logger().Debug("query called", "writeAddr", writeAddr, "readAddr", readAddr,
		"bytes", len(data), "size", size)
	return []byte{}, nil
}

// ReadBufferEmpty always reports an empty buffer.
func (d *DummyMuxedInterface) ReadBufferEmpty() (bool, error) { return true, nil }

// ClearReadBuffer does nothing.
func (d *DummyMuxedInterface) ClearReadBuffer() error { return nil }
