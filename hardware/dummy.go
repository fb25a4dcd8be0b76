package hardware

import (
	"github.com/flooklab/godaq/config"
	"github.com/flooklab/godaq/transfer"
)

// TypeNameDummyDriver is the registered type name of the direct dummy driver.
const TypeNameDummyDriver = "DummyDriver"

// TypeNameDummyMuxedDriver is the registered type name of the muxed dummy driver.
const TypeNameDummyMuxedDriver = "DummyMuxedDriver"

// DummyDriver is a direct driver that does nothing. Useful for testing device
// configurations without hardware.
type DummyDriver struct {
	*DirectBase
}

// NewDummyDriver creates a dummy direct driver.
func NewDummyDriver(name string, intf transfer.DirectInterface, cfg config.Config) (*DummyDriver, error) {
	base, err := NewDirectBase(TypeNameDummyDriver, name, intf, cfg, config.New())
	if err != nil {
		return nil, err
	}
	return &DummyDriver{DirectBase: base}, nil
}

// DummyMuxedDriver is a muxed driver that does nothing beyond the default
// register-style protocol (empty data, no-op writes).
type DummyMuxedDriver struct {
	*MuxedBase
}

// NewDummyMuxedDriver creates a dummy muxed driver. The configuration still
// needs a base_addr like any bus driver.
func NewDummyMuxedDriver(name string, intf transfer.MuxedInterface, cfg config.Config) (*DummyMuxedDriver, error) {
	base, err := NewMuxedBase(TypeNameDummyMuxedDriver, name, intf, cfg, config.New())
	if err != nil {
		return nil, err
	}
	return &DummyMuxedDriver{MuxedBase: base}, nil
}
