// Package hardware defines the hardware-layer contracts and driver bases.
//
// A driver borrows a transfer-layer interface (it never owns its lifecycle)
// and exposes device-oriented operations on top of it. DirectBase serves
// drivers talking to a single endpoint; MuxedBase serves drivers on an
// addressed bus and additionally carries the register-style data protocol
// (GetData/SetData/Exec/IsDone), which only exists on the muxed surface.
package hardware

import (
	"github.com/flooklab/godaq/component"
	"github.com/flooklab/godaq/config"
)

// Driver is the contract shared by all hardware-layer components.
type Driver interface {
	component.Component

	// Reset restores the device to a defined state. Drivers without a reset
	// procedure implement it as a no-op.
	Reset() error
}

// MuxedDriver is a driver on an addressed bus. On top of the base contract it
// exposes the register-style data protocol used by the register layer.
type MuxedDriver interface {
	Driver

	// GetData reads size bytes of device data at the given address offset.
	GetData(size int, addrOffs uint64) ([]byte, error)
	// SetData writes device data at the given address offset.
	SetData(data []byte, addrOffs uint64) error
	// Exec triggers the device operation configured by previous SetData calls.
	Exec() error
	// IsDone reports whether a triggered device operation has finished.
	IsDone() (bool, error)
}

// Base carries the hardware-layer state shared by every driver. The reset
// behavior is overridable through BindResetHook; the default is a no-op.
type Base struct {
	*component.Base
	resetHook func() error
}

// NewBase validates the configuration and returns the embedded driver core.
func NewBase(typeName, name string, cfg, required config.Config) (*Base, error) {
	cb, err := component.NewBase(component.HardwareLayer, typeName, name, cfg, required)
	if err != nil {
		return nil, err
	}
	return &Base{Base: cb}, nil
}

// BindResetHook installs the type-specific reset procedure.
func (b *Base) BindResetHook(reset func() error) {
	b.resetHook = reset
}

// Reset runs the reset procedure, if any.
func (b *Base) Reset() error {
	if b.resetHook == nil {
		b.Logger().Debug("reset requested, nothing to do")
		return nil
	}
	return b.resetHook()
}
