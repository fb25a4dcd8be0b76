// Package register defines the register-layer contract: components that
// expose register-level views of a device on top of a borrowed hardware
// driver. Concrete register types decide what a register access means for
// their device; this package provides the shared core and a dummy type for
// configuration testing.
package register

import (
	"github.com/flooklab/godaq/component"
	"github.com/flooklab/godaq/config"
	"github.com/flooklab/godaq/errors"
	"github.com/flooklab/godaq/hardware"
)

// Register is the contract shared by all register-layer components.
type Register interface {
	component.Component

	// Driver returns the borrowed hardware-layer driver.
	Driver() hardware.Driver
}

// Base carries the register-layer state shared by every register: the
// component core plus the borrowed driver.
type Base struct {
	*component.Base
	driver hardware.Driver
}

// NewBase validates the configuration and binds the borrowed driver.
func NewBase(typeName, name string, drv hardware.Driver, cfg, required config.Config) (*Base, error) {
	cb, err := component.NewBase(component.RegisterLayer, typeName, name, cfg, required)
	if err != nil {
		return nil, err
	}
	if drv == nil {
		return nil, errors.WrapUsage(
			errors.New("no driver bound"), typeName, "NewBase",
			"constructing "+cb.SelfDescription())
	}
	return &Base{Base: cb, driver: drv}, nil
}

// Driver returns the borrowed hardware-layer driver.
func (b *Base) Driver() hardware.Driver {
	return b.driver
}

// TypeNameDummyRegister is the registered type name of the dummy register.
const TypeNameDummyRegister = "DummyRegister"

// DummyRegister is a register that does nothing. Useful for testing device
// configurations without hardware.
type DummyRegister struct {
	*Base
}

// NewDummyRegister creates a dummy register.
func NewDummyRegister(name string, drv hardware.Driver, cfg config.Config) (*DummyRegister, error) {
	base, err := NewBase(TypeNameDummyRegister, name, drv, cfg, config.New())
	if err != nil {
		return nil, err
	}
	return &DummyRegister{Base: base}, nil
}
