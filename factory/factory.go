// Package factory provides the per-layer type registries that turn the type
// names found in a device description into constructed components.
//
// Each layer has its own namespace of type names. Registration is
// last-write-wins, so re-registering a type (e.g. from repeated test setup)
// is harmless; aliases resolve through the same tables and must point at an
// already-registered type. All lookups are read-locked and safe for
// concurrent use after startup registration.
package factory

import (
	"fmt"
	"sync"

	"github.com/flooklab/godaq/config"
	"github.com/flooklab/godaq/errors"
	"github.com/flooklab/godaq/hardware"
	"github.com/flooklab/godaq/register"
	"github.com/flooklab/godaq/transfer"
)

// InterfaceFactory constructs a transfer-layer interface from its
// configuration.
type InterfaceFactory func(name string, cfg config.Config) (transfer.Interface, error)

// DriverFactory constructs a hardware-layer driver on top of an already
// constructed interface. The factory is responsible for asserting the
// addressing model (direct or muxed) it needs.
type DriverFactory func(name string, intf transfer.Interface, cfg config.Config) (hardware.Driver, error)

// RegisterFactory constructs a register-layer component on top of an already
// constructed driver.
type RegisterFactory func(name string, drv hardware.Driver, cfg config.Config) (register.Register, error)

// Registry holds the three per-layer factory tables.
type Registry struct {
	mu         sync.RWMutex
	interfaces map[string]InterfaceFactory
	drivers    map[string]DriverFactory
	registers  map[string]RegisterFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		interfaces: make(map[string]InterfaceFactory),
		drivers:    make(map[string]DriverFactory),
		registers:  make(map[string]RegisterFactory),
	}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the lazily constructed process-wide registry. Built-in
// component types are registered by the builtins package, not here.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// RegisterInterfaceType registers (or replaces) an interface type.
func (r *Registry) RegisterInterfaceType(typeName string, f InterfaceFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interfaces[typeName] = f
}

// RegisterDriverType registers (or replaces) a driver type.
func (r *Registry) RegisterDriverType(typeName string, f DriverFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drivers[typeName] = f
}

// RegisterRegisterType registers (or replaces) a register type.
func (r *Registry) RegisterRegisterType(typeName string, f RegisterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registers[typeName] = f
}

// RegisterInterfaceAlias makes alias resolve to an already-registered
// interface type.
func (r *Registry) RegisterInterfaceAlias(alias, typeName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.interfaces[typeName]
	if !ok {
		return errors.WrapConfig(
			fmt.Errorf("%w: cannot alias %q to unregistered interface type %q",
				errors.ErrUnknownType, alias, typeName),
			"Registry", "RegisterInterfaceAlias", "alias registration")
	}
	r.interfaces[alias] = f
	return nil
}

// RegisterDriverAlias makes alias resolve to an already-registered driver type.
func (r *Registry) RegisterDriverAlias(alias, typeName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.drivers[typeName]
	if !ok {
		return errors.WrapConfig(
			fmt.Errorf("%w: cannot alias %q to unregistered driver type %q",
				errors.ErrUnknownType, alias, typeName),
			"Registry", "RegisterDriverAlias", "alias registration")
	}
	r.drivers[alias] = f
	return nil
}

// RegisterRegisterAlias makes alias resolve to an already-registered register
// type.
func (r *Registry) RegisterRegisterAlias(alias, typeName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.registers[typeName]
	if !ok {
		return errors.WrapConfig(
			fmt.Errorf("%w: cannot alias %q to unregistered register type %q",
				errors.ErrUnknownType, alias, typeName),
			"Registry", "RegisterRegisterAlias", "alias registration")
	}
	r.registers[alias] = f
	return nil
}

// CreateInterface constructs an interface of the given type.
func (r *Registry) CreateInterface(typeName, name string, cfg config.Config) (transfer.Interface, error) {
	r.mu.RLock()
	f, ok := r.interfaces[typeName]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.WrapConfig(
			fmt.Errorf("%w: interface type %q", errors.ErrUnknownType, typeName),
			"Registry", "CreateInterface", "type lookup")
	}
	return f(name, cfg)
}

// CreateDriver constructs a driver of the given type on top of intf.
func (r *Registry) CreateDriver(typeName, name string, intf transfer.Interface,
	cfg config.Config) (hardware.Driver, error) {

	r.mu.RLock()
	f, ok := r.drivers[typeName]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.WrapConfig(
			fmt.Errorf("%w: driver type %q", errors.ErrUnknownType, typeName),
			"Registry", "CreateDriver", "type lookup")
	}
	return f(name, intf, cfg)
}

// CreateRegister constructs a register of the given type on top of drv.
func (r *Registry) CreateRegister(typeName, name string, drv hardware.Driver,
	cfg config.Config) (register.Register, error) {

	r.mu.RLock()
	f, ok := r.registers[typeName]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.WrapConfig(
			fmt.Errorf("%w: register type %q", errors.ErrUnknownType, typeName),
			"Registry", "CreateRegister", "type lookup")
	}
	return f(name, drv, cfg)
}

// InterfaceTypes returns the registered interface type names (including
// aliases), for diagnostics.
func (r *Registry) InterfaceTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.interfaces))
	for name := range r.interfaces {
		names = append(names, name)
	}
	return names
}

// DriverTypes returns the registered driver type names (including aliases).
func (r *Registry) DriverTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.drivers))
	for name := range r.drivers {
		names = append(names, name)
	}
	return names
}

// RegisterTypes returns the registered register type names (including
// aliases).
func (r *Registry) RegisterTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.registers))
	for name := range r.registers {
		names = append(names, name)
	}
	return names
}

// AsDirect asserts the direct addressing model of an interface handed to a
// DriverFactory.
func AsDirect(typeName string, intf transfer.Interface) (transfer.DirectInterface, error) {
	direct, ok := intf.(transfer.DirectInterface)
	if !ok {
		return nil, errors.WrapConfig(
			fmt.Errorf("%w: driver type %q needs a direct interface",
				errors.ErrInvalidConfig, typeName),
			"Registry", "CreateDriver", "interface model check")
	}
	return direct, nil
}

// AsMuxed asserts the muxed addressing model of an interface handed to a
// DriverFactory.
func AsMuxed(typeName string, intf transfer.Interface) (transfer.MuxedInterface, error) {
	muxed, ok := intf.(transfer.MuxedInterface)
	if !ok {
		return nil, errors.WrapConfig(
			fmt.Errorf("%w: driver type %q needs a muxed interface",
				errors.ErrInvalidConfig, typeName),
			"Registry", "CreateDriver", "interface model check")
	}
	return muxed, nil
}
