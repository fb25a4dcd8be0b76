// Package device builds and manages a complete component stack from a device
// description document.
//
// A description is a YAML document with three sections, built strictly in
// this order: transfer_layer (interfaces), hw_drivers (drivers, each
// referencing an interface by name) and registers (each referencing a driver
// by name). Component names are unique within their layer; the three
// namespaces are independent. Every structural problem (duplicate name,
// unknown type, unresolved reference) fails construction, so a successfully
// built Device is structurally sound before any hardware is touched.
package device

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/flooklab/godaq/builtins"
	"github.com/flooklab/godaq/component"
	"github.com/flooklab/godaq/config"
	"github.com/flooklab/godaq/errors"
	"github.com/flooklab/godaq/factory"
	"github.com/flooklab/godaq/hardware"
	"github.com/flooklab/godaq/register"
	"github.com/flooklab/godaq/transfer"
)

var defaultOnce sync.Once

// defaultRegistry returns the process-wide factory registry with all built-in
// types registered.
func defaultRegistry() (*factory.Registry, error) {
	var err error
	defaultOnce.Do(func() {
		err = builtins.Register(factory.Default())
	})
	if err != nil {
		return nil, err
	}
	return factory.Default(), nil
}

type options struct {
	registry *factory.Registry
}

// Option customizes device construction.
type Option func(*options)

// WithRegistry builds the device's components from a custom factory registry
// instead of the default one.
func WithRegistry(r *factory.Registry) Option {
	return func(o *options) { o.registry = r }
}

// Device is the composition root holding all components of one device
// description, keyed by name per layer and ordered as declared.
type Device struct {
	logger *slog.Logger

	interfaces     map[string]transfer.Interface
	drivers        map[string]hardware.Driver
	registers      map[string]register.Register
	interfaceOrder []string
	driverOrder    []string
	registerOrder  []string

	mu          sync.Mutex
	initialized bool
}

// New parses a device description document and builds all of its components.
func New(doc []byte, opts ...Option) (*Device, error) {
	cfg, err := config.FromYAML(string(doc))
	if err != nil {
		return nil, errors.WrapConfig(err, "Device", "New", "parsing device description")
	}
	return FromConfig(cfg, opts...)
}

// FromConfig builds all components of an already parsed device description.
func FromConfig(cfg config.Config, opts ...Option) (*Device, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		reg, err := defaultRegistry()
		if err != nil {
			return nil, err
		}
		o.registry = reg
	}

	d := &Device{
		logger:     slog.Default().With("component", "device"),
		interfaces: make(map[string]transfer.Interface),
		drivers:    make(map[string]hardware.Driver),
		registers:  make(map[string]register.Register),
	}

	if err := d.buildInterfaces(cfg, o.registry); err != nil {
		return nil, err
	}
	if err := d.buildDrivers(cfg, o.registry); err != nil {
		return nil, err
	}
	if err := d.buildRegisters(cfg, o.registry); err != nil {
		return nil, err
	}

	d.logger.Debug("device built",
		"interfaces", len(d.interfaces), "drivers", len(d.drivers), "registers", len(d.registers))
	return d, nil
}

// entryMeta extracts and validates the name and type keys of one component
// entry.
func entryMeta(entry config.Config, section string, index int) (name, typeName string, err error) {
	name = entry.GetString("name", "")
	typeName = entry.GetString("type", "")
	if name == "" {
		return "", "", errors.WrapConfig(
			fmt.Errorf("%w: entry %d in section %q has no name", errors.ErrInvalidConfig, index, section),
			"Device", "FromConfig", "reading device description")
	}
	if typeName == "" {
		return "", "", errors.WrapConfig(
			fmt.Errorf("%w: component %q in section %q has no type", errors.ErrInvalidConfig, name, section),
			"Device", "FromConfig", "reading device description")
	}
	return name, typeName, nil
}

func (d *Device) buildInterfaces(cfg config.Config, reg *factory.Registry) error {
	for i, entry := range cfg.Sections("transfer_layer") {
		name, typeName, err := entryMeta(entry, "transfer_layer", i)
		if err != nil {
			return err
		}
		if _, exists := d.interfaces[name]; exists {
			return errors.WrapConfig(
				fmt.Errorf("%w: interface %q", errors.ErrDuplicateName, name),
				"Device", "FromConfig", "building transfer layer")
		}

		intf, err := reg.CreateInterface(typeName, name, entry.Without("name", "type"))
		if err != nil {
			return errors.Wrap(err, "Device", "FromConfig",
				fmt.Sprintf("building interface %q", name))
		}
		d.interfaces[name] = intf
		d.interfaceOrder = append(d.interfaceOrder, name)
	}
	return nil
}

func (d *Device) buildDrivers(cfg config.Config, reg *factory.Registry) error {
	for i, entry := range cfg.Sections("hw_drivers") {
		name, typeName, err := entryMeta(entry, "hw_drivers", i)
		if err != nil {
			return err
		}
		if _, exists := d.drivers[name]; exists {
			return errors.WrapConfig(
				fmt.Errorf("%w: driver %q", errors.ErrDuplicateName, name),
				"Device", "FromConfig", "building hardware layer")
		}

		intfName := entry.GetString("interface", "")
		intf, ok := d.interfaces[intfName]
		if !ok {
			return errors.WrapConfig(
				fmt.Errorf("driver %q references undefined interface %q", name, intfName),
				"Device", "FromConfig", "building hardware layer")
		}

		drv, err := reg.CreateDriver(typeName, name, intf, entry.Without("name", "type", "interface"))
		if err != nil {
			return errors.Wrap(err, "Device", "FromConfig",
				fmt.Sprintf("building driver %q", name))
		}
		d.drivers[name] = drv
		d.driverOrder = append(d.driverOrder, name)
	}
	return nil
}

func (d *Device) buildRegisters(cfg config.Config, reg *factory.Registry) error {
	for i, entry := range cfg.Sections("registers") {
		name, typeName, err := entryMeta(entry, "registers", i)
		if err != nil {
			return err
		}
		if _, exists := d.registers[name]; exists {
			return errors.WrapConfig(
				fmt.Errorf("%w: register %q", errors.ErrDuplicateName, name),
				"Device", "FromConfig", "building register layer")
		}

		// "driver" is the canonical reference key; "hw_driver" is accepted as
		// a legacy spelling.
		drvName := entry.GetString("driver", entry.GetString("hw_driver", ""))
		drv, ok := d.drivers[drvName]
		if !ok {
			return errors.WrapConfig(
				fmt.Errorf("register %q references undefined driver %q", name, drvName),
				"Device", "FromConfig", "building register layer")
		}

		r, err := reg.CreateRegister(typeName, name, drv, entry.Without("name", "type", "driver", "hw_driver"))
		if err != nil {
			return errors.Wrap(err, "Device", "FromConfig",
				fmt.Sprintf("building register %q", name))
		}
		d.registers[name] = r
		d.registerOrder = append(d.registerOrder, name)
	}
	return nil
}

// Init initializes all components, interfaces first, then drivers, then
// registers. Every failing component is reported; later components still get
// their init attempt, so one dead channel does not mask the state of the
// rest. The device counts as initialized only when everything succeeded.
func (d *Device) Init(force bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var errs []error
	for _, c := range d.orderedComponents() {
		if err := c.Init(force); err != nil {
			d.logger.Error("component init failed", "component", c.SelfDescription(), "error", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		d.initialized = false
		return errors.Wrap(errors.Join(errs...), "Device", "Init", "initializing components")
	}
	d.initialized = true
	return nil
}

// Close closes all components in reverse build order, registers first. Every
// failing component is reported and the remaining components still close.
func (d *Device) Close(force bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	comps := d.orderedComponents()
	var errs []error
	for i := len(comps) - 1; i >= 0; i-- {
		if err := comps[i].Close(force); err != nil {
			d.logger.Error("component close failed", "component", comps[i].SelfDescription(), "error", err)
			errs = append(errs, err)
		}
	}

	d.initialized = false
	if len(errs) > 0 {
		return errors.Wrap(errors.Join(errs...), "Device", "Close", "closing components")
	}
	return nil
}

// Initialized reports whether the last Init succeeded for every component
// and no Close happened since.
func (d *Device) Initialized() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initialized
}

// orderedComponents returns all components in build order:
// interfaces, drivers, registers.
func (d *Device) orderedComponents() []component.Component {
	comps := make([]component.Component, 0,
		len(d.interfaceOrder)+len(d.driverOrder)+len(d.registerOrder))
	for _, name := range d.interfaceOrder {
		comps = append(comps, d.interfaces[name])
	}
	for _, name := range d.driverOrder {
		comps = append(comps, d.drivers[name])
	}
	for _, name := range d.registerOrder {
		comps = append(comps, d.registers[name])
	}
	return comps
}

// Interface returns the transfer-layer component with the given name.
func (d *Device) Interface(name string) (transfer.Interface, error) {
	intf, ok := d.interfaces[name]
	if !ok {
		return nil, errors.WrapUsage(
			fmt.Errorf("%w: interface %q", errors.ErrNotFound, name),
			"Device", "Interface", "component lookup")
	}
	return intf, nil
}

// Driver returns the hardware-layer component with the given name.
func (d *Device) Driver(name string) (hardware.Driver, error) {
	drv, ok := d.drivers[name]
	if !ok {
		return nil, errors.WrapUsage(
			fmt.Errorf("%w: driver %q", errors.ErrNotFound, name),
			"Device", "Driver", "component lookup")
	}
	return drv, nil
}

// Register returns the register-layer component with the given name.
func (d *Device) Register(name string) (register.Register, error) {
	reg, ok := d.registers[name]
	if !ok {
		return nil, errors.WrapUsage(
			fmt.Errorf("%w: register %q", errors.ErrNotFound, name),
			"Device", "Register", "component lookup")
	}
	return reg, nil
}

// Component returns the component with the given name from any layer,
// searching interfaces first, then drivers, then registers.
func (d *Device) Component(name string) (component.Component, error) {
	if intf, ok := d.interfaces[name]; ok {
		return intf, nil
	}
	if drv, ok := d.drivers[name]; ok {
		return drv, nil
	}
	if reg, ok := d.registers[name]; ok {
		return reg, nil
	}
	return nil, errors.WrapUsage(
		fmt.Errorf("%w: component %q", errors.ErrNotFound, name),
		"Device", "Component", "component lookup")
}

// RuntimeConfig collects the non-empty runtime-configuration fragments of all
// components, keyed by component name.
func (d *Device) RuntimeConfig() (map[string]config.Config, error) {
	out := make(map[string]config.Config)
	for _, c := range d.orderedComponents() {
		cfg, err := c.RuntimeConfig()
		if err != nil {
			return nil, errors.Wrap(err, "Device", "RuntimeConfig",
				"dumping runtime configuration of "+c.SelfDescription())
		}
		if !cfg.Equal(config.New()) {
			out[c.Name()] = cfg
		}
	}
	return out, nil
}

// ApplyRuntimeConfig loads runtime-configuration fragments by component name,
// in build order. Fragments for unknown names are skipped with a warning.
func (d *Device) ApplyRuntimeConfig(cfgs map[string]config.Config) error {
	applied := make(map[string]bool, len(cfgs))
	for _, c := range d.orderedComponents() {
		cfg, ok := cfgs[c.Name()]
		if !ok {
			continue
		}
		if err := c.ApplyRuntimeConfig(cfg); err != nil {
			return errors.Wrap(err, "Device", "ApplyRuntimeConfig",
				"loading runtime configuration of "+c.SelfDescription())
		}
		applied[c.Name()] = true
	}
	for name := range cfgs {
		if !applied[name] {
			d.logger.Warn("runtime configuration for unknown component skipped", "name", name)
		}
	}
	return nil
}
