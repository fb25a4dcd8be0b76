// Package builtins registers every built-in component type with a factory
// registry. Applications call Register once at startup (typically on
// factory.Default()) before building devices; custom component types are
// registered separately by their own packages.
package builtins

import (
	"github.com/flooklab/godaq/config"
	"github.com/flooklab/godaq/errors"
	"github.com/flooklab/godaq/factory"
	"github.com/flooklab/godaq/hardware"
	"github.com/flooklab/godaq/register"
	"github.com/flooklab/godaq/transfer"
)

// AliasSocket is the historical alias of the TCP interface type.
const AliasSocket = "Socket"

// Register adds all built-in interface, driver and register types (and their
// aliases) to the registry. Registration is idempotent.
func Register(r *factory.Registry) error {
	r.RegisterInterfaceType(transfer.TypeNameTCP,
		func(name string, cfg config.Config) (transfer.Interface, error) {
			return transfer.NewTCP(name, cfg)
		})
	r.RegisterInterfaceType(transfer.TypeNameUDP,
		func(name string, cfg config.Config) (transfer.Interface, error) {
			return transfer.NewUDP(name, cfg)
		})
	r.RegisterInterfaceType(transfer.TypeNameSerial,
		func(name string, cfg config.Config) (transfer.Interface, error) {
			return transfer.NewSerial(name, cfg)
		})
	r.RegisterInterfaceType(transfer.TypeNameDummyInterface,
		func(name string, cfg config.Config) (transfer.Interface, error) {
			return transfer.NewDummyInterface(name, cfg)
		})
	r.RegisterInterfaceType(transfer.TypeNameDummyMuxedInterface,
		func(name string, cfg config.Config) (transfer.Interface, error) {
			return transfer.NewDummyMuxedInterface(name, cfg)
		})

	r.RegisterDriverType(hardware.TypeNameDummyDriver,
		func(name string, intf transfer.Interface, cfg config.Config) (hardware.Driver, error) {
			direct, err := factory.AsDirect(hardware.TypeNameDummyDriver, intf)
			if err != nil {
				return nil, err
			}
			return hardware.NewDummyDriver(name, direct, cfg)
		})
	r.RegisterDriverType(hardware.TypeNameDummyMuxedDriver,
		func(name string, intf transfer.Interface, cfg config.Config) (hardware.Driver, error) {
			muxed, err := factory.AsMuxed(hardware.TypeNameDummyMuxedDriver, intf)
			if err != nil {
				return nil, err
			}
			return hardware.NewDummyMuxedDriver(name, muxed, cfg)
		})
	r.RegisterDriverType(hardware.TypeNameEcho,
		func(name string, intf transfer.Interface, cfg config.Config) (hardware.Driver, error) {
			direct, err := factory.AsDirect(hardware.TypeNameEcho, intf)
			if err != nil {
				return nil, err
			}
			return hardware.NewEcho(name, direct, cfg)
		})

	r.RegisterRegisterType(register.TypeNameDummyRegister,
		func(name string, drv hardware.Driver, cfg config.Config) (register.Register, error) {
			return register.NewDummyRegister(name, drv, cfg)
		})

	return errors.Join(
		r.RegisterInterfaceAlias(AliasSocket, transfer.TypeNameTCP),
	)
}
