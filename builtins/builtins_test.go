package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flooklab/godaq/config"
	"github.com/flooklab/godaq/factory"
	"github.com/flooklab/godaq/hardware"
	"github.com/flooklab/godaq/register"
	"github.com/flooklab/godaq/transfer"
)

func TestRegisterAddsAllBuiltins(t *testing.T) {
	r := factory.NewRegistry()
	require.NoError(t, Register(r))

	for _, typeName := range []string{
		transfer.TypeNameTCP, transfer.TypeNameUDP, transfer.TypeNameSerial,
		transfer.TypeNameDummyInterface, transfer.TypeNameDummyMuxedInterface,
		AliasSocket,
	} {
		assert.Contains(t, r.InterfaceTypes(), typeName)
	}
	for _, typeName := range []string{
		hardware.TypeNameDummyDriver, hardware.TypeNameDummyMuxedDriver, hardware.TypeNameEcho,
	} {
		assert.Contains(t, r.DriverTypes(), typeName)
	}
	assert.Contains(t, r.RegisterTypes(), register.TypeNameDummyRegister)

	// Re-registration is idempotent.
	require.NoError(t, Register(r))
}

func TestSocketAliasResolvesToTCP(t *testing.T) {
	r := factory.NewRegistry()
	require.NoError(t, Register(r))

	cfg, err := config.FromYAML(`
init:
    address: localhost
    port: 4711
    read_termination: "\n"
`)
	require.NoError(t, err)

	intf, err := r.CreateInterface(AliasSocket, "sock0", cfg)
	require.NoError(t, err)
	assert.Equal(t, transfer.TypeNameTCP, intf.Type())
}
