package register

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flooklab/godaq/component"
	"github.com/flooklab/godaq/config"
	"github.com/flooklab/godaq/errors"
	"github.com/flooklab/godaq/hardware"
	"github.com/flooklab/godaq/transfer"
)

var _ Register = (*DummyRegister)(nil)

func newDriver(t *testing.T) hardware.Driver {
	t.Helper()
	intf, err := transfer.NewDummyInterface("mock0", config.New())
	require.NoError(t, err)
	drv, err := hardware.NewDummyDriver("drv0", intf, config.New())
	require.NoError(t, err)
	return drv
}

func TestNewDummyRegister(t *testing.T) {
	drv := newDriver(t)
	reg, err := NewDummyRegister("reg0", drv, config.New())
	require.NoError(t, err)

	assert.Equal(t, component.RegisterLayer, reg.Layer())
	assert.Equal(t, `"DummyRegister"-register instance "reg0"`, reg.SelfDescription())
	assert.Same(t, drv, reg.Driver())

	require.NoError(t, reg.Init(false))
	assert.True(t, reg.Initialized())
	require.NoError(t, reg.Close(false))
}

func TestNewBaseRequiresDriver(t *testing.T) {
	_, err := NewDummyRegister("reg0", nil, config.New())
	require.Error(t, err)
	assert.True(t, errors.IsUsage(err))
}
