package hardware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flooklab/godaq/component"
	"github.com/flooklab/godaq/config"
	"github.com/flooklab/godaq/errors"
	"github.com/flooklab/godaq/transfer"
)

var (
	_ Driver      = (*DummyDriver)(nil)
	_ Driver      = (*Echo)(nil)
	_ MuxedDriver = (*DummyMuxedDriver)(nil)
)

func mustConfig(t *testing.T, doc string) config.Config {
	t.Helper()
	cfg, err := config.FromYAML(doc)
	require.NoError(t, err)
	return cfg
}

// mockDirect is a scripted direct interface recording written data.
type mockDirect struct {
	*transfer.Base
	readData []byte
	written  [][]byte
}

func newMockDirect(t *testing.T, readData []byte) *mockDirect {
	t.Helper()
	base, err := transfer.NewBase("Mock", "mock0", config.New(), config.New())
	require.NoError(t, err)
	return &mockDirect{Base: base, readData: readData}
}

func (m *mockDirect) Read(size int, timeout time.Duration) ([]byte, error) {
	return m.readData, nil
}

func (m *mockDirect) ReadMax(size int, timeout time.Duration) ([]byte, error) {
	return m.readData, nil
}

func (m *mockDirect) Write(data []byte, timeout time.Duration) error {
	m.written = append(m.written, append([]byte(nil), data...))
	return nil
}

func (m *mockDirect) Query(data []byte, size int, timeout time.Duration) ([]byte, error) {
	if err := m.Write(data, timeout); err != nil {
		return nil, err
	}
	return m.readData, nil
}

func (m *mockDirect) ReadBufferEmpty() (bool, error) { return true, nil }
func (m *mockDirect) ClearReadBuffer() error         { return nil }

// mockMuxed records the absolute bus addresses of all accesses.
type mockMuxed struct {
	*transfer.Base
	readAddrs  []uint64
	writeAddrs []uint64
}

func newMockMuxed(t *testing.T) *mockMuxed {
	t.Helper()
	base, err := transfer.NewBase("MockMuxed", "mock1", config.New(), config.New())
	require.NoError(t, err)
	return &mockMuxed{Base: base}
}

func (m *mockMuxed) Read(addr uint64, size int, timeout time.Duration) ([]byte, error) {
	m.readAddrs = append(m.readAddrs, addr)
	return make([]byte, max(size, 0)), nil
}

func (m *mockMuxed) Write(addr uint64, data []byte, timeout time.Duration) error {
	m.writeAddrs = append(m.writeAddrs, addr)
	return nil
}

func (m *mockMuxed) Query(writeAddr, readAddr uint64, data []byte, size int,
	timeout time.Duration) ([]byte, error) {

	m.writeAddrs = append(m.writeAddrs, writeAddr)
	m.readAddrs = append(m.readAddrs, readAddr)
	return make([]byte, max(size, 0)), nil
}

func (m *mockMuxed) ReadBufferEmpty() (bool, error) { return true, nil }
func (m *mockMuxed) ClearReadBuffer() error         { return nil }

func TestNewDirectBaseRequiresInterface(t *testing.T) {
	_, err := NewDirectBase("Test", "d0", nil, config.New(), config.New())
	require.Error(t, err)
	assert.True(t, errors.IsUsage(err))
}

func TestDirectBaseForwardsAccess(t *testing.T) {
	intf := newMockDirect(t, []byte("response"))
	drv, err := NewDummyDriver("d0", intf, config.New())
	require.NoError(t, err)

	assert.Equal(t, component.HardwareLayer, drv.Layer())
	assert.Same(t, intf, drv.Interface().(*mockDirect))

	data, err := drv.Query([]byte("cmd"), -1, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte("response"), data)
	require.Len(t, intf.written, 1)
	assert.Equal(t, []byte("cmd"), intf.written[0])
}

func TestMuxedBaseRequiresBaseAddr(t *testing.T) {
	intf := newMockMuxed(t)

	_, err := NewDummyMuxedDriver("d0", intf, config.New())
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))

	_, err = NewDummyMuxedDriver("d0", intf, mustConfig(t, "base_addr: -5"))
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))

	_, err = NewDummyMuxedDriver("d0", nil, mustConfig(t, "base_addr: 0x1000"))
	require.Error(t, err)
	assert.True(t, errors.IsUsage(err))
}

func TestMuxedBaseAppliesBaseAddress(t *testing.T) {
	intf := newMockMuxed(t)
	drv, err := NewDummyMuxedDriver("d0", intf, mustConfig(t, "base_addr: 0x1000"))
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1000), drv.BaseAddr())

	_, err = drv.Read(0x10, 4, time.Second)
	require.NoError(t, err)
	require.NoError(t, drv.Write(0x20, []byte{1}, time.Second))
	_, err = drv.Query(0x30, 0x40, []byte{2}, 4, time.Second)
	require.NoError(t, err)

	assert.Equal(t, []uint64{0x1010, 0x1040}, intf.readAddrs)
	assert.Equal(t, []uint64{0x1020, 0x1030}, intf.writeAddrs)
}

func TestMuxedDataProtocolDefaults(t *testing.T) {
	drv, err := NewDummyMuxedDriver("d0", newMockMuxed(t), mustConfig(t, "base_addr: 0"))
	require.NoError(t, err)

	data, err := drv.GetData(8, 0)
	require.NoError(t, err)
	assert.Empty(t, data)

	require.NoError(t, drv.SetData([]byte{1, 2}, 0))
	require.NoError(t, drv.Exec())

	done, err := drv.IsDone()
	require.NoError(t, err)
	assert.False(t, done)
}

func TestMuxedDataHookOverride(t *testing.T) {
	drv, err := NewDummyMuxedDriver("d0", newMockMuxed(t), mustConfig(t, "base_addr: 0"))
	require.NoError(t, err)

	drv.BindDataHooks(
		func(size int, addrOffs uint64) ([]byte, error) { return []byte{0xAB}, nil },
		nil, nil,
		func() (bool, error) { return true, nil },
	)

	data, err := drv.GetData(1, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAB}, data)

	done, err := drv.IsDone()
	require.NoError(t, err)
	assert.True(t, done)
}

func TestResetDefaultAndHook(t *testing.T) {
	drv, err := NewDummyDriver("d0", newMockDirect(t, nil), config.New())
	require.NoError(t, err)
	require.NoError(t, drv.Reset())

	called := false
	drv.BindResetHook(func() error { called = true; return nil })
	require.NoError(t, drv.Reset())
	assert.True(t, called)
}

func TestEchoRun(t *testing.T) {
	intf := newMockDirect(t, []byte("ping"))
	echo, err := NewEcho("echo0", intf, config.New())
	require.NoError(t, err)

	require.NoError(t, echo.Run(time.Second))
	require.Len(t, intf.written, 1)
	assert.Equal(t, []byte("ping"), intf.written[0])
}

func TestEchoSizeValidation(t *testing.T) {
	_, err := NewEcho("echo0", newMockDirect(t, nil), mustConfig(t, "size: -2"))
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))
}
