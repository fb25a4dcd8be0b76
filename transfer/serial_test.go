package transfer

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withPipeSerial swaps the serial backend for an in-memory pipe for the
// duration of the test and returns the far end of future opened ports.
func withPipeSerial(t *testing.T) <-chan net.Conn {
	t.Helper()
	ch := make(chan net.Conn, 1)
	prev := serialOpener
	serialOpener = func(portName string, baudRate int) (io.ReadWriteCloser, error) {
		device, far := net.Pipe()
		ch <- far
		return device, nil
	}
	t.Cleanup(func() { serialOpener = prev })
	return ch
}

func serialConfig(t *testing.T) string {
	t.Helper()
	return `
init:
    port: /dev/ttyUSB0
    read_termination: "\r\n"
    baudrate: 19200
`
}

func TestSerialQueryRoundTrip(t *testing.T) {
	fars := withPipeSerial(t)

	intf, err := NewSerial("uart0", mustConfig(t, serialConfig(t)))
	require.NoError(t, err)

	require.NoError(t, intf.Init(false))
	defer intf.Close(true)

	far := <-fars
	defer far.Close()

	// Echo one command on the far end.
	go func() {
		buf := make([]byte, 64)
		n, err := far.Read(buf)
		if err == nil {
			far.Write(buf[:n])
		}
	}()

	data, err := intf.Query([]byte("VOLT?"), -1, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte("VOLT?"), data)
}

func TestSerialCloseStopsPolling(t *testing.T) {
	fars := withPipeSerial(t)

	intf, err := NewSerial("uart0", mustConfig(t, serialConfig(t)))
	require.NoError(t, err)

	require.NoError(t, intf.Init(false))
	far := <-fars
	defer far.Close()

	assert.False(t, intf.PollStopped())
	require.NoError(t, intf.Close(false))
	assert.True(t, intf.PollStopped())
}
