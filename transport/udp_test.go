package transport

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flooklab/godaq/errors"
)

// newConnectedUDP pairs a UDPSocket with a loopback peer. The socket sends a
// probe datagram first so the peer learns its address for replies.
func newConnectedUDP(t *testing.T) (*UDPSocket, *net.UDPConn, *net.UDPAddr) {
	t.Helper()

	peer, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { peer.Close() })

	port := peer.LocalAddr().(*net.UDPAddr).Port
	sock := NewUDPSocket("test", "127.0.0.1", port, nil)
	require.NoError(t, sock.Init(2*time.Second))
	t.Cleanup(func() { sock.Close() })

	require.NoError(t, sock.Write([]byte("probe"), time.Second))

	buf := make([]byte, 64)
	peer.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, clientAddr, err := peer.ReadFromUDP(buf)
	require.NoError(t, err)
	require.Equal(t, []byte("probe"), buf[:n])

	return sock, peer, clientAddr
}

func TestUDPReadWholeDatagram(t *testing.T) {
	sock, peer, client := newConnectedUDP(t)

	_, err := peer.WriteToUDP([]byte("datagram-1"), client)
	require.NoError(t, err)

	data, err := sock.Read(-1, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte("datagram-1"), data)
}

func TestUDPExactSizeSpansDatagrams(t *testing.T) {
	sock, peer, client := newConnectedUDP(t)

	_, err := peer.WriteToUDP([]byte("abc"), client)
	require.NoError(t, err)
	_, err = peer.WriteToUDP([]byte("def"), client)
	require.NoError(t, err)

	data, err := sock.Read(4, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcd"), data)

	data, err = sock.Read(2, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte("ef"), data)
}

func TestUDPReadMaxTruncates(t *testing.T) {
	sock, peer, client := newConnectedUDP(t)

	_, err := peer.WriteToUDP([]byte("abcdef"), client)
	require.NoError(t, err)

	data, err := sock.ReadMax(4, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcd"), data)

	// The truncated remainder of the datagram is gone.
	_, err = sock.Read(1, 100*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.IsTimeout(err))
}

func TestUDPReadTimeout(t *testing.T) {
	sock, _, _ := newConnectedUDP(t)

	start := time.Now()
	_, err := sock.Read(-1, 150*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.IsTimeout(err))
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestUDPReadBufferEmptyAndClear(t *testing.T) {
	sock, peer, client := newConnectedUDP(t)

	empty, err := sock.ReadBufferEmpty()
	require.NoError(t, err)
	assert.True(t, empty)

	_, err = peer.WriteToUDP([]byte("one"), client)
	require.NoError(t, err)
	_, err = peer.WriteToUDP([]byte("two"), client)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		empty, err := sock.ReadBufferEmpty()
		return err == nil && !empty
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, sock.ClearReadBuffer())
	empty, err = sock.ReadBufferEmpty()
	require.NoError(t, err)
	assert.True(t, empty)
}

func TestUDPProbeSeesPendingDatagram(t *testing.T) {
	sock, peer, client := newConnectedUDP(t)

	_, err := peer.WriteToUDP([]byte("pending"), client)
	require.NoError(t, err)

	// The probe must pick up a datagram that sits only in the OS receive
	// buffer, and the datagram stays readable afterwards.
	require.Eventually(t, func() bool {
		empty, err := sock.ReadBufferEmpty()
		return err == nil && !empty
	}, 2*time.Second, 10*time.Millisecond)

	data, err := sock.Read(-1, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte("pending"), data)
}

func TestUDPClearDiscardsPendingDatagrams(t *testing.T) {
	sock, peer, client := newConnectedUDP(t)

	_, err := peer.WriteToUDP([]byte("one"), client)
	require.NoError(t, err)
	_, err = peer.WriteToUDP([]byte("two"), client)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		empty, err := sock.ReadBufferEmpty()
		return err == nil && !empty
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, sock.ClearReadBuffer())

	_, err = sock.Read(-1, 150*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.IsTimeout(err))
}

func TestUDPSizeArguments(t *testing.T) {
	sock, _, _ := newConnectedUDP(t)

	data, err := sock.Read(0, time.Second)
	require.NoError(t, err)
	assert.Empty(t, data)

	_, err = sock.Read(-3, time.Second)
	require.Error(t, err)
	assert.True(t, errors.IsUsage(err))
}

func TestUDPOperationsWithoutInit(t *testing.T) {
	sock := NewUDPSocket("test", "127.0.0.1", 1, nil)

	_, err := sock.Read(1, time.Second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotConnected))

	err = sock.Write([]byte("x"), time.Second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotConnected))
}
