package transfer

import (
	"fmt"
	"math"
	"time"

	"github.com/flooklab/godaq/config"
	"github.com/flooklab/godaq/errors"
	"github.com/flooklab/godaq/transport"
)

// TypeNameUDP is the registered type name of the UDP interface.
const TypeNameUDP = "UDP"

var udpRequired = mustRequired(`
init:
    address: string
    port: int
`)

// UDP is a direct interface over a connected UDP socket. Datagram boundaries
// replace terminations: a size == -1 read yields one whole datagram and
// writes send one datagram each.
//
// Configuration keys (under init): address, port (1..65535), connect_timeout
// (milliseconds, default 0 = unbounded) and query_delay (milliseconds,
// default 0).
type UDP struct {
	*Base
	socket         *transport.UDPSocket
	connectTimeout time.Duration
}

// NewUDP creates a UDP interface from its configuration.
func NewUDP(name string, cfg config.Config) (*UDP, error) {
	base, err := NewBase(TypeNameUDP, name, cfg, udpRequired)
	if err != nil {
		return nil, err
	}

	host := cfg.GetString("init.address", "")
	if host == "" {
		return nil, errors.WrapConfig(
			fmt.Errorf("%w: no address/hostname set", errors.ErrInvalidConfig),
			TypeNameUDP, "NewUDP", "configuring "+base.SelfDescription())
	}
	port := cfg.GetInt("init.port", 0)
	if port < 1 || port > 65535 {
		return nil, errors.WrapConfig(
			fmt.Errorf("%w: port %d out of range", errors.ErrInvalidConfig, port),
			TypeNameUDP, "NewUDP", "configuring "+base.SelfDescription())
	}

	connectMs := cfg.GetFloat("init.connect_timeout", 0)
	if connectMs < 0 {
		return nil, errors.WrapConfig(
			fmt.Errorf("%w: negative connect timeout %g ms", errors.ErrInvalidConfig, connectMs),
			TypeNameUDP, "NewUDP", "configuring "+base.SelfDescription())
	}

	u := &UDP{
		Base:           base,
		socket:         transport.NewUDPSocket(name, host, port, metrics),
		connectTimeout: time.Duration(math.Round(connectMs*1000)) * time.Microsecond,
	}
	u.BindHooks(
		func() error { return u.socket.Init(u.connectTimeout) },
		func() error { return u.socket.Close() },
	)
	return u, nil
}

// Read reads size bytes (or one whole datagram for size == -1).
func (u *UDP) Read(size int, timeout time.Duration) ([]byte, error) {
	data, err := u.socket.Read(size, timeout)
	if err != nil {
		return nil, errors.Wrap(err, TypeNameUDP, "Read", "reading from "+u.SelfDescription())
	}
	return data, nil
}

// ReadMax reads up to size bytes of one datagram.
func (u *UDP) ReadMax(size int, timeout time.Duration) ([]byte, error) {
	data, err := u.socket.ReadMax(size, timeout)
	if err != nil {
		return nil, errors.Wrap(err, TypeNameUDP, "ReadMax", "reading from "+u.SelfDescription())
	}
	return data, nil
}

// Write sends data as a single datagram.
func (u *UDP) Write(data []byte, timeout time.Duration) error {
	if err := u.socket.Write(data, timeout); err != nil {
		return errors.Wrap(err, TypeNameUDP, "Write", "writing to "+u.SelfDescription())
	}
	return nil
}

// Query performs the write-then-read round trip.
func (u *UDP) Query(data []byte, size int, timeout time.Duration) ([]byte, error) {
	result, err := u.RunQuery(u,
		func() error { return u.socket.Write(data, timeout) },
		func() ([]byte, error) { return u.socket.Read(size, timeout) },
	)
	if err != nil {
		return nil, errors.Wrap(err, TypeNameUDP, "Query", "querying "+u.SelfDescription())
	}
	return result, nil
}

// ReadBufferEmpty reports whether no received data is pending.
func (u *UDP) ReadBufferEmpty() (bool, error) {
	empty, err := u.socket.ReadBufferEmpty()
	if err != nil {
		return false, errors.Wrap(err, TypeNameUDP, "ReadBufferEmpty",
			"checking read buffer of "+u.SelfDescription())
	}
	return empty, nil
}

// ClearReadBuffer discards all pending datagrams.
func (u *UDP) ClearReadBuffer() error {
	if err := u.socket.ClearReadBuffer(); err != nil {
		return errors.Wrap(err, TypeNameUDP, "ClearReadBuffer",
			"clearing read buffer of "+u.SelfDescription())
	}
	return nil
}
