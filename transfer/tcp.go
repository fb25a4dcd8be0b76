package transfer

import (
	"fmt"
	"math"
	"time"

	"github.com/flooklab/godaq/config"
	"github.com/flooklab/godaq/errors"
	"github.com/flooklab/godaq/transport"
)

// TypeNameTCP is the registered type name of the TCP interface
// (also available under the alias "Socket").
const TypeNameTCP = "TCP"

var tcpRequired = mustRequired(`
init:
    address: string
    port: int
    read_termination: string
`)

// mustRequired parses a required-key tree literal; the literals are fixed
// strings, so a parse failure is a programming error.
func mustRequired(doc string) config.Config {
	cfg, err := config.FromYAML(doc)
	if err != nil {
		panic(err)
	}
	return cfg
}

// TCP is a direct interface over a client TCP connection.
//
// Configuration keys (under init): address (host name or IP, non-empty),
// port (1..65535), read_termination, write_termination (defaults to the read
// termination), connect_timeout (milliseconds, default 0 = unbounded) and
// query_delay (milliseconds, default 0).
type TCP struct {
	*Base
	socket         *transport.TCPSocket
	connectTimeout time.Duration
}

// NewTCP creates a TCP interface from its configuration.
func NewTCP(name string, cfg config.Config) (*TCP, error) {
	base, err := NewBase(TypeNameTCP, name, cfg, tcpRequired)
	if err != nil {
		return nil, err
	}

	host := cfg.GetString("init.address", "")
	if host == "" {
		return nil, errors.WrapConfig(
			fmt.Errorf("%w: no address/hostname set", errors.ErrInvalidConfig),
			TypeNameTCP, "NewTCP", "configuring "+base.SelfDescription())
	}
	port := cfg.GetInt("init.port", 0)
	if port < 1 || port > 65535 {
		return nil, errors.WrapConfig(
			fmt.Errorf("%w: port %d out of range", errors.ErrInvalidConfig, port),
			TypeNameTCP, "NewTCP", "configuring "+base.SelfDescription())
	}

	readTerm := []byte(cfg.GetString("init.read_termination", ""))
	writeTerm := []byte(cfg.GetString("init.write_termination", string(readTerm)))

	connectMs := cfg.GetFloat("init.connect_timeout", 0)
	if connectMs < 0 {
		return nil, errors.WrapConfig(
			fmt.Errorf("%w: negative connect timeout %g ms", errors.ErrInvalidConfig, connectMs),
			TypeNameTCP, "NewTCP", "configuring "+base.SelfDescription())
	}

	t := &TCP{
		Base:           base,
		socket:         transport.NewTCPSocket(name, host, port, readTerm, writeTerm, metrics),
		connectTimeout: time.Duration(math.Round(connectMs*1000)) * time.Microsecond,
	}
	t.BindHooks(
		func() error { return t.socket.Init(t.connectTimeout) },
		func() error { return t.socket.Close() },
	)
	return t, nil
}

// Read reads size bytes (or up to the read termination for size == -1).
func (t *TCP) Read(size int, timeout time.Duration) ([]byte, error) {
	data, err := t.socket.Read(size, timeout)
	if err != nil {
		return nil, errors.Wrap(err, TypeNameTCP, "Read", "reading from "+t.SelfDescription())
	}
	return data, nil
}

// ReadMax reads up to size bytes.
func (t *TCP) ReadMax(size int, timeout time.Duration) ([]byte, error) {
	data, err := t.socket.ReadMax(size, timeout)
	if err != nil {
		return nil, errors.Wrap(err, TypeNameTCP, "ReadMax", "reading from "+t.SelfDescription())
	}
	return data, nil
}

// Write sends data followed by the write termination.
func (t *TCP) Write(data []byte, timeout time.Duration) error {
	if err := t.socket.Write(data, timeout); err != nil {
		return errors.Wrap(err, TypeNameTCP, "Write", "writing to "+t.SelfDescription())
	}
	return nil
}

// Query performs the write-then-read round trip.
func (t *TCP) Query(data []byte, size int, timeout time.Duration) ([]byte, error) {
	result, err := t.RunQuery(t,
		func() error { return t.socket.Write(data, timeout) },
		func() ([]byte, error) { return t.socket.Read(size, timeout) },
	)
	if err != nil {
		return nil, errors.Wrap(err, TypeNameTCP, "Query", "querying "+t.SelfDescription())
	}
	return result, nil
}

// ReadBufferEmpty reports whether no received data is pending.
func (t *TCP) ReadBufferEmpty() (bool, error) {
	empty, err := t.socket.ReadBufferEmpty()
	if err != nil {
		return false, errors.Wrap(err, TypeNameTCP, "ReadBufferEmpty",
			"checking read buffer of "+t.SelfDescription())
	}
	return empty, nil
}

// ClearReadBuffer discards all pending received data.
func (t *TCP) ClearReadBuffer() error {
	if err := t.socket.ClearReadBuffer(); err != nil {
		return errors.Wrap(err, TypeNameTCP, "ClearReadBuffer",
			"clearing read buffer of "+t.SelfDescription())
	}
	return nil
}
