package transfer

import (
	"time"

	"github.com/flooklab/godaq/config"
	"github.com/flooklab/godaq/errors"
	"github.com/flooklab/godaq/transport"
)

// TypeNameSerial is the registered type name of the serial interface.
const TypeNameSerial = "Serial"

var serialRequired = mustRequired(`
init:
    port: string
    read_termination: string
    baudrate: int
`)

// serialOpener lets tests substitute an in-memory device for the real
// serial backend.
var serialOpener transport.PortOpener

// Serial is a direct interface over a serial port. Received data is drained
// continuously by a background poll goroutine, so the device-side buffer
// cannot overrun while the application is busy.
//
// Configuration keys (under init): port (device path), baudrate,
// read_termination, write_termination (defaults to the read termination),
// max_poll_errors (consecutive poll failures tolerated before polling gives
// up) and query_delay (milliseconds, default 0).
type Serial struct {
	*Base
	port *transport.SerialPort
}

// NewSerial creates a serial interface from its configuration.
func NewSerial(name string, cfg config.Config) (*Serial, error) {
	base, err := NewBase(TypeNameSerial, name, cfg, serialRequired)
	if err != nil {
		return nil, err
	}

	portName := cfg.GetString("init.port", "")
	baudRate := cfg.GetInt("init.baudrate", 9600)
	readTerm := []byte(cfg.GetString("init.read_termination", ""))
	writeTerm := []byte(cfg.GetString("init.write_termination", string(readTerm)))
	maxPollErrors := cfg.GetInt("init.max_poll_errors", transport.DefaultMaxPollErrors)

	s := &Serial{
		Base: base,
		port: transport.NewSerialPort(name, portName, baudRate, readTerm, writeTerm,
			serialOpener, maxPollErrors, metrics),
	}
	s.BindHooks(
		func() error { return s.port.Init() },
		func() error { return s.port.Close() },
	)
	return s, nil
}

// Read reads size bytes (or up to the read termination for size == -1).
func (s *Serial) Read(size int, timeout time.Duration) ([]byte, error) {
	data, err := s.port.Read(size, timeout)
	if err != nil {
		return nil, errors.Wrap(err, TypeNameSerial, "Read", "reading from "+s.SelfDescription())
	}
	return data, nil
}

// ReadMax reads up to size bytes.
func (s *Serial) ReadMax(size int, timeout time.Duration) ([]byte, error) {
	data, err := s.port.ReadMax(size, timeout)
	if err != nil {
		return nil, errors.Wrap(err, TypeNameSerial, "ReadMax", "reading from "+s.SelfDescription())
	}
	return data, nil
}

// Write sends data followed by the write termination.
func (s *Serial) Write(data []byte, timeout time.Duration) error {
	_ = timeout // serial writes complete against the OS transmit buffer
	if err := s.port.Write(data); err != nil {
		return errors.Wrap(err, TypeNameSerial, "Write", "writing to "+s.SelfDescription())
	}
	return nil
}

// Query performs the write-then-read round trip.
func (s *Serial) Query(data []byte, size int, timeout time.Duration) ([]byte, error) {
	result, err := s.RunQuery(s,
		func() error { return s.port.Write(data) },
		func() ([]byte, error) { return s.port.Read(size, timeout) },
	)
	if err != nil {
		return nil, errors.Wrap(err, TypeNameSerial, "Query", "querying "+s.SelfDescription())
	}
	return result, nil
}

// ReadBufferEmpty reports whether no received data is pending.
func (s *Serial) ReadBufferEmpty() (bool, error) {
	empty, err := s.port.ReadBufferEmpty()
	if err != nil {
		return false, errors.Wrap(err, TypeNameSerial, "ReadBufferEmpty",
			"checking read buffer of "+s.SelfDescription())
	}
	return empty, nil
}

// ClearReadBuffer discards all buffered received data.
func (s *Serial) ClearReadBuffer() error {
	if err := s.port.ClearReadBuffer(); err != nil {
		return errors.Wrap(err, TypeNameSerial, "ClearReadBuffer",
			"clearing read buffer of "+s.SelfDescription())
	}
	return nil
}

// PollStopped reports whether the background poll goroutine has terminated.
func (s *Serial) PollStopped() bool {
	return s.port.PollStopped()
}
