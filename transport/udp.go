package transport

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/flooklab/godaq/errors"
	"github.com/flooklab/godaq/ioruntime"
	"github.com/flooklab/godaq/metric"
)

const maxDatagramSize = 65507

// UDPSocket wraps a connected UDP datagram socket. Datagram boundaries are
// preserved: a termination-style read (size == -1) returns exactly one
// datagram, exact-size reads accumulate datagram payloads in the internal
// buffer, and ReadMax truncates a single datagram. No terminations are
// applied in either direction.
type UDPSocket struct {
	name    string
	host    string
	port    int
	metrics *metric.Metrics
	logger  *slog.Logger

	mu   sync.Mutex
	conn *net.UDPConn
	buf  []byte
}

// NewUDPSocket creates an unconnected UDP channel wrapper. The metrics
// argument may be nil to disable instrumentation.
func NewUDPSocket(name, host string, port int, m *metric.Metrics) *UDPSocket {
	return &UDPSocket{
		name:    name,
		host:    host,
		port:    port,
		metrics: m,
		logger:  slog.Default().With("channel", "udp", "name", name),
	}
}

// Init resolves the endpoint and connects the datagram socket. The I/O
// runtime must be running. Timeout bounds the resolution (zero waits forever).
func (s *UDPSocket) Init(timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !ioruntime.Running() {
		return errors.WrapIO(errors.ErrRuntimeStopped, "UDPSocket", "Init", "connecting")
	}
	if s.conn != nil {
		return nil
	}

	addr := net.JoinHostPort(s.host, fmt.Sprintf("%d", s.port))

	var conn *net.UDPConn
	op := newOperation()
	submit(op, func() {
		raddr, err := net.ResolveUDPAddr("udp", addr)
		if err != nil {
			op.complete(0, err)
			return
		}
		conn, err = net.DialUDP("udp", nil, raddr)
		op.complete(0, err)
	})

	_, timedOut, err := await(op, timeout, nil)
	if timedOut {
		if conn != nil {
			conn.Close()
		}
		s.metrics.RecordTimeout("udp", s.name, "init")
		return errors.WrapTimeout(errors.ErrTimeout, "UDPSocket", "Init", "connecting to "+addr)
	}
	if err != nil {
		s.metrics.RecordError("udp", s.name, "init")
		return errors.WrapIO(err, "UDPSocket", "Init", "connecting to "+addr)
	}

	s.conn = conn
	s.buf = nil
	s.logger.Debug("connected", "address", addr)
	return nil
}

// Close disconnects and discards buffered data. Closing a disconnected
// socket is a no-op.
func (s *UDPSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	s.buf = nil
	if err != nil {
		return errors.WrapIO(err, "UDPSocket", "Close", "disconnecting")
	}
	return nil
}

// Connected reports whether the socket currently holds an open connection.
func (s *UDPSocket) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Read returns exactly size bytes, accumulating datagram payloads as needed.
// size == -1 returns the next whole datagram (buffered data first), size == 0
// returns an empty slice and size < -1 is a usage error. Zero timeout waits
// forever.
func (s *UDPSocket) Read(size int, timeout time.Duration) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	if size < -1 {
		return nil, errors.WrapUsage(
			fmt.Errorf("%w: %d", errors.ErrInvalidSize, size), "UDPSocket", "Read", "size check")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deadline := deadlineFor(timeout)

	if size == -1 {
		if len(s.buf) > 0 {
			data := s.buf
			s.buf = nil
			s.metrics.RecordRead("udp", s.name, len(data))
			return data, nil
		}
		data, err := s.receiveLocked(deadline, "Read")
		if err != nil {
			return nil, err
		}
		s.metrics.RecordRead("udp", s.name, len(data))
		return data, nil
	}

	for len(s.buf) < size {
		data, err := s.receiveLocked(deadline, "Read")
		if err != nil {
			return nil, err
		}
		s.buf = append(s.buf, data...)
	}
	data := s.buf[:size:size]
	s.buf = s.buf[size:]
	s.metrics.RecordRead("udp", s.name, len(data))
	return data, nil
}

// ReadMax returns up to size bytes: buffered data if any, otherwise a single
// datagram truncated to size. The truncated remainder of a datagram is
// discarded, matching datagram socket semantics.
func (s *UDPSocket) ReadMax(size int, timeout time.Duration) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	if size < 0 {
		return nil, errors.WrapUsage(
			fmt.Errorf("%w: %d", errors.ErrInvalidSize, size), "UDPSocket", "ReadMax", "size check")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.buf) == 0 {
		data, err := s.receiveLocked(deadlineFor(timeout), "ReadMax")
		if err != nil {
			return nil, err
		}
		s.buf = data
	}

	n := min(size, len(s.buf))
	data := s.buf[:n:n]
	s.buf = nil
	s.metrics.RecordRead("udp", s.name, len(data))
	return data, nil
}

// receiveLocked receives one datagram on the ioruntime pool, bounded by the
// absolute deadline.
func (s *UDPSocket) receiveLocked(deadline time.Time, method string) ([]byte, error) {
	if s.conn == nil {
		return nil, errors.WrapIO(errors.ErrNotConnected, "UDPSocket", method, "receiving")
	}

	conn := s.conn
	tmp := make([]byte, maxDatagramSize)
	op := newOperation()
	submit(op, func() {
		n, err := conn.Read(tmp)
		op.complete(n, err)
	})

	n, timedOut, err := await(op, remaining(deadline), func() {
		conn.SetReadDeadline(time.Now())
	})
	conn.SetReadDeadline(time.Time{})

	if err != nil {
		s.metrics.RecordError("udp", s.name, "read")
		return nil, errors.WrapIO(err, "UDPSocket", method, "receiving")
	}
	if timedOut && n == 0 {
		s.metrics.RecordTimeout("udp", s.name, "read")
		return nil, errors.WrapTimeout(errors.ErrTimeout, "UDPSocket", method, "receiving")
	}
	return tmp[:n:n], nil
}

// Write sends data as a single datagram, bounded by timeout
// (zero waits forever).
func (s *UDPSocket) Write(data []byte, timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return errors.WrapIO(errors.ErrNotConnected, "UDPSocket", "Write", "sending")
	}

	conn := s.conn
	payload := append([]byte(nil), data...)
	op := newOperation()
	submit(op, func() {
		n, err := conn.Write(payload)
		op.complete(n, err)
	})

	n, timedOut, err := await(op, timeout, func() {
		conn.SetWriteDeadline(time.Now())
	})
	conn.SetWriteDeadline(time.Time{})

	s.metrics.RecordWrite("udp", s.name, n)
	if err != nil {
		s.metrics.RecordError("udp", s.name, "write")
		return errors.WrapIO(err, "UDPSocket", "Write", "sending")
	}
	if timedOut {
		s.metrics.RecordTimeout("udp", s.name, "write")
		return errors.WrapTimeout(errors.ErrTimeout, "UDPSocket", "Write", "sending")
	}
	return nil
}

// ReadBufferEmpty reports whether no received data is pending. A datagram
// found waiting in the OS buffer is moved into the internal buffer and stays
// available for the next read.
func (s *UDPSocket) ReadBufferEmpty() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.buf) > 0 {
		return false, nil
	}
	data, err := s.probeLocked("ReadBufferEmpty")
	if err != nil {
		return false, err
	}
	s.buf = data
	return len(data) == 0, nil
}

// ClearReadBuffer discards buffered data and drains all datagrams pending in
// the OS receive buffer.
func (s *UDPSocket) ClearReadBuffer() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf = nil
	for {
		data, err := s.probeLocked("ClearReadBuffer")
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return nil
		}
	}
}

// probeLocked performs a short bounded receive of one datagram (probeTimeout
// deadline) and returns its payload, or nil if none was pending.
func (s *UDPSocket) probeLocked(method string) ([]byte, error) {
	if s.conn == nil {
		return nil, errors.WrapIO(errors.ErrNotConnected, "UDPSocket", method, "probing receive buffer")
	}

	tmp := make([]byte, maxDatagramSize)
	s.conn.SetReadDeadline(time.Now().Add(probeTimeout))
	n, err := s.conn.Read(tmp)
	s.conn.SetReadDeadline(time.Time{})

	if err != nil && !errors.Is(err, os.ErrDeadlineExceeded) {
		return nil, errors.WrapIO(err, "UDPSocket", method, "probing receive buffer")
	}
	if n == 0 {
		return nil, nil
	}
	return tmp[:n:n], nil
}
