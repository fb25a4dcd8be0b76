package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/flooklab/godaq/errors"
	"github.com/flooklab/godaq/ioruntime"
	"github.com/flooklab/godaq/metric"
)

const readChunkSize = 4096

// TCPSocket wraps a client TCP stream connection. Incoming bytes pass through
// an internal FIFO buffer so that termination-based and exact-size reads can
// hold surplus data for the next call, and a timed-out read keeps its partial
// data buffered instead of dropping it.
//
// All blocking socket calls run on the ioruntime pool; Init refuses to
// connect while the pool is stopped.
type TCPSocket struct {
	name      string
	host      string
	port      int
	readTerm  []byte
	writeTerm []byte
	metrics   *metric.Metrics
	logger    *slog.Logger

	mu   sync.Mutex
	conn net.Conn
	buf  []byte
}

// NewTCPSocket creates an unconnected TCP channel wrapper. The metrics
// argument may be nil to disable instrumentation.
func NewTCPSocket(name, host string, port int, readTerm, writeTerm []byte, m *metric.Metrics) *TCPSocket {
	return &TCPSocket{
		name:      name,
		host:      host,
		port:      port,
		readTerm:  readTerm,
		writeTerm: writeTerm,
		metrics:   m,
		logger:    slog.Default().With("channel", "tcp", "name", name),
	}
}

// Init connects to the configured endpoint, bounded by timeout
// (zero waits forever). The I/O runtime must be running.
func (s *TCPSocket) Init(timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !ioruntime.Running() {
		return errors.WrapIO(errors.ErrRuntimeStopped, "TCPSocket", "Init", "connecting")
	}
	if s.conn != nil {
		return nil
	}

	addr := net.JoinHostPort(s.host, fmt.Sprintf("%d", s.port))
	ctx, cancelDial := context.WithCancel(context.Background())
	defer cancelDial()

	var conn net.Conn
	op := newOperation()
	submit(op, func() {
		var d net.Dialer
		c, err := d.DialContext(ctx, "tcp", addr)
		conn = c
		op.complete(0, err)
	})

	_, timedOut, err := await(op, timeout, cancelDial)
	if timedOut {
		if conn != nil {
			conn.Close()
		}
		s.metrics.RecordTimeout("tcp", s.name, "init")
		return errors.WrapTimeout(errors.ErrTimeout, "TCPSocket", "Init", "connecting to "+addr)
	}
	if err != nil {
		s.metrics.RecordError("tcp", s.name, "init")
		return errors.WrapIO(err, "TCPSocket", "Init", "connecting to "+addr)
	}

	s.conn = conn
	s.buf = nil
	s.logger.Debug("connected", "address", addr)
	return nil
}

// Close disconnects and discards buffered data. Closing a disconnected
// socket is a no-op.
func (s *TCPSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	s.buf = nil
	if err != nil {
		return errors.WrapIO(err, "TCPSocket", "Close", "disconnecting")
	}
	return nil
}

// Connected reports whether the socket currently holds an open connection.
func (s *TCPSocket) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Read returns exactly size bytes, or, for size == -1, all bytes up to (and
// excluding) the read termination. size == 0 returns an empty slice and
// size < -1 is a usage error. A timed-out read keeps the partially received
// data buffered for the next call. Zero timeout waits forever.
func (s *TCPSocket) Read(size int, timeout time.Duration) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	if size < -1 {
		return nil, errors.WrapUsage(
			fmt.Errorf("%w: %d", errors.ErrInvalidSize, size), "TCPSocket", "Read", "size check")
	}
	if size == -1 && len(s.readTerm) == 0 {
		return nil, errors.WrapUsage(
			errors.New("termination-based read needs a non-empty read termination"),
			"TCPSocket", "Read", "size check")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deadline := deadlineFor(timeout)
	for {
		if size == -1 {
			if idx := indexOfTerm(s.buf, s.readTerm); idx >= 0 {
				data := s.buf[:idx:idx]
				s.buf = s.buf[idx+len(s.readTerm):]
				s.metrics.RecordRead("tcp", s.name, len(data))
				return data, nil
			}
		} else if len(s.buf) >= size {
			data := s.buf[:size:size]
			s.buf = s.buf[size:]
			s.metrics.RecordRead("tcp", s.name, len(data))
			return data, nil
		}

		if err := s.fillLocked(deadline, "Read"); err != nil {
			return nil, err
		}
	}
}

// ReadMax returns up to size bytes: buffered data if any is available,
// otherwise whatever a single receive yields. size == 0 returns an empty
// slice and negative sizes are a usage error.
func (s *TCPSocket) ReadMax(size int, timeout time.Duration) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	if size < 0 {
		return nil, errors.WrapUsage(
			fmt.Errorf("%w: %d", errors.ErrInvalidSize, size), "TCPSocket", "ReadMax", "size check")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.buf) == 0 {
		if err := s.fillLocked(deadlineFor(timeout), "ReadMax"); err != nil {
			return nil, err
		}
	}

	n := min(size, len(s.buf))
	data := s.buf[:n:n]
	s.buf = s.buf[n:]
	s.metrics.RecordRead("tcp", s.name, len(data))
	return data, nil
}

// fillLocked performs one receive into the internal buffer, bounded by the
// absolute deadline. Hitting EOF closes the connection so later operations
// fail deterministically instead of spinning on a dead peer.
func (s *TCPSocket) fillLocked(deadline time.Time, method string) error {
	if s.conn == nil {
		return errors.WrapIO(errors.ErrNotConnected, "TCPSocket", method, "receiving")
	}

	conn := s.conn
	tmp := make([]byte, readChunkSize)
	op := newOperation()
	submit(op, func() {
		n, err := conn.Read(tmp)
		op.complete(n, err)
	})

	n, timedOut, err := await(op, remaining(deadline), func() {
		conn.SetReadDeadline(time.Now())
	})
	conn.SetReadDeadline(time.Time{})

	if n > 0 {
		s.buf = append(s.buf, tmp[:n]...)
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			conn.Close()
			s.conn = nil
			s.metrics.RecordError("tcp", s.name, "read")
			return errors.WrapIO(
				errors.New("connection closed by peer"), "TCPSocket", method, "receiving")
		}
		s.metrics.RecordError("tcp", s.name, "read")
		return errors.WrapIO(err, "TCPSocket", method, "receiving")
	}
	if timedOut {
		s.metrics.RecordTimeout("tcp", s.name, "read")
		return errors.WrapTimeout(errors.ErrTimeout, "TCPSocket", method, "receiving")
	}
	return nil
}

// Write sends data followed by the write termination, bounded by timeout
// (zero waits forever).
func (s *TCPSocket) Write(data []byte, timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return errors.WrapIO(errors.ErrNotConnected, "TCPSocket", "Write", "sending")
	}

	conn := s.conn
	payload := make([]byte, 0, len(data)+len(s.writeTerm))
	payload = append(payload, data...)
	payload = append(payload, s.writeTerm...)

	op := newOperation()
	submit(op, func() {
		n, err := writeFull(conn, payload)
		op.complete(n, err)
	})

	n, timedOut, err := await(op, timeout, func() {
		conn.SetWriteDeadline(time.Now())
	})
	conn.SetWriteDeadline(time.Time{})

	s.metrics.RecordWrite("tcp", s.name, n)
	if err != nil {
		s.metrics.RecordError("tcp", s.name, "write")
		return errors.WrapIO(err, "TCPSocket", "Write", "sending")
	}
	if timedOut {
		s.metrics.RecordTimeout("tcp", s.name, "write")
		return errors.WrapTimeout(errors.ErrTimeout, "TCPSocket", "Write", "sending")
	}
	return nil
}

// ReadBufferEmpty reports whether no received data is pending, checking both
// the internal buffer and the OS receive buffer. Bytes found in the OS buffer
// are moved into the internal buffer and stay available for the next read.
func (s *TCPSocket) ReadBufferEmpty() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.buf) > 0 {
		return false, nil
	}
	n, err := s.probeLocked("ReadBufferEmpty")
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// ClearReadBuffer discards all pending received data, both internally
// buffered and waiting in the OS receive buffer.
func (s *TCPSocket) ClearReadBuffer() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf = nil
	for {
		n, err := s.probeLocked("ClearReadBuffer")
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		s.buf = nil
	}
}

// probeLocked performs a short bounded receive (probeTimeout deadline) into
// the internal buffer and returns the number of bytes moved. EOF closes the
// connection, mirroring fillLocked.
func (s *TCPSocket) probeLocked(method string) (int, error) {
	if s.conn == nil {
		return 0, errors.WrapIO(errors.ErrNotConnected, "TCPSocket", method, "probing receive buffer")
	}

	tmp := make([]byte, readChunkSize)
	s.conn.SetReadDeadline(time.Now().Add(probeTimeout))
	n, err := s.conn.Read(tmp)
	s.conn.SetReadDeadline(time.Time{})

	if n > 0 {
		s.buf = append(s.buf, tmp[:n]...)
	}
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return n, nil
		}
		if errors.Is(err, io.EOF) {
			s.conn.Close()
			s.conn = nil
			return n, errors.WrapIO(
				errors.New("connection closed by peer"), "TCPSocket", method, "probing receive buffer")
		}
		return n, errors.WrapIO(err, "TCPSocket", method, "probing receive buffer")
	}
	return n, nil
}

// writeFull writes all of payload, looping over short writes.
func writeFull(w io.Writer, payload []byte) (int, error) {
	total := 0
	for total < len(payload) {
		n, err := w.Write(payload[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
