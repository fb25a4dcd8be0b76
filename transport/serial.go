package transport

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/flooklab/godaq/errors"
	"github.com/flooklab/godaq/metric"
)

// DefaultMaxPollErrors is the default ceiling of consecutive poll-loop read
// failures before polling gives up; a successful read resets the count.
const DefaultMaxPollErrors = 10

// PortOpener opens a serial device by name and baud rate. The default opener
// uses go.bug.st/serial; tests substitute an in-memory pipe.
type PortOpener func(portName string, baudRate int) (io.ReadWriteCloser, error)

func defaultOpener(portName string, baudRate int) (io.ReadWriteCloser, error) {
	return serial.Open(portName, &serial.Mode{BaudRate: baudRate})
}

// SerialPort wraps a serial device. A background poll goroutine continuously
// drains the OS receive buffer into the internal buffer, so received data
// survives an OS-side buffer overrun and ReadBufferEmpty only has to inspect
// internal state. Blocking reads wait on a condition variable signalled by
// the poll loop and wake on new data, timeout expiry or poll termination.
type SerialPort struct {
	name      string
	portName  string
	baudRate  int
	readTerm  []byte
	writeTerm []byte
	open      PortOpener
	maxErrors int
	metrics   *metric.Metrics
	logger    *slog.Logger

	mu          sync.Mutex
	newData     *sync.Cond
	port        io.ReadWriteCloser
	buf         []byte
	polling     bool
	pollStopped chan struct{}
}

// NewSerialPort creates an unopened serial channel wrapper. A nil opener
// selects the real serial device backend, maxErrors <= 0 selects
// DefaultMaxPollErrors and a nil metrics argument disables instrumentation.
func NewSerialPort(name, portName string, baudRate int, readTerm, writeTerm []byte,
	open PortOpener, maxErrors int, m *metric.Metrics) *SerialPort {

	if open == nil {
		open = defaultOpener
	}
	if maxErrors <= 0 {
		maxErrors = DefaultMaxPollErrors
	}
	s := &SerialPort{
		name:      name,
		portName:  portName,
		baudRate:  baudRate,
		readTerm:  readTerm,
		writeTerm: writeTerm,
		open:      open,
		maxErrors: maxErrors,
		metrics:   m,
		logger:    slog.Default().With("channel", "serial", "name", name),
	}
	s.newData = sync.NewCond(&s.mu)
	return s
}

// Init opens the device and starts the poll goroutine. Opening an already
// open port is a no-op.
func (s *SerialPort) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port != nil {
		return nil
	}

	port, err := s.open(s.portName, s.baudRate)
	if err != nil {
		s.metrics.RecordError("serial", s.name, "init")
		return errors.WrapIO(err, "SerialPort", "Init",
			fmt.Sprintf("opening port %q", s.portName))
	}

	s.port = port
	s.buf = nil
	s.polling = true
	s.pollStopped = make(chan struct{})
	go s.pollLoop(port, s.pollStopped)

	s.logger.Debug("opened", "port", s.portName, "baudrate", s.baudRate)
	return nil
}

// Close stops polling, closes the device and waits for the poll goroutine to
// exit. Closing a closed port is a no-op.
func (s *SerialPort) Close() error {
	s.mu.Lock()
	if s.port == nil {
		s.mu.Unlock()
		return nil
	}
	port := s.port
	stopped := s.pollStopped
	s.polling = false
	s.port = nil
	s.buf = nil
	s.mu.Unlock()

	// Closing the device unblocks the poll loop's pending read.
	err := port.Close()
	<-stopped

	if err != nil {
		return errors.WrapIO(err, "SerialPort", "Close", "closing port")
	}
	return nil
}

// Connected reports whether the port is currently open.
func (s *SerialPort) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port != nil
}

// PollStopped reports whether the poll goroutine has terminated, either
// through Close or by exceeding the consecutive error ceiling.
func (s *SerialPort) PollStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pollStopped == nil {
		return true
	}
	select {
	case <-s.pollStopped:
		return true
	default:
		return false
	}
}

// pollLoop drains the device into the internal buffer until the port closes
// or maxErrors consecutive read failures occur.
func (s *SerialPort) pollLoop(port io.ReadWriteCloser, stopped chan struct{}) {
	defer func() {
		s.mu.Lock()
		s.polling = false
		close(stopped)
		s.newData.Broadcast()
		s.mu.Unlock()
	}()

	tmp := make([]byte, readChunkSize)
	consecutiveErrors := 0

	for {
		s.mu.Lock()
		active := s.polling
		s.mu.Unlock()
		if !active {
			return
		}

		n, err := port.Read(tmp)

		s.mu.Lock()
		if n > 0 {
			s.buf = append(s.buf, tmp[:n]...)
			s.metrics.RecordRead("serial", s.name, n)
			s.newData.Broadcast()
			consecutiveErrors = 0
		}
		active = s.polling
		s.mu.Unlock()

		if err != nil {
			if !active {
				return
			}
			consecutiveErrors++
			if consecutiveErrors >= s.maxErrors {
				s.logger.Error("polling aborted after repeated read failures",
					"error", err, "failures", consecutiveErrors)
				s.metrics.RecordError("serial", s.name, "poll")
				return
			}
			s.logger.Warn("poll read failed", "error", err)
		}
	}
}

// Read returns exactly size bytes, or, for size == -1, all bytes up to (and
// excluding) the read termination. size == 0 returns an empty slice and
// size < -1 is a usage error. Zero timeout waits forever.
func (s *SerialPort) Read(size int, timeout time.Duration) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	if size < -1 {
		return nil, errors.WrapUsage(
			fmt.Errorf("%w: %d", errors.ErrInvalidSize, size), "SerialPort", "Read", "size check")
	}
	if size == -1 && len(s.readTerm) == 0 {
		return nil, errors.WrapUsage(
			errors.New("termination-based read needs a non-empty read termination"),
			"SerialPort", "Read", "size check")
	}

	ready := func() bool {
		if size == -1 {
			return indexOfTerm(s.buf, s.readTerm) >= 0
		}
		return len(s.buf) >= size
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		return nil, errors.WrapIO(errors.ErrNotConnected, "SerialPort", "Read", "receiving")
	}

	if err := s.waitLocked(ready, timeout, "Read"); err != nil {
		return nil, err
	}

	if size == -1 {
		idx := indexOfTerm(s.buf, s.readTerm)
		data := s.buf[:idx:idx]
		s.buf = s.buf[idx+len(s.readTerm):]
		return data, nil
	}
	data := s.buf[:size:size]
	s.buf = s.buf[size:]
	return data, nil
}

// ReadMax returns up to size bytes: buffered data if any is available,
// otherwise it waits for the poll loop to deliver something.
func (s *SerialPort) ReadMax(size int, timeout time.Duration) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	if size < 0 {
		return nil, errors.WrapUsage(
			fmt.Errorf("%w: %d", errors.ErrInvalidSize, size), "SerialPort", "ReadMax", "size check")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		return nil, errors.WrapIO(errors.ErrNotConnected, "SerialPort", "ReadMax", "receiving")
	}

	if err := s.waitLocked(func() bool { return len(s.buf) > 0 }, timeout, "ReadMax"); err != nil {
		return nil, err
	}

	n := min(size, len(s.buf))
	data := s.buf[:n:n]
	s.buf = s.buf[n:]
	return data, nil
}

// waitLocked blocks on the new-data condition until ready holds, the timeout
// expires or polling stops. Zero timeout waits forever (but still returns if
// polling dies).
func (s *SerialPort) waitLocked(ready func() bool, timeout time.Duration, method string) error {
	var expired bool
	var timer *time.Timer
	if timeout > 0 {
		timer = time.AfterFunc(timeout, func() {
			s.mu.Lock()
			expired = true
			s.newData.Broadcast()
			s.mu.Unlock()
		})
		defer timer.Stop()
	}

	for !ready() {
		if expired {
			s.metrics.RecordTimeout("serial", s.name, "read")
			return errors.WrapTimeout(errors.ErrTimeout, "SerialPort", method, "waiting for data")
		}
		if !s.polling {
			s.metrics.RecordError("serial", s.name, "read")
			return errors.WrapIO(
				errors.New("port polling has stopped"), "SerialPort", method, "waiting for data")
		}
		s.newData.Wait()
	}
	return nil
}

// Write sends data followed by the write termination. Serial writes complete
// against the OS transmit buffer, so no timeout applies.
func (s *SerialPort) Write(data []byte) error {
	s.mu.Lock()
	port := s.port
	s.mu.Unlock()

	if port == nil {
		return errors.WrapIO(errors.ErrNotConnected, "SerialPort", "Write", "sending")
	}

	payload := make([]byte, 0, len(data)+len(s.writeTerm))
	payload = append(payload, data...)
	payload = append(payload, s.writeTerm...)

	n, err := writeFull(port, payload)
	s.metrics.RecordWrite("serial", s.name, n)
	if err != nil {
		s.metrics.RecordError("serial", s.name, "write")
		return errors.WrapIO(err, "SerialPort", "Write", "sending")
	}
	return nil
}

// ReadBufferEmpty reports whether no received data is pending. The poll loop
// keeps the OS buffer drained, so the internal buffer is authoritative.
func (s *SerialPort) ReadBufferEmpty() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		return false, errors.WrapIO(errors.ErrNotConnected, "SerialPort", "ReadBufferEmpty",
			"probing receive buffer")
	}
	return len(s.buf) == 0, nil
}

// ClearReadBuffer discards all buffered received data.
func (s *SerialPort) ClearReadBuffer() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		return errors.WrapIO(errors.ErrNotConnected, "SerialPort", "ClearReadBuffer",
			"clearing receive buffer")
	}
	s.buf = nil
	return nil
}
