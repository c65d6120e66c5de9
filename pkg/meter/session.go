package meter

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"
	"go.bug.st/serial"
)

// Serial parameters of the UT325F. The port-level read timeout bounds
// a single read; Meter layers its own, looser deadlines on top.
const (
	baudRate    = 115200
	readTimeout = time.Second

	drainAttempts = 10
	drainInterval = 100 * time.Millisecond
)

// Port is the transport under a Session. go.bug.st/serial ports
// satisfy it; tests substitute in-memory fakes.
type Port interface {
	io.ReadCloser
	SetReadTimeout(t time.Duration) error
}

// Session owns the open connection to the device. It is not safe for
// concurrent use: the stream carries no boundaries that would let two
// readers share it.
type Session struct {
	port   Port
	closed bool
}

// NewSession wraps an already configured port.
func NewSession(p Port) *Session {
	return &Session{port: p}
}

// Open opens the serial device and leaves it ready for a Meter. The
// device transmits whether or not anyone listens, so a bounded drain
// pass absorbs stale and partial frames left on the line; timeouts
// during the drain are expected and ignored.
func Open(path string) (*Session, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %q: %w", path, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("configure serial port %q: %w", path, err)
	}
	s := NewSession(port)
	s.drain()
	return s, nil
}

func (s *Session) drain() {
	buf := make([]byte, FrameSize)
	for i := 0; i < drainAttempts; i++ {
		if _, err := s.ReadFull(buf); err != nil && !errors.Is(err, ErrTimeout) {
			glog.Warningf("drain read: %v", err)
		}
		time.Sleep(drainInterval)
	}
}

// ReadFull reads exactly len(buf) bytes. On a port-level timeout it
// returns ErrTimeout together with the count read so far, letting the
// caller resume the partial fill under its own deadline.
func (s *Session) ReadFull(buf []byte) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	off := 0
	for off < len(buf) {
		n, err := s.port.Read(buf[off:])
		off += n
		if err != nil {
			return off, fmt.Errorf("serial read: %w", err)
		}
		if n == 0 {
			// With a read timeout set on the port, a zero-byte read is
			// how it reports that the timeout elapsed.
			return off, ErrTimeout
		}
	}
	return off, nil
}

// Close releases the port. Safe to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.port.Close()
}
