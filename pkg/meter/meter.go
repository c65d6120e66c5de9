package meter

import (
	"bytes"
	"context"
	"errors"
	"time"
)

// Meter reads complete frames from a Session. SyncTimeout bounds the
// scan for a frame boundary; PayloadTimeout independently bounds the
// rest of the frame once a marker matched. Both are looser than the
// transport's per-read timeout: one slow read and a stream with no
// frames in it are different failures.
type Meter struct {
	SyncTimeout    time.Duration
	PayloadTimeout time.Duration

	session *Session
}

// NewMeter wraps a session with default deadlines.
func NewMeter(s *Session) *Meter {
	return &Meter{
		SyncTimeout:    5 * time.Second,
		PayloadTimeout: 5 * time.Second,
		session:        s,
	}
}

// Session gets the underlying session.
func (m *Meter) Session() *Session {
	return m.session
}

// Read returns the next frame on the stream as a Reading. Each call
// consumes exactly one frame's worth of bytes; a failed call leaves
// the session open and a later call continues from the current stream
// position. ErrSyncTimeout and ErrPayloadTimeout are ordinary,
// retryable outcomes.
func (m *Meter) Read(ctx context.Context) (*Reading, error) {
	buf := make([]byte, FrameSize)
	if err := m.sync(ctx, buf[:len(SyncMarker)]); err != nil {
		return nil, err
	}
	deadline := time.Now().Add(m.PayloadTimeout)
	if err := m.fill(ctx, buf[len(SyncMarker):], deadline, ErrPayloadTimeout); err != nil {
		return nil, err
	}
	return ParseFrame(buf)
}

// sync scans the stream for the sync marker, sliding one byte at a
// time so realignment works no matter where in a frame the scan
// attached.
func (m *Meter) sync(ctx context.Context, window []byte) error {
	deadline := time.Now().Add(m.SyncTimeout)
	if err := m.fill(ctx, window, deadline, ErrSyncTimeout); err != nil {
		return err
	}
	for !bytes.Equal(window, SyncMarker) {
		copy(window, window[1:])
		if err := m.fill(ctx, window[len(window)-1:], deadline, ErrSyncTimeout); err != nil {
			return err
		}
	}
	return nil
}

// fill reads exactly len(buf) bytes, retrying transport timeouts until
// the phase deadline expires.
func (m *Meter) fill(ctx context.Context, buf []byte, deadline time.Time, timeoutErr error) error {
	off := 0
	for off < len(buf) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !time.Now().Before(deadline) {
			return timeoutErr
		}
		n, err := m.session.ReadFull(buf[off:])
		off += n
		if errors.Is(err, ErrTimeout) {
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}
