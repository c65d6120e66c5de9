package meter

import "errors"

var (
	// ErrTimeout indicates a single transport read exceeded the port's
	// per-operation timeout.
	ErrTimeout = errors.New("read timeout")
	// ErrClosed indicates the session is already closed.
	ErrClosed = errors.New("session closed")

	// ErrSyncTimeout indicates no sync marker appeared on the stream
	// before the synchronization deadline.
	ErrSyncTimeout = errors.New("timeout reading sync header")
	// ErrPayloadTimeout indicates a frame started but the device
	// stalled before delivering the rest of it.
	ErrPayloadTimeout = errors.New("timeout reading frame payload")

	// ErrFrameSize indicates a buffer of the wrong length was handed
	// to the decoder.
	ErrFrameSize = errors.New("incorrect frame size")
	// ErrBadSync indicates the buffer does not start with the sync
	// marker.
	ErrBadSync = errors.New("bad sync header")
	// ErrHoldType indicates the hold-type byte encodes none of the
	// four known statistics.
	ErrHoldType = errors.New("invalid hold type")
	// ErrIncompleteParse indicates the decoder cursor did not land
	// exactly on the end of the frame.
	ErrIncompleteParse = errors.New("failed to parse all bytes")
)
