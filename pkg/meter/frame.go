package meter

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

const (
	// FrameSize is the length of one complete frame, sync marker
	// included.
	FrameSize = 56
	// NumChannels is the number of external temperature probes.
	NumChannels = 4
)

// SyncMarker starts every frame.
var SyncMarker = []byte{0xaa, 0x55, 0x00, 0x34, 0x01}

// HoldType tells which statistic the held temperatures represent,
// selected by the device's front-panel state at capture time.
type HoldType byte

// Known hold-type codes.
const (
	HoldCurrent HoldType = iota
	HoldMaximum
	HoldMinimum
	HoldAverage
)

// HoldTypeOf maps the raw hold-type byte. Unknown codes reject the
// whole frame rather than defaulting.
func HoldTypeOf(b byte) (HoldType, error) {
	if b > byte(HoldAverage) {
		return 0, fmt.Errorf("%w %#02x", ErrHoldType, b)
	}
	return HoldType(b), nil
}

// String implements fmt.Stringer.
func (t HoldType) String() string {
	switch t {
	case HoldCurrent:
		return "Current"
	case HoldMaximum:
		return "Maximum"
	case HoldMinimum:
		return "Minimum"
	case HoldAverage:
		return "Average"
	}
	return fmt.Sprintf("HoldType(%d)", byte(t))
}

// Reading is one decoded frame. A channel the device flagged as faulty
// carries NaN instead of whatever value bytes were transmitted.
type Reading struct {
	Timestamp     time.Time
	CurrentTempsC [NumChannels]float32
	HeldTempsC    [NumChannels]float32
	HoldType      HoldType
	MeterTempC    float32
}

// UnixSeconds returns the capture time as fractional seconds since the
// Unix epoch.
func (r *Reading) UnixSeconds() float64 {
	return float64(r.Timestamp.UnixNano()) / float64(time.Second)
}

// cursor walks a frame buffer with fixed-width little-endian reads.
// Bounds are implied by the FrameSize check in ParseFrame.
type cursor struct {
	buf []byte
	off int
}

func (c *cursor) f32() float32 {
	v := math.Float32frombits(binary.LittleEndian.Uint32(c.buf[c.off:]))
	c.off += 4
	return v
}

func (c *cursor) u8() byte {
	v := c.buf[c.off]
	c.off++
	return v
}

func (c *cursor) skip(n int) {
	c.off += n
}

// ParseFrame decodes one complete frame into a Reading. It performs no
// I/O and keeps no state; a failed decode means the caller should fetch
// the next frame, not reinterpret this one.
func ParseFrame(buf []byte) (*Reading, error) {
	if len(buf) != FrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameSize, len(buf))
	}
	if !bytes.Equal(buf[:len(SyncMarker)], SyncMarker) {
		return nil, ErrBadSync
	}

	c := &cursor{buf: buf, off: len(SyncMarker)}
	r := &Reading{Timestamp: time.Now()}
	for i := range r.CurrentTempsC {
		r.CurrentTempsC[i] = c.f32()
	}
	for i := range r.CurrentTempsC {
		// The error flag wins over the transmitted value bytes.
		if c.u8() != 0 {
			r.CurrentTempsC[i] = float32(math.NaN())
		}
	}
	for i := range r.HeldTempsC {
		r.HeldTempsC[i] = c.f32()
	}
	for i := range r.HeldTempsC {
		if c.u8() != 0 {
			r.HeldTempsC[i] = float32(math.NaN())
		}
	}
	r.MeterTempC = c.f32()
	c.skip(4) // unidentified field
	hold, err := HoldTypeOf(c.u8())
	if err != nil {
		return nil, err
	}
	r.HoldType = hold
	c.skip(2) // trailer, possibly a checksum; algorithm unknown, not verified

	if c.off != FrameSize {
		return nil, ErrIncompleteParse
	}
	return r, nil
}
