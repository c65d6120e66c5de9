package meter

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// capturedFrame is a frame recorded from a real UT325F with probes on
// channel 1 only and hold mode off.
var capturedFrame = []byte{
	0xaa, 0x55, 0x00, 0x34, 0x01, 0x98, 0x94, 0xd5,
	0x41, 0x00, 0x00, 0x00, 0x00, 0x2d, 0x02, 0xd5,
	0x41, 0x6c, 0x25, 0x85, 0x42, 0x00, 0x30, 0x30,
	0x30, 0x98, 0x94, 0xd5, 0x41, 0x00, 0x00, 0x00,
	0x00, 0x2d, 0x02, 0xd5, 0x41, 0x6c, 0x25, 0x85,
	0x42, 0x00, 0x00, 0x00, 0x00, 0x00, 0x80, 0xd2,
	0x41, 0x00, 0x00, 0x00, 0x00, 0x00, 0x0d, 0x15,
}

// emptyFrame returns a well-formed frame of all-zero fields.
func emptyFrame() []byte {
	buf := make([]byte, FrameSize)
	copy(buf, SyncMarker)
	return buf
}

func TestParseFrame(t *testing.T) {
	before := time.Now()
	r, err := ParseFrame(capturedFrame)
	require.NoError(t, err)

	require.Equal(t, float32(26.697556), r.CurrentTempsC[0])
	require.True(t, math.IsNaN(float64(r.CurrentTempsC[1])))
	require.True(t, math.IsNaN(float64(r.CurrentTempsC[2])))
	require.True(t, math.IsNaN(float64(r.CurrentTempsC[3])))

	require.Equal(t, float32(26.697556), r.HeldTempsC[0])
	require.Equal(t, float32(0.0), r.HeldTempsC[1])
	require.Equal(t, float32(26.626062), r.HeldTempsC[2])
	require.Equal(t, float32(66.57309), r.HeldTempsC[3])

	require.Equal(t, float32(26.3125), r.MeterTempC)
	require.Equal(t, HoldCurrent, r.HoldType)

	require.False(t, r.Timestamp.Before(before))
	require.False(t, r.Timestamp.After(time.Now()))
}

func TestParseFrameSize(t *testing.T) {
	for _, size := range []int{0, 1, FrameSize - 1, FrameSize + 1, 2 * FrameSize} {
		buf := make([]byte, size)
		copy(buf, SyncMarker)
		_, err := ParseFrame(buf)
		require.ErrorIs(t, err, ErrFrameSize, "size %d", size)
	}
}

func TestParseFrameBadSync(t *testing.T) {
	_, err := ParseFrame(make([]byte, FrameSize))
	require.ErrorIs(t, err, ErrBadSync)

	// A single flipped marker byte is enough to reject.
	for i := range SyncMarker {
		buf := emptyFrame()
		buf[i] ^= 0x01
		_, err := ParseFrame(buf)
		require.ErrorIs(t, err, ErrBadSync, "marker byte %d", i)
	}
}

func TestParseFrameErrorFlags(t *testing.T) {
	values := [NumChannels]float32{21.5, -40.0, 0.125, 1234.5}
	buf := emptyFrame()
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[5+4*i:], math.Float32bits(v))
		binary.LittleEndian.PutUint32(buf[25+4*i:], math.Float32bits(v))
	}
	// Flag channels 1 and 3 of the current set, 0 and 2 of the held
	// set; any nonzero flag byte counts.
	buf[21+1], buf[21+3] = 0x01, 0xff
	buf[41+0], buf[41+2] = 0x30, 0x02

	r, err := ParseFrame(buf)
	require.NoError(t, err)
	for i, v := range values {
		if i == 1 || i == 3 {
			require.True(t, math.IsNaN(float64(r.CurrentTempsC[i])), "current channel %d", i)
		} else {
			require.Equal(t, v, r.CurrentTempsC[i], "current channel %d", i)
		}
		if i == 0 || i == 2 {
			require.True(t, math.IsNaN(float64(r.HeldTempsC[i])), "held channel %d", i)
		} else {
			require.Equal(t, v, r.HeldTempsC[i], "held channel %d", i)
		}
	}
}

func TestParseFrameHoldType(t *testing.T) {
	// The hold-type byte sits third from the end of the frame.
	const holdTypeOffset = FrameSize - 3

	for code, expect := range map[byte]HoldType{
		0: HoldCurrent,
		1: HoldMaximum,
		2: HoldMinimum,
		3: HoldAverage,
	} {
		buf := emptyFrame()
		buf[holdTypeOffset] = code
		r, err := ParseFrame(buf)
		require.NoError(t, err, "code %d", code)
		require.Equal(t, expect, r.HoldType, "code %d", code)
	}

	for _, code := range []byte{4, 0x30, 0xff} {
		buf := emptyFrame()
		buf[holdTypeOffset] = code
		_, err := ParseFrame(buf)
		require.ErrorIs(t, err, ErrHoldType, "code %#02x", code)
	}
}

func TestHoldTypeString(t *testing.T) {
	require.Equal(t, "Current", HoldCurrent.String())
	require.Equal(t, "Maximum", HoldMaximum.String())
	require.Equal(t, "Minimum", HoldMinimum.String())
	require.Equal(t, "Average", HoldAverage.String())
	require.Equal(t, "HoldType(7)", HoldType(7).String())
}

func TestUnixSeconds(t *testing.T) {
	r := &Reading{Timestamp: time.Unix(1700000000, 250000000)}
	require.InDelta(t, 1700000000.25, r.UnixSeconds(), 1e-6)
}
