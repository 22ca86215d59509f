package emg

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Frame is one tick's worth of post-processed channel intensities, in fixed
// channel order (throttle, yaw, pitch, roll).
//
// Wire format: `<throttle>,<yaw>,<pitch>,<roll>\n` with each value a decimal
// floating-point literal of no fixed width. There is no checksum and no
// framing beyond the trailing line break; consumers must tolerate the
// occasional malformed or truncated line.
type Frame struct {
	Timestamp time.Time // host receive time; zero on the acquisition side
	Values    [NumChannels]float32
}

// Value returns the intensity of the given channel.
func (f Frame) Value(id ChannelID) float32 {
	return f.Values[id]
}

// AppendLine appends the wire representation of f, including the trailing
// line break, to dst and returns the extended slice. Allocation-free when
// dst has sufficient capacity.
func (f Frame) AppendLine(dst []byte) []byte {
	for i, v := range f.Values {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = strconv.AppendFloat(dst, float64(v), 'f', -1, 32)
	}
	return append(dst, '\n')
}

// String returns the wire representation without the trailing line break.
func (f Frame) String() string {
	line := f.AppendLine(make([]byte, 0, 48))
	return string(line[:len(line)-1])
}

// ParseFrame parses one serial line into a Frame. The timestamp is left
// zero; the caller stamps it with the receive time.
func ParseFrame(line string) (Frame, error) {
	parts := strings.Split(line, ",")
	if len(parts) != NumChannels {
		return Frame{}, fmt.Errorf("invalid frame: expected %d comma-separated values, got %d", NumChannels, len(parts))
	}

	var f Frame
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return Frame{}, fmt.Errorf("invalid %s value %q: %w", ChannelID(i), p, err)
		}
		f.Values[i] = float32(v)
	}
	return f, nil
}
