package emg

// ChannelID identifies one of the four electrode channels. The order is
// fixed and matches both the analog pin assignment on the acquisition board
// and the field order of the serial frame.
type ChannelID int

const (
	Throttle ChannelID = iota // A0 - forearm flexor (wrist flexion)
	Yaw                       // A1 - forearm extensor (wrist extension)
	Pitch                     // A2 - bicep brachii (elbow flexion)
	Roll                      // A3 - tricep brachii (elbow extension)

	// NumChannels is the number of electrode channels.
	NumChannels = 4
)

const (
	// SampleRate is the acquisition rate in Hz.
	SampleRate = 500
	// EnvelopeWindow is the moving-average window of the envelope detector
	// in samples.
	EnvelopeWindow = 128
	// Gain scales the envelope into user-facing intensity units.
	Gain = 10.0
	// NoiseThreshold is the post-gain noise floor. Intensities below it are
	// clamped to exactly zero.
	NoiseThreshold = 25.0
)

// String returns the channel name as used in logs and data files.
func (c ChannelID) String() string {
	switch c {
	case Throttle:
		return "throttle"
	case Yaw:
		return "yaw"
	case Pitch:
		return "pitch"
	case Roll:
		return "roll"
	}
	return "unknown"
}
