package emg

// Channel bundles the complete per-channel processing state: band-pass
// filter registers, envelope window, and the most recent post-threshold
// output. Each channel owns its state exclusively; channels never share
// filter memory.
type Channel struct {
	filter   BandPass
	envelope Envelope
	last     float32
}

// Process runs one raw sample through the channel's full chain:
// filter -> rectify/envelope -> gain -> noise floor.
func (c *Channel) Process(raw float32) float32 {
	filtered := c.filter.Process(raw)
	env := c.envelope.Update(filtered)
	c.last = postProcess(env)
	return c.last
}

// Last returns the most recently computed post-threshold value.
func (c *Channel) Last() float32 {
	return c.last
}

// Filter exposes the channel's filter state for inspection.
func (c *Channel) Filter() *BandPass {
	return &c.filter
}

// Envelope exposes the channel's envelope detector for inspection.
func (c *Channel) Envelope() *Envelope {
	return &c.envelope
}

// postProcess applies the output gain and noise floor to an envelope value.
// Anything below the threshold is clamped to exactly zero.
func postProcess(env float32) float32 {
	out := env * Gain
	if out < NoiseThreshold {
		return 0
	}
	return out
}

// Pipeline holds the four channel states and advances them together, one
// tick at a time. All state is created zeroed at construction and mutated
// exactly once per tick by the single caller; there is no locking because
// there is never more than one writer.
type Pipeline struct {
	channels [NumChannels]Channel
}

// NewPipeline returns a pipeline with all registers and buffers zeroed.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Tick processes one raw sample per channel and assembles the resulting
// frame in fixed channel order.
func (p *Pipeline) Tick(raw [NumChannels]float32) Frame {
	var f Frame
	for i := range p.channels {
		f.Values[i] = p.channels[i].Process(raw[i])
	}
	return f
}

// Channel returns the state container for the given channel.
func (p *Pipeline) Channel(id ChannelID) *Channel {
	return &p.channels[id]
}
