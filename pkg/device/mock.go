package device

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chewxy/math32"

	"github.com/mr-fool/drone-simulator/pkg/config"
	"github.com/mr-fool/drone-simulator/pkg/emg"
)

// Mock simulates the acquisition board for testing and development. It
// synthesizes raw electrode signals (in-band sinusoid bursts over a noise
// floor, one channel at a time in round-robin) and runs them through the
// real filter/envelope/threshold pipeline, so downstream consumers see
// frames with the same character as hardware output.
type Mock struct {
	cfg *config.MockConfig

	frames    chan emg.Frame
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool

	// Simulation state
	pipeline  *emg.Pipeline
	startTime time.Time
	sample    int64 // logical sample counter
}

// NewMock creates a new mocked device instance.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		def := config.Default()
		cfg = &def.Mock
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:       cfg,
		frames:    make(chan emg.Frame, DefaultBufferSize),
		ctx:       ctx,
		cancel:    cancel,
		connected: false,
	}
}

// Connect simulates connecting to the device.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	m.connected = true
	m.startTime = time.Now()
	m.pipeline = emg.NewPipeline()
	m.sample = 0

	// Start generating frames
	go m.generateFrames()

	return nil
}

// Close stops the mocked device.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	m.connected = false
	close(m.frames)

	return nil
}

// Frames returns the channel for reading frames.
func (m *Mock) Frames() <-chan emg.Frame {
	return m.frames
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// generateFrames produces simulated frames at the configured rate.
func (m *Mock) generateFrames() {
	ticker := time.NewTicker(m.cfg.SampleRate)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			frame := m.generateFrame()
			select {
			case m.frames <- frame:
			case <-m.ctx.Done():
				return
			default:
				// Channel full, skip
			}
		}
	}
}

// generateFrame synthesizes one raw sample per channel and advances the
// pipeline by one tick.
func (m *Mock) generateFrame() emg.Frame {
	m.mu.RLock()
	elapsed := time.Since(m.startTime)
	n := m.sample
	m.mu.RUnlock()

	var raw [emg.NumChannels]float32
	for ch := range raw {
		raw[ch] = m.synthesize(emg.ChannelID(ch), n, elapsed)
	}

	m.mu.Lock()
	m.sample++
	frame := m.pipeline.Tick(raw)
	m.mu.Unlock()

	frame.Timestamp = m.startTime.Add(elapsed)
	return frame
}

// synthesize produces the raw electrode value for one channel. Channels
// take turns bursting: within each burst period the four channels get
// staggered activation slots, mimicking one muscle contracting at a time.
func (m *Mock) synthesize(ch emg.ChannelID, n int64, elapsed time.Duration) float32 {
	// Deterministic pseudo-noise from incommensurate sin/cos mixing.
	t := float32(n) / emg.SampleRate
	noise := (math32.Sin(531.1*t) + math32.Cos(779.3*t)) * float32(m.cfg.NoiseLevel) * 0.5

	phase := elapsed % m.cfg.BurstPeriod
	slot := m.cfg.BurstPeriod / emg.NumChannels
	start := time.Duration(ch) * slot
	if phase < start || phase >= start+m.cfg.BurstDuration {
		return noise
	}

	// In-band contraction: 100 Hz sits in the middle of the pass band.
	burst := float32(m.cfg.SignalAmplitude) * math32.Sin(2*math32.Pi*100*t)
	return burst + noise
}
