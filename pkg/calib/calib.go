// Package calib implements the session calibration sequence: a resting
// baseline capture followed by one maximum-contraction capture per channel,
// in fixed channel order. The results feed the quality meter (baseline
// noise for SNR) and the downstream control mapping (per-channel maxima).
package calib

import (
	"fmt"
	"math"
	"sync"

	"github.com/mr-fool/drone-simulator/pkg/config"
	"github.com/mr-fool/drone-simulator/pkg/emg"
)

// Phase identifies the current calibration step.
type Phase int

const (
	PhaseBaseline Phase = iota
	PhaseThrottle
	PhaseYaw
	PhasePitch
	PhaseRoll
	PhaseComplete
)

// String returns the phase name for prompts and logs.
func (p Phase) String() string {
	switch p {
	case PhaseBaseline:
		return "baseline"
	case PhaseComplete:
		return "complete"
	case PhaseThrottle, PhaseYaw, PhasePitch, PhaseRoll:
		return emg.ChannelID(p - PhaseThrottle).String()
	}
	return "unknown"
}

// Channel returns the channel being calibrated during a maximum phase.
func (p Phase) Channel() (emg.ChannelID, bool) {
	if p >= PhaseThrottle && p <= PhaseRoll {
		return emg.ChannelID(p - PhaseThrottle), true
	}
	return 0, false
}

// Calibrator accumulates frames and advances through the calibration
// phases. Feed it every frame from the device; when Phase reaches
// PhaseComplete the results can be read and persisted.
type Calibrator struct {
	cfg *config.Config

	mu    sync.Mutex
	phase Phase
	count int

	// Baseline accumulation, all channels at once.
	sum   [emg.NumChannels]float64
	sumSq [emg.NumChannels]float64

	result []config.ChannelCalibration
}

// New creates a calibrator starting at the baseline phase.
func New(cfg *config.Config) *Calibrator {
	return &Calibrator{
		cfg:    cfg,
		phase:  PhaseBaseline,
		result: make([]config.ChannelCalibration, emg.NumChannels),
	}
}

// Phase returns the current calibration phase.
func (c *Calibrator) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Progress returns the current phase together with the number of frames
// collected in it and the phase's target count.
func (c *Calibrator) Progress() (Phase, int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase, c.count, c.target()
}

// Feed consumes one frame and returns the phase in effect afterwards.
// Frames fed after completion are ignored.
func (c *Calibrator) Feed(f emg.Frame) Phase {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.phase {
	case PhaseComplete:
		return c.phase

	case PhaseBaseline:
		for i := 0; i < emg.NumChannels; i++ {
			v := float64(f.Values[i])
			c.sum[i] += v
			c.sumSq[i] += v * v
		}
		c.count++
		if c.count >= c.target() {
			c.finalizeBaseline()
			c.advance()
		}

	default:
		ch, _ := c.phase.Channel()
		v := float64(f.Value(ch))
		if v > c.result[ch].Max {
			c.result[ch].Max = v
		}
		c.count++
		if c.count >= c.target() {
			c.advance()
		}
	}

	return c.phase
}

// Result returns the calibrated per-channel values. It errors until the
// sequence has completed.
func (c *Calibrator) Result() ([]config.ChannelCalibration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseComplete {
		return nil, fmt.Errorf("calibration not complete: still in %s phase", c.phase)
	}

	out := make([]config.ChannelCalibration, len(c.result))
	copy(out, c.result)
	return out, nil
}

// Apply stores the calibration results into the configuration. It errors
// until the sequence has completed.
func (c *Calibrator) Apply(cfg *config.Config) error {
	result, err := c.Result()
	if err != nil {
		return err
	}
	cfg.Calibration.Channels = result
	return nil
}

func (c *Calibrator) target() int {
	if c.phase == PhaseBaseline {
		return c.cfg.Calibration.BaselineSamples
	}
	return c.cfg.Calibration.MaximumSamples
}

func (c *Calibrator) finalizeBaseline() {
	n := float64(c.count)
	for i := 0; i < emg.NumChannels; i++ {
		mean := c.sum[i] / n
		variance := c.sumSq[i]/n - mean*mean
		if variance < 0 {
			// Rounding can push a near-zero variance slightly negative.
			variance = 0
		}
		c.result[i].Baseline = mean
		c.result[i].Noise = math.Sqrt(variance)
	}
}

func (c *Calibrator) advance() {
	c.phase++
	c.count = 0

	// Each maximum phase starts from the calibrated resting level so the
	// recorded maximum reflects actual contraction, not a stale default.
	if ch, ok := c.phase.Channel(); ok {
		c.result[ch].Max = c.result[ch].Baseline
	}
}
