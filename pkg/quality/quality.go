// Package quality evaluates the incoming frame stream against the session
// calibration: per-channel signal-to-noise ratio, inter-channel crosstalk,
// and an overall rating. It consumes frames from a channel, keeps a sliding
// time window, and notifies registered callbacks on every update.
package quality

import (
	"math"
	"sync"
	"time"

	"github.com/mr-fool/drone-simulator/pkg/config"
	"github.com/mr-fool/drone-simulator/pkg/emg"
)

// Rating is the overall signal quality classification.
type Rating int

const (
	Poor Rating = iota
	Acceptable
	Good
	Excellent
)

// String returns the rating name for display and data files.
func (r Rating) String() string {
	switch r {
	case Excellent:
		return "excellent"
	case Good:
		return "good"
	case Acceptable:
		return "acceptable"
	}
	return "poor"
}

// Report is a snapshot of the quality metrics over the current window.
type Report struct {
	SNR       [emg.NumChannels]float64                  // per-channel SNR in dB
	Crosstalk [emg.NumChannels][emg.NumChannels]float64 // interference in percent
	Rating    Rating
	Frames    int // window population
}

// Meter maintains the sliding frame window and computes the metrics.
// Internally a FIFO trimmed by timestamp; externally snapshot reports.
type Meter struct {
	cfg *config.Config

	mu     sync.RWMutex
	frames []emg.Frame
	report Report

	cbMu      sync.RWMutex
	callbacks []func(Report)

	window   time.Duration
	shutdown bool
}

// New creates a quality meter using the calibration and quality sections of
// the configuration.
func New(cfg *config.Config) *Meter {
	return &Meter{
		cfg:    cfg,
		frames: make([]emg.Frame, 0),
		window: time.Duration(cfg.Quality.WindowSeconds * float64(time.Second)),
	}
}

// ProcessFrames processes frames from the input channel until it closes,
// then sets the shutdown flag so no further callbacks fire.
func (m *Meter) ProcessFrames(input <-chan emg.Frame) {
	for f := range input {
		m.Process(f)
	}
	m.mu.Lock()
	m.shutdown = true
	m.mu.Unlock()
}

// Process adds one frame to the window and recomputes the metrics.
func (m *Meter) Process(f emg.Frame) {
	m.mu.Lock()

	m.frames = append(m.frames, f)

	// Trim frames that fell out of the time window.
	cutoff := f.Timestamp.Add(-m.window)
	trim := 0
	for trim < len(m.frames) && !m.frames[trim].Timestamp.After(cutoff) {
		trim++
	}
	if trim > 0 {
		m.frames = m.frames[trim:]
	}

	m.report = m.compute()
	notify := !m.shutdown
	report := m.report
	m.mu.Unlock()

	if notify {
		m.notifyCallbacks(report)
	}
}

// Report returns the latest metrics snapshot.
func (m *Meter) Report() Report {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.report
}

// OnUpdate registers a callback invoked after every processed frame. The
// callback receives a value copy and may retain it.
func (m *Meter) OnUpdate(callback func(Report)) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

// ResetShutdown re-enables callbacks before starting a new processing
// chain.
func (m *Meter) ResetShutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdown = false
}

// compute derives the metrics from the current window. Caller holds mu.
func (m *Meter) compute() Report {
	rep := Report{Frames: len(m.frames)}
	if len(m.frames) == 0 {
		return rep
	}

	for ch := 0; ch < emg.NumChannels; ch++ {
		rep.SNR[ch] = m.channelSNR(ch)
	}
	rep.Crosstalk = m.crosstalkMatrix()

	minSNR := rep.SNR[0]
	for _, v := range rep.SNR[1:] {
		minSNR = math.Min(minSNR, v)
	}
	var maxCT float64
	for i := 0; i < emg.NumChannels; i++ {
		for j := 0; j < emg.NumChannels; j++ {
			if i != j {
				maxCT = math.Max(maxCT, rep.Crosstalk[i][j])
			}
		}
	}
	rep.Rating = rate(minSNR, maxCT)

	return rep
}

// channelSNR computes the signal power over the window relative to the
// calibrated baseline noise power, in dB.
func (m *Meter) channelSNR(ch int) float64 {
	cal := m.cfg.Calibration.Channels[ch]

	var signalPower float64
	for _, f := range m.frames {
		d := float64(f.Values[ch]) - cal.Baseline
		signalPower += d * d
	}
	signalPower /= float64(len(m.frames))

	noisePower := cal.Noise * cal.Noise
	if noisePower <= 0 {
		// Perfectly quiet baseline: report a nominal very clean figure as
		// long as there is any signal at all.
		if signalPower > 0 {
			return 50
		}
		return 0
	}

	ratio := signalPower / noisePower
	if ratio <= 0 {
		return 0
	}
	return 10 * math.Log10(ratio)
}

// crosstalkMatrix computes the absolute Pearson correlation between each
// channel pair over the window, as a percentage. Pairs with a constant
// series report zero.
func (m *Meter) crosstalkMatrix() [emg.NumChannels][emg.NumChannels]float64 {
	var ct [emg.NumChannels][emg.NumChannels]float64
	n := float64(len(m.frames))
	if n < 2 {
		return ct
	}

	var mean [emg.NumChannels]float64
	for _, f := range m.frames {
		for ch := 0; ch < emg.NumChannels; ch++ {
			mean[ch] += float64(f.Values[ch])
		}
	}
	for ch := range mean {
		mean[ch] /= n
	}

	var variance [emg.NumChannels]float64
	var cov [emg.NumChannels][emg.NumChannels]float64
	for _, f := range m.frames {
		var d [emg.NumChannels]float64
		for ch := 0; ch < emg.NumChannels; ch++ {
			d[ch] = float64(f.Values[ch]) - mean[ch]
			variance[ch] += d[ch] * d[ch]
		}
		for i := 0; i < emg.NumChannels; i++ {
			for j := i + 1; j < emg.NumChannels; j++ {
				cov[i][j] += d[i] * d[j]
			}
		}
	}

	for i := 0; i < emg.NumChannels; i++ {
		for j := i + 1; j < emg.NumChannels; j++ {
			denom := math.Sqrt(variance[i] * variance[j])
			if denom > 0 {
				c := math.Abs(cov[i][j]/denom) * 100
				ct[i][j] = c
				ct[j][i] = c
			}
		}
	}

	return ct
}

// rate classifies the window from its worst-channel SNR and worst-pair
// crosstalk.
func rate(minSNR, maxCrosstalk float64) Rating {
	switch {
	case minSNR > 20 && maxCrosstalk < 15:
		return Excellent
	case minSNR > 15 && maxCrosstalk < 25:
		return Good
	case minSNR > 10 && maxCrosstalk < 35:
		return Acceptable
	}
	return Poor
}

// notifyCallbacks invokes all registered callbacks without holding the data
// lock.
func (m *Meter) notifyCallbacks(rep Report) {
	m.cbMu.RLock()
	callbacks := make([]func(Report), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(rep)
		}
	}
}
