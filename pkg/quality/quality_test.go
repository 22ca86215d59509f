package quality

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr-fool/drone-simulator/pkg/config"
	"github.com/mr-fool/drone-simulator/pkg/emg"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Quality.WindowSeconds = 10
	for i := range cfg.Calibration.Channels {
		cfg.Calibration.Channels[i].Baseline = 0
		cfg.Calibration.Channels[i].Noise = 1
	}
	return cfg
}

func TestRate(t *testing.T) {
	tests := []struct {
		name      string
		minSNR    float64
		crosstalk float64
		want      Rating
	}{
		{name: "clean and isolated", minSNR: 25, crosstalk: 10, want: Excellent},
		{name: "good signal", minSNR: 18, crosstalk: 20, want: Good},
		{name: "usable signal", minSNR: 12, crosstalk: 30, want: Acceptable},
		{name: "weak signal", minSNR: 5, crosstalk: 10, want: Poor},
		{name: "heavy crosstalk", minSNR: 30, crosstalk: 40, want: Poor},
		{name: "excellent SNR but moderate crosstalk", minSNR: 25, crosstalk: 20, want: Good},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rate(tt.minSNR, tt.crosstalk))
		})
	}
}

func TestRating_String(t *testing.T) {
	assert.Equal(t, "excellent", Excellent.String())
	assert.Equal(t, "good", Good.String())
	assert.Equal(t, "acceptable", Acceptable.String())
	assert.Equal(t, "poor", Poor.String())
}

func TestMeter_SNRAgainstCalibratedNoise(t *testing.T) {
	m := New(testConfig())

	// Constant 50 on throttle with unit baseline noise:
	// SNR = 10*log10(2500) ~ 33.98 dB.
	now := time.Now()
	for i := 0; i < 100; i++ {
		m.Process(emg.Frame{
			Timestamp: now.Add(time.Duration(i) * 2 * time.Millisecond),
			Values:    [emg.NumChannels]float32{50, 0, 0, 0},
		})
	}

	rep := m.Report()
	assert.Equal(t, 100, rep.Frames)
	assert.InDelta(t, 33.98, rep.SNR[emg.Throttle], 0.05)
	assert.InDelta(t, 0, rep.SNR[emg.Yaw], 1e-9, "silent channel has zero SNR")
}

func TestMeter_CrosstalkDetectsCorrelatedChannels(t *testing.T) {
	m := New(testConfig())

	// Throttle and yaw carry the same varying waveform; pitch varies
	// independently (in quadrature); roll is silent.
	now := time.Now()
	for i := 0; i < 200; i++ {
		v := float32(50 + 40*math.Sin(float64(i)*0.1))
		q := float32(50 + 40*math.Cos(float64(i)*0.1))
		m.Process(emg.Frame{
			Timestamp: now.Add(time.Duration(i) * 2 * time.Millisecond),
			Values:    [emg.NumChannels]float32{v, v, q, 0},
		})
	}

	rep := m.Report()
	assert.InDelta(t, 100, rep.Crosstalk[emg.Throttle][emg.Yaw], 0.5,
		"identical series must show full crosstalk")
	assert.Equal(t, rep.Crosstalk[emg.Throttle][emg.Yaw], rep.Crosstalk[emg.Yaw][emg.Throttle],
		"matrix must be symmetric")
	assert.Less(t, rep.Crosstalk[emg.Throttle][emg.Pitch], 30.0,
		"quadrature series must show low crosstalk")
	assert.Zero(t, rep.Crosstalk[emg.Throttle][emg.Roll],
		"constant series pairs report zero")
}

func TestMeter_SilentWindowRatesPoor(t *testing.T) {
	m := New(testConfig())

	now := time.Now()
	for i := 0; i < 50; i++ {
		m.Process(emg.Frame{Timestamp: now.Add(time.Duration(i) * time.Millisecond)})
	}

	rep := m.Report()
	assert.Equal(t, Poor, rep.Rating)
}

func TestMeter_WindowTrimsByTimestamp(t *testing.T) {
	cfg := testConfig()
	cfg.Quality.WindowSeconds = 1
	m := New(cfg)

	now := time.Now()
	for i := 0; i < 100; i++ {
		m.Process(emg.Frame{Timestamp: now.Add(time.Duration(i) * 50 * time.Millisecond)})
	}

	// 100 frames span ~5s but the window holds only the last second
	// (20 frames at 50ms spacing).
	rep := m.Report()
	assert.LessOrEqual(t, rep.Frames, 21)
	assert.Greater(t, rep.Frames, 15)
}

func TestMeter_OnUpdateReceivesReports(t *testing.T) {
	m := New(testConfig())

	var got []Report
	m.OnUpdate(func(r Report) { got = append(got, r) })

	now := time.Now()
	for i := 0; i < 5; i++ {
		m.Process(emg.Frame{Timestamp: now.Add(time.Duration(i) * time.Millisecond)})
	}

	require.Len(t, got, 5)
	assert.Equal(t, 5, got[4].Frames)
}
