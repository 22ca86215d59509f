package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the host-side application configuration. The firmware
// itself is configured by compile-time constants; this file only drives the
// tools that consume the serial stream.
type Config struct {
	Serial      SerialConfig      `yaml:"serial"`
	EMG         EMGConfig         `yaml:"emg"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Quality     QualityConfig     `yaml:"quality"`
	Mock        MockConfig        `yaml:"mock"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port string `yaml:"port"`
}

// EMGConfig contains signal interpretation parameters mirrored from the
// firmware constants, for display and calibration on the host side.
type EMGConfig struct {
	NoiseThreshold float64 `yaml:"noise_threshold"` // post-gain units
	MaxValue       float64 `yaml:"max_value"`       // expected maximum amplitude
}

// CalibrationConfig contains calibration parameters and the per-channel
// results of the last calibration run.
type CalibrationConfig struct {
	BaselineSamples int                  `yaml:"baseline_samples"`
	MaximumSamples  int                  `yaml:"maximum_samples"`
	Channels        []ChannelCalibration `yaml:"channels"`
}

// ChannelCalibration holds the calibrated resting baseline, baseline noise
// (standard deviation), and maximum voluntary contraction for one channel,
// in fixed channel order (throttle, yaw, pitch, roll).
type ChannelCalibration struct {
	Baseline float64 `yaml:"baseline"`
	Noise    float64 `yaml:"noise"`
	Max      float64 `yaml:"max"`
}

// QualityConfig contains signal quality evaluation parameters.
type QualityConfig struct {
	WindowSeconds       float64 `yaml:"window_seconds"`        // evaluation window
	MinSNRdB            float64 `yaml:"min_snr_db"`            // minimum acceptable SNR
	MaxCrosstalkPercent float64 `yaml:"max_crosstalk_percent"` // maximum inter-channel interference
}

// MockConfig contains mock device configuration.
type MockConfig struct {
	SignalAmplitude float64       `yaml:"signal_amplitude"` // raw units of the simulated burst
	NoiseLevel      float64       `yaml:"noise_level"`      // raw units of background noise
	BurstDuration   time.Duration `yaml:"burst_duration"`   // length of one muscle burst
	BurstPeriod     time.Duration `yaml:"burst_period"`     // time between bursts on one channel
	SampleRate      time.Duration `yaml:"sample_rate"`      // frame interval
}

// LoggingConfig contains session data logging configuration.
type LoggingConfig struct {
	Dir     string `yaml:"dir"`
	Enabled bool   `yaml:"enabled"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port: "COM3", // Default for Windows, should be "/dev/ttyACM0" on Linux/Mac
		},
		EMG: EMGConfig{
			NoiseThreshold: 25,
			MaxValue:       100,
		},
		Calibration: CalibrationConfig{
			BaselineSamples: 1000,
			MaximumSamples:  500,
			Channels: []ChannelCalibration{
				{Baseline: 0, Noise: 1, Max: 100},
				{Baseline: 0, Noise: 1, Max: 100},
				{Baseline: 0, Noise: 1, Max: 100},
				{Baseline: 0, Noise: 1, Max: 100},
			},
		},
		Quality: QualityConfig{
			WindowSeconds:       2,
			MinSNRdB:            15,
			MaxCrosstalkPercent: 25,
		},
		Mock: MockConfig{
			SignalAmplitude: 200,
			NoiseLevel:      5,
			BurstDuration:   2 * time.Second,
			BurstPeriod:     8 * time.Second,
			SampleRate:      2 * time.Millisecond, // 500 frames per second
		},
		Logging: LoggingConfig{
			Dir:     "data_output/emg_data",
			Enabled: true,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}

	if c.EMG.NoiseThreshold == 0 {
		c.EMG.NoiseThreshold = def.EMG.NoiseThreshold
	}
	if c.EMG.MaxValue == 0 {
		c.EMG.MaxValue = def.EMG.MaxValue
	}

	if c.Calibration.BaselineSamples == 0 {
		c.Calibration.BaselineSamples = def.Calibration.BaselineSamples
	}
	if c.Calibration.MaximumSamples == 0 {
		c.Calibration.MaximumSamples = def.Calibration.MaximumSamples
	}
	if len(c.Calibration.Channels) != len(def.Calibration.Channels) {
		c.Calibration.Channels = def.Calibration.Channels
	}

	if c.Quality.WindowSeconds == 0 {
		c.Quality.WindowSeconds = def.Quality.WindowSeconds
	}
	if c.Quality.MinSNRdB == 0 {
		c.Quality.MinSNRdB = def.Quality.MinSNRdB
	}
	if c.Quality.MaxCrosstalkPercent == 0 {
		c.Quality.MaxCrosstalkPercent = def.Quality.MaxCrosstalkPercent
	}

	if c.Mock.SignalAmplitude == 0 {
		c.Mock.SignalAmplitude = def.Mock.SignalAmplitude
	}
	if c.Mock.BurstDuration == 0 {
		c.Mock.BurstDuration = def.Mock.BurstDuration
	}
	if c.Mock.BurstPeriod == 0 {
		c.Mock.BurstPeriod = def.Mock.BurstPeriod
	}
	if c.Mock.SampleRate == 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}

	if c.Logging.Dir == "" {
		c.Logging.Dir = def.Logging.Dir
	}
}
