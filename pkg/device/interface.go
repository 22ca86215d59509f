// Package device provides access to the EMG acquisition hardware: a serial
// implementation that reads the firmware's frame stream, and a mock that
// synthesizes muscle activity through the real signal pipeline.
package device

import "github.com/mr-fool/drone-simulator/pkg/emg"

// Device defines the interface for EMG acquisition devices (real or mocked).
type Device interface {
	Connect() error
	Close() error
	Frames() <-chan emg.Frame
	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
