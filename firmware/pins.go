//go:build tinygo

package main

import "machine"

const (
	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 10   // ADC resolution in bits (10-bit = 0-1023)

	// Electrode channel pins (BioAmp EXG Pill outputs)
	PIN_THROTTLE = machine.ADC0 // forearm flexor (wrist flexion)
	PIN_YAW      = machine.ADC1 // forearm extensor (wrist extension)
	PIN_PITCH    = machine.ADC2 // bicep brachii (elbow flexion)
	PIN_ROLL     = machine.ADC3 // tricep brachii (elbow extension)

	// Serial configuration
	// Frame format "throttle,yaw,pitch,roll\n", typically ~20 bytes per line.
	// 500 frames/sec * 20 bytes/line = 10,000 bytes/sec
	// UART 8N1: 10 bits/byte = 100,000 baud required; 115200 leaves modest
	// headroom, so frame values should stay in the expected 0-1000 range.
	UART_BAUD_RATE = 115200
)
