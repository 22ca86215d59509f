//go:build tinygo

//go:generate tinygo flash -target=arduino

package main

import (
	"machine"
	"time"

	"github.com/mr-fool/drone-simulator/pkg/emg"
	"github.com/mr-fool/drone-simulator/pkg/sched"
)

var (
	uart = machine.UART0

	adcs [emg.NumChannels]machine.ADC

	// Reused frame buffer; one line is well under 64 bytes.
	lineBuf [64]byte
)

func main() {
	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	// Configure the four electrode inputs in fixed channel order.
	pins := [emg.NumChannels]machine.Pin{PIN_THROTTLE, PIN_YAW, PIN_PITCH, PIN_ROLL}

	adcConfig := machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	}
	for i, pin := range pins {
		pin.Configure(machine.PinConfig{Mode: machine.PinInput})
		adcs[i] = machine.ADC{Pin: pin}
		adcs[i].Configure(adcConfig)
	}

	pipeline := emg.NewPipeline()

	// Startup banner: two lines, once, before periodic frames begin.
	println("EMG Flight Control - BioAmp EXG Pill")
	println("4 channels @ 500 Hz, 74.5-149.5 Hz band-pass")

	// Main loop: busy-poll the scheduler; each tick reads all four
	// channels, advances the pipeline, and emits one frame. If a tick's
	// work overruns the period the rate degrades; the loop never stops.
	scheduler := sched.New(emg.SampleRate, time.Now())
	for {
		if !scheduler.Poll(time.Now()) {
			continue
		}

		var raw [emg.NumChannels]float32
		for i := range adcs {
			raw[i] = float32(adcs[i].Get())
		}

		frame := pipeline.Tick(raw)
		uart.Write(frame.AppendLine(lineBuf[:0]))
	}
}
