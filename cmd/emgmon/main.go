// Command emgmon is a console monitor for the EMG acquisition stream. It
// connects to the board (or a mock), evaluates signal quality against the
// session calibration, prints a periodic readout, and records the session
// to CSV. With -calibrate it runs the baseline/maximum calibration sequence
// and saves the results to the configuration file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mr-fool/drone-simulator/pkg/calib"
	"github.com/mr-fool/drone-simulator/pkg/config"
	"github.com/mr-fool/drone-simulator/pkg/datalog"
	"github.com/mr-fool/drone-simulator/pkg/device"
	"github.com/mr-fool/drone-simulator/pkg/emg"
	"github.com/mr-fool/drone-simulator/pkg/quality"
)

func main() {
	var (
		portFlag      = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag    = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag      = flag.Bool("mock", false, "Use mocked device instead of serial port")
		calibrateFlag = flag.Bool("calibrate", false, "Run the calibration sequence and save results")
		sessionFlag   = flag.String("session", "", "Session id for the data log (default: timestamp)")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override serial port if provided via command line
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	var dev device.Device
	if *mockFlag {
		dev = device.NewMock(&cfg.Mock)
	} else {
		dev = device.New(cfg.Serial.Port, device.DefaultBaudRate, device.DefaultBufferSize)
	}

	if err := dev.Connect(); err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer dev.Close()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	if *calibrateFlag {
		runCalibration(cfg, dev, *configFlag, sigs)
		return
	}

	monitor(cfg, dev, *sessionFlag, sigs)
}

// monitor runs the readout loop until the stream ends or a signal arrives.
func monitor(cfg *config.Config, dev device.Device, sessionID string, sigs <-chan os.Signal) {
	meter := quality.New(cfg)
	qin := make(chan emg.Frame, device.DefaultBufferSize)
	go meter.ProcessFrames(qin)
	defer close(qin)

	var logger *datalog.Writer
	if cfg.Logging.Enabled {
		var err error
		logger, err = datalog.New(cfg.Logging.Dir, sessionID)
		if err != nil {
			log.Printf("Session logging disabled: %v", err)
		} else {
			log.Printf("Recording session to %s", logger.Path())
			defer logger.Close()
		}
	}

	var lastPrint time.Time
	for {
		select {
		case <-sigs:
			log.Println("Shutting down")
			return

		case f, ok := <-dev.Frames():
			if !ok {
				log.Println("Frame stream ended")
				return
			}

			select {
			case qin <- f:
			default:
				// Quality meter busy; skip rather than stall the stream.
			}

			rep := meter.Report()
			if logger != nil {
				if err := logger.Log(f, rep); err != nil {
					log.Printf("Failed to log frame: %v", err)
				}
			}

			if time.Since(lastPrint) >= 500*time.Millisecond {
				lastPrint = time.Now()
				printStatus(f, rep)
			}
		}
	}
}

func printStatus(f emg.Frame, rep quality.Report) {
	fmt.Printf("throttle=%7.2f yaw=%7.2f pitch=%7.2f roll=%7.2f | snr [%5.1f %5.1f %5.1f %5.1f] dB | quality=%s\n",
		f.Value(emg.Throttle), f.Value(emg.Yaw), f.Value(emg.Pitch), f.Value(emg.Roll),
		rep.SNR[emg.Throttle], rep.SNR[emg.Yaw], rep.SNR[emg.Pitch], rep.SNR[emg.Roll],
		rep.Rating)
}

// runCalibration feeds the stream through the calibration sequence and
// saves the per-channel results back into the configuration file.
func runCalibration(cfg *config.Config, dev device.Device, configPath string, sigs <-chan os.Signal) {
	cal := calib.New(cfg)

	log.Println("Calibration started: relax all muscles for the baseline capture")
	lastPhase := calib.PhaseBaseline

	for {
		select {
		case <-sigs:
			log.Println("Calibration aborted")
			return

		case f, ok := <-dev.Frames():
			if !ok {
				log.Println("Frame stream ended before calibration completed")
				return
			}

			phase := cal.Feed(f)
			if phase == lastPhase {
				continue
			}
			lastPhase = phase

			if phase == calib.PhaseComplete {
				if err := cal.Apply(cfg); err != nil {
					log.Fatalf("Failed to apply calibration: %v", err)
				}
				if err := cfg.Save(configPath); err != nil {
					log.Fatalf("Failed to save configuration: %v", err)
				}
				log.Printf("Calibration complete, saved to %s", configPath)
				return
			}

			if ch, ok := phase.Channel(); ok {
				log.Printf("Now contract and hold the %s muscle group", ch)
			}
		}
	}
}
