// Package datalog records research sessions to CSV: one row per frame with
// the four channel intensities and the quality metrics in effect at that
// moment.
package datalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/mr-fool/drone-simulator/pkg/emg"
	"github.com/mr-fool/drone-simulator/pkg/quality"
)

// header is the fixed CSV column layout.
var header = []string{
	"timestamp",
	"throttle", "yaw", "pitch", "roll",
	"snr_throttle", "snr_yaw", "snr_pitch", "snr_roll",
	"rating",
}

// Writer appends session rows to a CSV file. Safe for use from multiple
// goroutines.
type Writer struct {
	mu   sync.Mutex
	file *os.File
	csv  *csv.Writer
	path string
}

// New creates the session file under dir, named after the session id.
// An empty session id derives one from the current time.
func New(dir, sessionID string) (*Writer, error) {
	if sessionID == "" {
		sessionID = time.Now().Format("20060102_150405")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("emg_session_%s.csv", sessionID))
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create session file: %w", err)
	}

	w := &Writer{
		file: file,
		csv:  csv.NewWriter(file),
		path: path,
	}

	if err := w.csv.Write(header); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	return w, nil
}

// Path returns the session file location.
func (w *Writer) Path() string {
	return w.path
}

// Log appends one row for the frame and the quality report current at its
// receive time.
func (w *Writer) Log(f emg.Frame, rep quality.Report) error {
	record := make([]string, 0, len(header))
	record = append(record, f.Timestamp.Format(time.RFC3339Nano))
	for _, v := range f.Values {
		record = append(record, strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	for _, snr := range rep.SNR {
		record = append(record, strconv.FormatFloat(snr, 'f', 2, 64))
	}
	record = append(record, rep.Rating.String())

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.csv.Write(record); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	return nil
}

// Close flushes buffered rows and closes the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to flush session file: %w", err)
	}
	return w.file.Close()
}
