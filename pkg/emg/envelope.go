package emg

import "github.com/chewxy/math32"

// Envelope converts the oscillatory filtered signal into a slowly varying
// magnitude proxy: a moving average of rectified amplitude over a fixed
// circular buffer, with an O(1) running-sum update per sample.
//
// The running sum must equal the arithmetic sum of the buffer contents at
// all times (within floating-point tolerance); any larger divergence is an
// accounting bug, not a legitimate state. The zero value is an empty
// detector.
type Envelope struct {
	buf    [EnvelopeWindow]float32
	sum    float32
	cursor int
}

// Update pushes the rectified magnitude of x into the window and returns
// the current envelope value. The 2x factor compensates for the mean
// reduction that rectification applies to a roughly symmetric signal.
func (e *Envelope) Update(x float32) float32 {
	r := math32.Abs(x)
	e.sum -= e.buf[e.cursor]
	e.sum += r
	e.buf[e.cursor] = r
	e.cursor = (e.cursor + 1) % EnvelopeWindow
	return (e.sum / EnvelopeWindow) * 2.0
}

// Value returns the envelope for the current window without consuming a
// sample.
func (e *Envelope) Value() float32 {
	return (e.sum / EnvelopeWindow) * 2.0
}

// Sum returns the running sum maintained incrementally.
func (e *Envelope) Sum() float32 {
	return e.sum
}

// Recompute returns the exact sum of the buffer contents. Comparing it
// against Sum bounds the numerical drift of the incremental accounting.
func (e *Envelope) Recompute() float32 {
	var s float32
	for _, v := range e.buf {
		s += v
	}
	return s
}

// Reset clears the window, sum, and cursor.
func (e *Envelope) Reset() {
	*e = Envelope{}
}
