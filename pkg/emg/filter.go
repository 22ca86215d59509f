package emg

// numSections is the number of cascaded second-order sections per channel.
const numSections = 4

// sectionCoeffs holds the fixed transfer function coefficients of one
// second-order section. a0 is normalized to 1 and not stored.
type sectionCoeffs struct {
	a1, a2     float32 // feedback (denominator)
	b0, b1, b2 float32 // feedforward (numerator)
}

// bandpassCoeffs is the second-order-section decomposition of a
// Butterworth band-pass response with a 74.5-149.5 Hz pass band at a
// 500 Hz sample rate. Every channel uses the same table; only the delay
// registers differ per channel.
var bandpassCoeffs = [numSections]sectionCoeffs{
	{a1: 0.05159732, a2: 0.36347401, b0: 0.01856301, b1: 0.03712602, b2: 0.01856301},
	{a1: -0.53945795, a2: 0.39764934, b0: 1.0, b1: -2.0, b2: 1.0},
	{a1: 0.47319594, a2: -0.70744137, b0: 1.0, b1: 2.0, b2: 1.0},
	{a1: -1.00211112, a2: 0.74520226, b0: 1.0, b1: -2.0, b2: 1.0},
}

// section is the delay-line state of one second-order section.
type section struct {
	z1, z2 float32
}

// BandPass is the per-channel band-pass filter: four second-order sections
// applied in series, Direct Form II. State is explicit so it can be
// inspected and restored in isolation; the zero value is a filter at rest.
type BandPass struct {
	sections [numSections]section
}

// Process filters one raw sample and returns the band-limited output.
// Deterministic given the current register state.
func (f *BandPass) Process(in float32) float32 {
	out := in
	for i := range f.sections {
		s := &f.sections[i]
		c := &bandpassCoeffs[i]
		x := out - c.a1*s.z1 - c.a2*s.z2
		out = c.b0*x + c.b1*s.z1 + c.b2*s.z2
		s.z2 = s.z1
		s.z1 = x
	}
	return out
}

// Reset clears all delay registers to zero.
func (f *BandPass) Reset() {
	for i := range f.sections {
		f.sections[i] = section{}
	}
}

// State returns a snapshot of the delay registers, one [z1, z2] pair per
// section.
func (f *BandPass) State() [numSections][2]float32 {
	var st [numSections][2]float32
	for i, s := range f.sections {
		st[i] = [2]float32{s.z1, s.z2}
	}
	return st
}

// SetState restores a previously saved register snapshot.
func (f *BandPass) SetState(st [numSections][2]float32) {
	for i := range f.sections {
		f.sections[i].z1 = st[i][0]
		f.sections[i].z2 = st[i][1]
	}
}
