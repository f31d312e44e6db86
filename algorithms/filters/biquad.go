package filters

import "math"

// Biquad is a single second-order IIR section in Direct Form II,
// normalized so that a0 == 1. First-order sections are represented
// with b2 and a2 set to zero.
//
// The difference equation is:
// w[n] = x[n] - a1*w[n-1] - a2*w[n-2]
// y[n] = b0*w[n] + b1*w[n-1] + b2*w[n-2]
type Biquad struct {
	b0, b1, b2 float64 // Numerator coefficients
	a1, a2     float64 // Denominator coefficients (a0 normalized to 1)

	// State variables for direct form II implementation
	w1, w2 float64
}

// NewBiquad creates a section from raw transfer-function coefficients,
// normalizing by a0.
func NewBiquad(b0, b1, b2, a0, a1, a2 float64) *Biquad {
	return &Biquad{
		b0: b0 / a0,
		b1: b1 / a0,
		b2: b2 / a0,
		a1: a1 / a0,
		a2: a2 / a0,
	}
}

// Process applies the section to a single sample.
// Uses Direct Form II implementation for numerical stability.
func (bq *Biquad) Process(input float64) float64 {
	w := input - bq.a1*bq.w1 - bq.a2*bq.w2
	output := bq.b0*w + bq.b1*bq.w1 + bq.b2*bq.w2

	bq.w2 = bq.w1
	bq.w1 = w

	return output
}

// ProcessBuffer applies the section to an entire buffer of samples.
func (bq *Biquad) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, sample := range input {
		output[i] = bq.Process(sample)
	}
	return output
}

// Reset clears the section's internal state (delay line).
// Call this when processing discontinuous segments.
func (bq *Biquad) Reset() {
	bq.w1, bq.w2 = 0.0, 0.0
}

// Order returns 1 for a first-order section and 2 otherwise.
func (bq *Biquad) Order() int {
	if bq.b2 == 0 && bq.a2 == 0 {
		return 1
	}
	return 2
}

// Coefficients returns the normalized transfer-function coefficients.
func (bq *Biquad) Coefficients() (b0, b1, b2, a1, a2 float64) {
	return bq.b0, bq.b1, bq.b2, bq.a1, bq.a2
}

// FrequencyResponseAt computes the complex frequency response at the
// normalized angular frequency w (radians/sample). Returns magnitude
// (linear scale) and phase (radians).
//
// H(e^jw) = (b0 + b1*e^-jw + b2*e^-j2w) / (1 + a1*e^-jw + a2*e^-j2w)
func (bq *Biquad) FrequencyResponseAt(w float64) (magnitude, phase float64) {
	cosW := math.Cos(w)
	sinW := math.Sin(w)
	cos2W := math.Cos(2 * w)
	sin2W := math.Sin(2 * w)

	numReal := bq.b0 + bq.b1*cosW + bq.b2*cos2W
	numImag := -bq.b1*sinW - bq.b2*sin2W

	denReal := 1.0 + bq.a1*cosW + bq.a2*cos2W
	denImag := -bq.a1*sinW - bq.a2*sin2W

	denMagSq := denReal*denReal + denImag*denImag

	hReal := (numReal*denReal + numImag*denImag) / denMagSq
	hImag := (numImag*denReal - numReal*denImag) / denMagSq

	magnitude = math.Sqrt(hReal*hReal + hImag*hImag)
	phase = math.Atan2(hImag, hReal)

	return magnitude, phase
}

// Cascade is a chain of biquad sections applied in series. Higher-order
// filters are realized as cascades to keep each section numerically
// well conditioned.
type Cascade struct {
	sections []*Biquad
}

// NewCascade creates a cascade from the given sections.
func NewCascade(sections ...*Biquad) *Cascade {
	return &Cascade{sections: sections}
}

// Process applies all sections in series to a single sample.
func (c *Cascade) Process(input float64) float64 {
	out := input
	for _, s := range c.sections {
		out = s.Process(out)
	}
	return out
}

// ProcessBuffer applies the cascade to an entire buffer of samples.
func (c *Cascade) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, sample := range input {
		output[i] = c.Process(sample)
	}
	return output
}

// Reset clears the state of every section.
func (c *Cascade) Reset() {
	for _, s := range c.sections {
		s.Reset()
	}
}

// Order returns the total filter order across all sections.
func (c *Cascade) Order() int {
	order := 0
	for _, s := range c.sections {
		order += s.Order()
	}
	return order
}

// NumSections returns the number of sections in the cascade.
func (c *Cascade) NumSections() int {
	return len(c.sections)
}

// FrequencyResponseAt computes the cascade's response at normalized
// angular frequency w as the product of the section responses.
func (c *Cascade) FrequencyResponseAt(w float64) (magnitude, phase float64) {
	magnitude = 1.0
	for _, s := range c.sections {
		m, p := s.FrequencyResponseAt(w)
		magnitude *= m
		phase += p
	}
	return magnitude, phase
}

// FrequencyResponse computes magnitude and phase at the given frequency
// in Hz for a filter designed at sample rate fs.
func (c *Cascade) FrequencyResponse(frequency, fs float64) (magnitude, phase float64) {
	w := 2.0 * math.Pi * frequency / fs
	return c.FrequencyResponseAt(w)
}
