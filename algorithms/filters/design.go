package filters

import (
	"fmt"
	"math"
)

// Biquad designs from the Bristow-Johnson cookbook formulas.
// Reference: https://webaudio.github.io/Audio-EQ-Cookbook/audio-eq-cookbook.html

// normalizedW0 converts a frequency in Hz to normalized angular
// frequency, validating that it lies strictly inside (0, Nyquist).
func normalizedW0(frequency, fs float64) (float64, error) {
	if fs <= 0 {
		return 0, fmt.Errorf("sample rate must be positive, got %g", fs)
	}
	if frequency <= 0 || frequency >= fs/2 {
		return 0, fmt.Errorf("frequency %g Hz outside (0, %g) Hz", frequency, fs/2)
	}
	return 2.0 * math.Pi * frequency / fs, nil
}

// DesignNotch designs a second-order notch that rejects a narrow band
// around frequency. The quality factor sets the rejection width as
// frequency/q.
func DesignNotch(frequency, fs, q float64) (*Biquad, error) {
	w0, err := normalizedW0(frequency, fs)
	if err != nil {
		return nil, err
	}
	if q <= 0 {
		return nil, fmt.Errorf("quality factor must be positive, got %g", q)
	}

	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2.0 * q)

	return NewBiquad(
		1.0, -2.0*cosW0, 1.0,
		1.0+alpha, -2.0*cosW0, 1.0-alpha,
	), nil
}

// designLowpassSection designs one second-order lowpass section with
// the given quality factor.
func designLowpassSection(frequency, fs, q float64) (*Biquad, error) {
	w0, err := normalizedW0(frequency, fs)
	if err != nil {
		return nil, err
	}

	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2.0 * q)

	return NewBiquad(
		(1.0-cosW0)/2.0, 1.0-cosW0, (1.0-cosW0)/2.0,
		1.0+alpha, -2.0*cosW0, 1.0-alpha,
	), nil
}

// designHighpassSection designs one second-order highpass section with
// the given quality factor.
func designHighpassSection(frequency, fs, q float64) (*Biquad, error) {
	w0, err := normalizedW0(frequency, fs)
	if err != nil {
		return nil, err
	}

	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2.0 * q)

	return NewBiquad(
		(1.0+cosW0)/2.0, -(1.0 + cosW0), (1.0+cosW0)/2.0,
		1.0+alpha, -2.0*cosW0, 1.0-alpha,
	), nil
}

// designFirstOrderLowpass designs a single-pole lowpass via the
// bilinear transform. Used for the real pole of odd-order designs.
func designFirstOrderLowpass(frequency, fs float64) (*Biquad, error) {
	if _, err := normalizedW0(frequency, fs); err != nil {
		return nil, err
	}

	k := math.Tan(math.Pi * frequency / fs)
	norm := 1.0 / (1.0 + k)

	return &Biquad{
		b0: k * norm,
		b1: k * norm,
		a1: (k - 1.0) * norm,
	}, nil
}

// designFirstOrderHighpass designs a single-pole highpass via the
// bilinear transform.
func designFirstOrderHighpass(frequency, fs float64) (*Biquad, error) {
	if _, err := normalizedW0(frequency, fs); err != nil {
		return nil, err
	}

	k := math.Tan(math.Pi * frequency / fs)
	norm := 1.0 / (1.0 + k)

	return &Biquad{
		b0: norm,
		b1: -norm,
		a1: (k - 1.0) * norm,
	}, nil
}
