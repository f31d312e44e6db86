package windowing

import (
	"fmt"
	"strings"
)

// Window is the common interface for taper functions applied to signal
// segments before the FFT. Periodic variants (symmetric=false) are the
// correct choice for averaged-periodogram estimates; symmetric variants
// are for filter design.
type Window interface {
	// Apply applies the window to a signal (creates new array)
	Apply(signal []float64) []float64
	// ApplyInPlace applies the window to a signal in-place
	ApplyInPlace(signal []float64) error
	// GetCoefficients returns a copy of the window coefficients
	GetCoefficients() []float64
	// GetSize returns the window size
	GetSize() int
	// GetType returns the window type name
	GetType() string
}

// Conventional parameters used when a parametric window is requested by
// name alone.
const (
	defaultKaiserBeta = 8.6
	defaultTukeyAlpha = 0.5
)

// ForName builds a window of the given size by name. Recognized names are
// "hann", "hamming", "blackman", "blackman_harris", "bartlett", "tukey",
// "kaiser", "welch" and "rectangular" (alias "boxcar"). The parametric
// windows take conventional defaults (Kaiser beta 8.6, Tukey alpha 0.5);
// construct them directly when another parameter is needed.
func ForName(name string, size int, symmetric bool) (Window, error) {
	if size <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", size)
	}

	switch strings.ToLower(name) {
	case "hann", "hanning":
		return NewHann(size, symmetric), nil
	case "hamming":
		return NewHamming(size, symmetric), nil
	case "blackman":
		return NewBlackman(size, symmetric), nil
	case "blackman_harris", "blackmanharris":
		return NewBlackmanHarris(size, symmetric), nil
	case "bartlett":
		return NewBartlett(size, symmetric), nil
	case "tukey":
		return NewTukey(size, defaultTukeyAlpha, symmetric), nil
	case "kaiser":
		return NewKaiser(size, defaultKaiserBeta, symmetric), nil
	case "welch":
		return NewWelch(size, symmetric), nil
	case "rectangular", "boxcar":
		return NewRectangular(size), nil
	default:
		return nil, fmt.Errorf("unknown window type: %q", name)
	}
}

// SumSquares returns the sum of squared window coefficients, the
// normalization term of density-scaled periodograms.
func SumSquares(w Window) float64 {
	sum := 0.0
	for _, c := range w.GetCoefficients() {
		sum += c * c
	}
	return sum
}
