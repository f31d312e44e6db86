package spectral

import (
	"fmt"
	"math/cmplx"

	"github.com/openlfp/sleepspec/algorithms/common"
	"github.com/openlfp/sleepspec/algorithms/windowing"
	"github.com/openlfp/sleepspec/logging"
)

// Coherence computes the magnitude-squared coherence between two
// equal-length signals from segment-averaged auto- and cross-spectra:
//
//	Cxy(f) = |Pxy(f)|^2 / (Pxx(f) * Pyy(f))
//
// Values lie in [0, 1]; 1 means a fixed linear relationship between
// the channels at that frequency. Averaging over multiple segments is
// what makes the estimate informative: with a single segment the ratio
// is identically 1.
type Coherence struct {
	params CoherenceParams
}

// CoherenceParams holds the segmentation parameters of the estimator.
// The defaults are independent of the PSD pathway.
type CoherenceParams struct {
	// NPerSeg is the segment length in samples. Zero or negative
	// selects 2048. A value larger than the data is clamped to the
	// data length with a logged warning.
	NPerSeg int `json:"nperseg"`
	// NOverlap is the overlap between consecutive segments in samples.
	// A negative value selects 50% of NPerSeg.
	NOverlap int `json:"noverlap"`
	// Window names the taper applied to each segment. Empty selects
	// "hann".
	Window string `json:"window"`
}

// DefaultCoherenceParams returns the standard configuration for the
// coherence pathway: 2048-sample segments, 50% overlap, Hann window.
func DefaultCoherenceParams() CoherenceParams {
	return CoherenceParams{
		NPerSeg:  2048,
		NOverlap: -1,
		Window:   "hann",
	}
}

// CoherenceResult holds a magnitude-squared coherence estimate.
type CoherenceResult struct {
	Freqs       []float64 `json:"freqs"`        // Frequency axis in Hz, ascending
	Coherence   []float64 `json:"coherence"`    // Magnitude-squared coherence in [0, 1]
	NPerSeg     int       `json:"nperseg"`      // Effective segment length used
	NOverlap    int       `json:"noverlap"`     // Effective overlap used
	NumSegments int       `json:"num_segments"` // Segments averaged
}

// NewCoherence creates an estimator with default parameters.
func NewCoherence() *Coherence {
	return NewCoherenceWithParams(DefaultCoherenceParams())
}

// NewCoherenceWithParams creates an estimator with explicit parameters.
func NewCoherenceWithParams(params CoherenceParams) *Coherence {
	return &Coherence{
		params: params,
	}
}

// Compute estimates the magnitude-squared coherence between x and y,
// both sampled at fs Hz. Mismatched lengths, empty input and
// non-positive rates fail fast.
func (c *Coherence) Compute(x, y []float64, fs float64) (*CoherenceResult, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("signal lengths differ: %d vs %d", len(x), len(y))
	}
	if len(x) == 0 {
		return nil, fmt.Errorf("empty signal")
	}
	if fs <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %g", fs)
	}

	params := c.params
	if params.NPerSeg <= 0 {
		params.NPerSeg = 2048
	}
	if params.NPerSeg > len(x) {
		logging.Warn("segment length exceeds data length, using data length", logging.Fields{
			"nperseg":  params.NPerSeg,
			"data_len": len(x),
		})
		params.NPerSeg = len(x)
	}

	cs, err := NewCrossSpectrum(fs, params)
	if err != nil {
		return nil, err
	}
	if _, err := cs.Accumulate(x, y); err != nil {
		return nil, err
	}
	return cs.Coherence(), nil
}

// CrossSpectrum accumulates segment-averaged auto- and cross-spectra
// across one or more stretches of a signal pair. Pooling segments this
// way lets coherence be estimated over disjoint data, such as all
// epochs of one sleep state, without splicing the stretches together
// and filtering across the seams.
type CrossSpectrum struct {
	fft      *FFT
	fs       float64
	nperseg  int
	noverlap int
	window   windowing.Window

	freqs       []float64
	pxx         []float64
	pyy         []float64
	pxy         []complex128
	segX        []float64
	segY        []float64
	numSegments int
}

// NewCrossSpectrum creates an accumulator with a fixed segment length.
// Unlike the whole-signal pathway the segment length is not adapted to
// the data; stretches shorter than one segment simply contribute
// nothing.
func NewCrossSpectrum(fs float64, params CoherenceParams) (*CrossSpectrum, error) {
	if fs <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %g", fs)
	}

	nperseg := params.NPerSeg
	if nperseg <= 0 {
		nperseg = 2048
	}
	noverlap := params.NOverlap
	if noverlap < 0 {
		noverlap = nperseg / 2
	}
	if noverlap >= nperseg {
		return nil, fmt.Errorf("noverlap (%d) must be less than segment length (%d)", noverlap, nperseg)
	}

	windowName := params.Window
	if windowName == "" {
		windowName = "hann"
	}
	win, err := windowing.ForName(windowName, nperseg, false)
	if err != nil {
		return nil, fmt.Errorf("coherence window: %w", err)
	}

	numBins := nperseg/2 + 1
	freqs := make([]float64, numBins)
	for i := range freqs {
		freqs[i] = float64(i) * fs / float64(nperseg)
	}

	return &CrossSpectrum{
		fft:      NewFFT(),
		fs:       fs,
		nperseg:  nperseg,
		noverlap: noverlap,
		window:   win,
		freqs:    freqs,
		pxx:      make([]float64, numBins),
		pyy:      make([]float64, numBins),
		pxy:      make([]complex128, numBins),
		segX:     make([]float64, nperseg),
		segY:     make([]float64, nperseg),
	}, nil
}

// Accumulate segments the stretch and adds each segment's auto- and
// cross-spectra to the running totals. Returns the number of segments
// the stretch contributed, which is zero when it is shorter than one
// segment.
func (cs *CrossSpectrum) Accumulate(x, y []float64) (int, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("signal lengths differ: %d vs %d", len(x), len(y))
	}

	numBins := len(cs.freqs)
	step := cs.nperseg - cs.noverlap
	added := 0

	for start := 0; start+cs.nperseg <= len(x); start += step {
		copy(cs.segX, x[start:start+cs.nperseg])
		copy(cs.segY, y[start:start+cs.nperseg])
		common.Demean(cs.segX)
		common.Demean(cs.segY)
		if err := cs.window.ApplyInPlace(cs.segX); err != nil {
			return added, err
		}
		if err := cs.window.ApplyInPlace(cs.segY); err != nil {
			return added, err
		}

		spectrumX := cs.fft.Compute(cs.segX)
		spectrumY := cs.fft.Compute(cs.segY)
		for i := 0; i < numBins; i++ {
			magX := cmplx.Abs(spectrumX[i])
			magY := cmplx.Abs(spectrumY[i])
			cs.pxx[i] += magX * magX
			cs.pyy[i] += magY * magY
			cs.pxy[i] += spectrumX[i] * cmplx.Conj(spectrumY[i])
		}
		added++
	}

	cs.numSegments += added
	return added, nil
}

// NumSegments reports how many segments have been accumulated.
func (cs *CrossSpectrum) NumSegments() int {
	return cs.numSegments
}

// Coherence finalizes the accumulated spectra into a coherence
// estimate. With no accumulated segments every bin is zero; callers
// should check NumSegments on the result.
func (cs *CrossSpectrum) Coherence() *CoherenceResult {
	// The density scale factors cancel in the ratio; only the averaged
	// spectra matter. Guard the degenerate all-zero bins and clamp
	// float jitter back into [0, 1].
	coherence := make([]float64, len(cs.freqs))
	for i := range coherence {
		denom := cs.pxx[i] * cs.pyy[i]
		if denom <= 0 {
			coherence[i] = 0.0
			continue
		}
		crossMag := cmplx.Abs(cs.pxy[i])
		coherence[i] = common.Clamp(crossMag*crossMag/denom, 0.0, 1.0)
	}

	freqs := make([]float64, len(cs.freqs))
	copy(freqs, cs.freqs)

	return &CoherenceResult{
		Freqs:       freqs,
		Coherence:   coherence,
		NPerSeg:     cs.nperseg,
		NOverlap:    cs.noverlap,
		NumSegments: cs.numSegments,
	}
}

// MagnitudeSquaredCoherence is a convenience wrapper returning the
// frequency axis and coherence values directly.
func MagnitudeSquaredCoherence(x, y []float64, fs float64, params CoherenceParams) (freqs, coherence []float64, err error) {
	result, err := NewCoherenceWithParams(params).Compute(x, y, fs)
	if err != nil {
		return nil, nil, err
	}
	return result.Freqs, result.Coherence, nil
}
