package spectral

import (
	"fmt"
	"math/cmplx"

	"github.com/openlfp/sleepspec/algorithms/common"
	"github.com/openlfp/sleepspec/algorithms/windowing"
	"github.com/openlfp/sleepspec/logging"
)

// Welch computes an averaged-periodogram power spectral density:
// the signal is split into overlapping segments, each segment is
// detrended, windowed and transformed, and the squared magnitudes are
// averaged. Averaging trades frequency resolution for variance
// reduction relative to a single periodogram.
//
// Reference: Welch, "The use of fast Fourier transform for the
// estimation of power spectra", IEEE Trans. Audio Electroacoust. (1967)
type Welch struct {
	fft    *FFT
	params WelchParams
}

// WelchParams holds the segmentation parameters of the estimator.
type WelchParams struct {
	// NPerSeg is the segment length in samples. Zero or negative
	// derives min(256, len(data)/4). A value larger than the data is
	// clamped to the data length with a logged warning.
	NPerSeg int `json:"nperseg"`
	// NOverlap is the overlap between consecutive segments in samples.
	// A negative value selects 50% of NPerSeg.
	NOverlap int `json:"noverlap"`
	// Window names the taper applied to each segment. Empty selects
	// "hann".
	Window string `json:"window"`
}

// DefaultWelchParams returns the standard estimator configuration:
// derived segment length, 50% overlap, Hann window.
func DefaultWelchParams() WelchParams {
	return WelchParams{
		NPerSeg:  0,
		NOverlap: -1,
		Window:   "hann",
	}
}

// WelchResult holds a one-sided power spectral density estimate.
type WelchResult struct {
	Freqs          []float64 `json:"freqs"`           // Frequency axis in Hz, ascending
	PSD            []float64 `json:"psd"`             // Power spectral density (power per Hz)
	NPerSeg        int       `json:"nperseg"`         // Effective segment length used
	NOverlap       int       `json:"noverlap"`        // Effective overlap used
	NumSegments    int       `json:"num_segments"`    // Segments averaged
	FreqResolution float64   `json:"freq_resolution"` // Bin spacing in Hz
}

// NewWelch creates an estimator with default parameters.
func NewWelch() *Welch {
	return NewWelchWithParams(DefaultWelchParams())
}

// NewWelchWithParams creates an estimator with explicit parameters.
func NewWelchWithParams(params WelchParams) *Welch {
	return &Welch{
		fft:    NewFFT(),
		params: params,
	}
}

// Compute estimates the one-sided PSD of data sampled at fs Hz.
// Structural problems (empty input, non-positive rate, overlap not
// smaller than the segment) fail with an error; an oversized segment
// length degrades to the data length with a logged warning.
func (w *Welch) Compute(data []float64, fs float64) (*WelchResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty signal")
	}
	if fs <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %g", fs)
	}

	nperseg := w.params.NPerSeg
	if nperseg <= 0 {
		nperseg = min(256, len(data)/4)
		if nperseg < 1 {
			nperseg = len(data)
		}
	}
	if nperseg > len(data) {
		logging.Warn("segment length exceeds data length, using data length", logging.Fields{
			"nperseg":  nperseg,
			"data_len": len(data),
		})
		nperseg = len(data)
	}

	noverlap := w.params.NOverlap
	if noverlap < 0 {
		noverlap = nperseg / 2
	}
	if noverlap >= nperseg {
		return nil, fmt.Errorf("noverlap (%d) must be less than segment length (%d)", noverlap, nperseg)
	}

	windowName := w.params.Window
	if windowName == "" {
		windowName = "hann"
	}
	win, err := windowing.ForName(windowName, nperseg, false)
	if err != nil {
		return nil, fmt.Errorf("welch window: %w", err)
	}

	numBins := nperseg/2 + 1
	freqs := make([]float64, numBins)
	for i := range freqs {
		freqs[i] = float64(i) * fs / float64(nperseg)
	}

	accum := make([]float64, numBins)
	segment := make([]float64, nperseg)
	step := nperseg - noverlap

	numSegments := 0
	for start := 0; start+nperseg <= len(data); start += step {
		copy(segment, data[start:start+nperseg])
		common.Demean(segment)
		if err := win.ApplyInPlace(segment); err != nil {
			return nil, err
		}

		spectrum := w.fft.Compute(segment)
		for i := 0; i < numBins; i++ {
			mag := cmplx.Abs(spectrum[i])
			accum[i] += mag * mag
		}
		numSegments++
	}

	// Density scaling: 1/(fs * sum(w^2)), averaged over segments, with
	// one-sided doubling for every bin except DC and (for even segment
	// lengths) Nyquist.
	scale := 1.0 / (windowing.SumSquares(win) * fs * float64(numSegments))
	psd := make([]float64, numBins)
	for i := range psd {
		psd[i] = accum[i] * scale
		if i > 0 && !(i == numBins-1 && nperseg%2 == 0) {
			psd[i] *= 2.0
		}
	}

	return &WelchResult{
		Freqs:          freqs,
		PSD:            psd,
		NPerSeg:        nperseg,
		NOverlap:       noverlap,
		NumSegments:    numSegments,
		FreqResolution: fs / float64(nperseg),
	}, nil
}

// WelchPSD is a convenience wrapper returning the frequency axis and
// PSD directly.
func WelchPSD(data []float64, fs float64, params WelchParams) (freqs, psd []float64, err error) {
	result, err := NewWelchWithParams(params).Compute(data, fs)
	if err != nil {
		return nil, nil, err
	}
	return result.Freqs, result.PSD, nil
}
