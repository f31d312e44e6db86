package filters

import (
	"github.com/openlfp/sleepspec/algorithms/common"
	"github.com/openlfp/sleepspec/logging"
)

// Signal conditioning entry points. Invalid parameters never abort an
// analysis run: each function degrades to returning its input unchanged
// and reports the problem through the logging package.

// PipelineParams configures the fixed notch-then-bandpass conditioning
// pipeline applied to raw recordings before segmentation.
type PipelineParams struct {
	NotchFreq    float64 `json:"notch_freq"`    // Line frequency to reject in Hz
	NotchQ       float64 `json:"notch_q"`       // Notch quality factor
	BandLow      float64 `json:"band_low"`      // Bandpass low edge in Hz
	BandHigh     float64 `json:"band_high"`     // Bandpass high edge in Hz
	BandOrder    int     `json:"band_order"`    // Butterworth order per band edge
	PreserveGaps bool    `json:"preserve_gaps"` // Filter around NaN gaps instead of through them
}

// DefaultPipelineParams returns the standard conditioning pipeline:
// 60 Hz line-noise notch followed by a 0.5-120 Hz bandpass.
func DefaultPipelineParams() PipelineParams {
	return PipelineParams{
		NotchFreq:    60.0,
		NotchQ:       30.0,
		BandLow:      0.5,
		BandHigh:     120.0,
		BandOrder:    4,
		PreserveGaps: true,
	}
}

// ApplyNotch removes a narrow frequency component with a zero-phase
// IIR notch. The notch frequency must lie strictly inside (0, Nyquist);
// otherwise the input is returned unchanged and a warning is logged.
func ApplyNotch(signal []float64, fs, notchFreq, qualityFactor float64) []float64 {
	section, err := DesignNotch(notchFreq, fs, qualityFactor)
	if err != nil {
		logging.Warn("notch filter disabled, returning input unchanged", logging.Fields{
			"notch_hz": notchFreq,
			"fs":       fs,
			"q":        qualityFactor,
			"reason":   err.Error(),
		})
		return signal
	}

	return ZeroPhase(NewCascade(section), signal)
}

// ApplyBandpass applies a zero-phase Butterworth bandpass. Both edges,
// normalized by the Nyquist frequency, must lie strictly inside (0, 1);
// otherwise the input is returned unchanged and a warning is logged.
func ApplyBandpass(signal []float64, fs, low, high float64, order int) []float64 {
	cascade, err := DesignBandpass(low, high, fs, order)
	if err != nil {
		logging.Warn("bandpass filter disabled, returning input unchanged", logging.Fields{
			"low_hz":  low,
			"high_hz": high,
			"fs":      fs,
			"order":   order,
			"reason":  err.Error(),
		})
		return signal
	}

	return ZeroPhase(cascade, signal)
}

// ApplyBandpassPreservingGaps applies the zero-phase Butterworth
// bandpass to each maximal contiguous run of non-NaN samples
// independently, writing results back to their original positions.
// NaN positions in the output match the input exactly. An all-NaN
// input comes back unchanged, and a failed filter design leaves the
// original values in place.
func ApplyBandpassPreservingGaps(signal []float64, fs, low, high float64, order int) []float64 {
	cascade, err := DesignBandpass(low, high, fs, order)
	if err != nil {
		logging.Warn("bandpass filter disabled, returning input unchanged", logging.Fields{
			"low_hz":  low,
			"high_hz": high,
			"fs":      fs,
			"order":   order,
			"reason":  err.Error(),
		})
		return signal
	}

	return filterRuns(signal, func(run []float64) []float64 {
		return ZeroPhase(cascade, run)
	})
}

// ApplyFilters runs the default conditioning pipeline.
func ApplyFilters(signal []float64, fs float64) []float64 {
	return ApplyFiltersWithParams(signal, fs, DefaultPipelineParams())
}

// ApplyFiltersWithParams composes the notch and bandpass stages. With
// PreserveGaps set, both stages operate per contiguous non-NaN run so
// that a single gap cannot poison the recursive filter state for the
// rest of the recording.
func ApplyFiltersWithParams(signal []float64, fs float64, params PipelineParams) []float64 {
	notch, notchErr := DesignNotch(params.NotchFreq, fs, params.NotchQ)
	if notchErr != nil {
		logging.Warn("notch stage disabled", logging.Fields{
			"notch_hz": params.NotchFreq,
			"fs":       fs,
			"reason":   notchErr.Error(),
		})
	}
	bandpass, bandErr := DesignBandpass(params.BandLow, params.BandHigh, fs, params.BandOrder)
	if bandErr != nil {
		logging.Warn("bandpass stage disabled", logging.Fields{
			"low_hz":  params.BandLow,
			"high_hz": params.BandHigh,
			"fs":      fs,
			"reason":  bandErr.Error(),
		})
	}

	if notch == nil && bandpass == nil {
		return signal
	}

	stage := func(run []float64) []float64 {
		out := run
		if notch != nil {
			out = ZeroPhase(NewCascade(notch), out)
		}
		if bandpass != nil {
			out = ZeroPhase(bandpass, out)
		}
		return out
	}

	if !params.PreserveGaps {
		return stage(signal)
	}
	return filterRuns(signal, stage)
}

// filterRuns applies stage to every maximal contiguous non-NaN run and
// reassembles the output, leaving NaN positions untouched.
func filterRuns(signal []float64, stage func([]float64) []float64) []float64 {
	out := make([]float64, len(signal))
	copy(out, signal)

	for _, run := range common.ValidRuns(signal) {
		segment := make([]float64, run.Len())
		copy(segment, signal[run.Start:run.End])
		copy(out[run.Start:run.End], stage(segment))
	}

	return out
}
