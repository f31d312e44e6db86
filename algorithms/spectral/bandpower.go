package spectral

import (
	"fmt"

	"github.com/openlfp/sleepspec/algorithms/common"
	"github.com/openlfp/sleepspec/logging"
)

// Band is a named frequency interval in Hz, inclusive on both ends.
type Band struct {
	Name   string  `json:"name"`
	LowHz  float64 `json:"low_hz"`
	HighHz float64 `json:"high_hz"`
}

// Contains reports whether frequency f falls inside the band.
func (b Band) Contains(f float64) bool {
	return f >= b.LowHz && f <= b.HighHz
}

// BandPower is the integrated power of a PSD over one band, in linear
// units and in decibels. DB is -Inf when Linear is zero; a band with
// no spectral content is a value, not an error.
type BandPower struct {
	Linear float64 `json:"linear"`
	DB     float64 `json:"db"`
}

// ComputeBandPower integrates the density over all bins with
// fmin <= f <= fmax. Density is converted to per-bin power by the bin
// width before summation, so linear powers of adjacent bands add up.
// The psd and freqs arrays must be the same length.
func ComputeBandPower(psd, freqs []float64, fmin, fmax float64) (BandPower, error) {
	if len(psd) != len(freqs) {
		return BandPower{}, fmt.Errorf("psd and frequency axis lengths differ: %d vs %d", len(psd), len(freqs))
	}

	df := 1.0
	if len(freqs) > 1 {
		df = freqs[1] - freqs[0]
	}

	linear := 0.0
	for i, f := range freqs {
		if f >= fmin && f <= fmax {
			linear += psd[i] * df
		}
	}

	return BandPower{
		Linear: linear,
		DB:     common.LinearDB(linear),
	}, nil
}

// ComputeBandPowers integrates the density over every band in the
// table, keyed by band name.
func ComputeBandPowers(psd, freqs []float64, bands []Band) (map[string]BandPower, error) {
	powers := make(map[string]BandPower, len(bands))
	for _, band := range bands {
		power, err := ComputeBandPower(psd, freqs, band.LowHz, band.HighHz)
		if err != nil {
			return nil, fmt.Errorf("band %q: %w", band.Name, err)
		}
		powers[band.Name] = power
	}
	return powers, nil
}

// BandMean averages values over the bins whose frequency falls inside
// the band. The boolean reports whether any bin did; a false return
// leaves the caller to decide how an empty band degrades.
func BandMean(values, freqs []float64, band Band) (float64, bool) {
	sum := 0.0
	count := 0
	for i, f := range freqs {
		if i < len(values) && band.Contains(f) {
			sum += values[i]
			count++
		}
	}
	if count == 0 {
		return 0.0, false
	}
	return sum / float64(count), true
}

// ComputeSignalBandPower estimates the PSD of data with Welch's method
// and integrates it over [fmin, fmax]. Convenience path for callers
// that need a single band figure straight from a time series.
func ComputeSignalBandPower(data []float64, fs, fmin, fmax float64, params WelchParams) (BandPower, error) {
	result, err := NewWelchWithParams(params).Compute(data, fs)
	if err != nil {
		return BandPower{}, err
	}
	return ComputeBandPower(result.PSD, result.Freqs, fmin, fmax)
}

// BandAveragedCoherence computes the magnitude-squared coherence
// between x and y and averages it over the bins falling inside
// [fmin, fmax]. An empty band yields 0.0 with a logged warning rather
// than an error.
func BandAveragedCoherence(x, y []float64, fs, fmin, fmax float64, params CoherenceParams) (float64, error) {
	result, err := NewCoherenceWithParams(params).Compute(x, y, fs)
	if err != nil {
		return 0, err
	}

	mean, ok := BandMean(result.Coherence, result.Freqs, Band{LowHz: fmin, HighHz: fmax})
	if !ok {
		logging.Warn("no frequency bins inside band, returning zero coherence", logging.Fields{
			"fmin":    fmin,
			"fmax":    fmax,
			"nperseg": result.NPerSeg,
		})
		return 0.0, nil
	}

	return mean, nil
}
