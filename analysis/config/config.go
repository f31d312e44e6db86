package config

import (
	"github.com/openlfp/sleepspec/algorithms/epoch"
	"github.com/openlfp/sleepspec/algorithms/filters"
	"github.com/openlfp/sleepspec/algorithms/spectral"
)

// RecordingType identifies the kind of electrophysiology recording.
// It selects tuned defaults the same way content types select feature
// sets in audio fingerprinting: the math is shared, the parameters are
// not.
type RecordingType string

const (
	RecordingLFP      RecordingType = "lfp"
	RecordingScalpEEG RecordingType = "scalp_eeg"
	RecordingUnknown  RecordingType = "unknown"
)

// SpectralConfig holds the Welch and coherence estimator settings.
type SpectralConfig struct {
	// NPerSeg is the Welch segment length. Zero derives a
	// data-dependent default: min(256, len/4) for whole-signal
	// estimates, the full epoch length for per-epoch estimates.
	NPerSeg int `json:"nperseg"`
	// NOverlap is the segment overlap in samples; negative means 50%.
	NOverlap int `json:"noverlap"`
	// Window names the taper applied to each segment.
	Window string `json:"window"`
	// CoherenceNPerSeg is the segment length for coherence estimates.
	// Coherence needs several segments to be meaningful, so it keeps
	// its own, longer default.
	CoherenceNPerSeg int `json:"coherence_nperseg"`
}

// FilterConfig controls the preprocessing filter chain.
type FilterConfig struct {
	// Enabled applies the chain before segmentation; disable when the
	// input is already preprocessed.
	Enabled bool                   `json:"enabled"`
	Params  filters.PipelineParams `json:"params"`
}

// EpochConfig controls segmentation and label forward-fill.
type EpochConfig struct {
	DurationSec float64 `json:"duration_sec"`
	// FillEnabled forward-fills short label gaps before segmentation,
	// as the full pipeline does; disable when labels are already dense.
	FillEnabled bool             `json:"fill_enabled"`
	Fill        epoch.FillParams `json:"fill"`
}

// AnalysisConfig is the complete parameter set for a spectral analysis
// run. Values are passed explicitly; nothing reads them from globals.
type AnalysisConfig struct {
	SampleRate    float64         `json:"sample_rate"`
	RecordingType RecordingType   `json:"recording_type"`
	Filter        FilterConfig    `json:"filter"`
	Epoch         EpochConfig     `json:"epoch"`
	Spectral      SpectralConfig  `json:"spectral"`
	Bands         []spectral.Band `json:"bands"`
	// Workers bounds the per-epoch estimation pool. Zero sizes the
	// pool from the machine and the workload; one forces serial.
	Workers int `json:"workers"`
}

// DefaultBands returns the standard sleep band table.
func DefaultBands() []spectral.Band {
	return []spectral.Band{
		{Name: "delta", LowHz: 0.5, HighHz: 4.0},
		{Name: "theta", LowHz: 4.0, HighHz: 8.0},
		{Name: "alpha", LowHz: 8.0, HighHz: 13.0},
		{Name: "sigma", LowHz: 12.0, HighHz: 16.0},
		{Name: "beta", LowHz: 13.0, HighHz: 30.0},
		{Name: "gamma", LowHz: 30.0, HighHz: 80.0},
	}
}

// DefaultAnalysisConfig returns the standard configuration for a
// 500 Hz intracranial recording with 3 s epochs.
func DefaultAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		SampleRate:    500.0,
		RecordingType: RecordingLFP,
		Filter: FilterConfig{
			Enabled: true,
			Params:  filters.DefaultPipelineParams(),
		},
		Epoch: EpochConfig{
			DurationSec: 3.0,
			FillEnabled: true,
			Fill:        epoch.DefaultFillParams(),
		},
		Spectral: SpectralConfig{
			NPerSeg:          0,
			NOverlap:         -1,
			Window:           "hann",
			CoherenceNPerSeg: 2048,
		},
		Bands:   DefaultBands(),
		Workers: 0,
	}
}

// RecordingOptimizedConfig returns defaults tuned for a recording
// type. Scalp EEG carries less usable high-frequency content than an
// intracranial recording and gets a narrower passband and longer
// epochs.
func RecordingOptimizedConfig(rt RecordingType) *AnalysisConfig {
	cfg := DefaultAnalysisConfig()
	cfg.RecordingType = rt

	switch rt {
	case RecordingScalpEEG:
		cfg.Filter.Params.BandLow = 0.3
		cfg.Filter.Params.BandHigh = 45.0
		cfg.Epoch.DurationSec = 30.0

	case RecordingLFP:
		// Defaults already target LFP.

	default:
		// Unknown recordings keep the LFP defaults.
	}

	return cfg
}

// WelchParams maps the spectral settings onto the whole-signal Welch
// estimator.
func (c *AnalysisConfig) WelchParams() spectral.WelchParams {
	return spectral.WelchParams{
		NPerSeg:  c.Spectral.NPerSeg,
		NOverlap: c.Spectral.NOverlap,
		Window:   c.Spectral.Window,
	}
}

// CoherenceParams maps the spectral settings onto the coherence
// estimator.
func (c *AnalysisConfig) CoherenceParams() spectral.CoherenceParams {
	return spectral.CoherenceParams{
		NPerSeg:  c.Spectral.CoherenceNPerSeg,
		NOverlap: c.Spectral.NOverlap,
		Window:   c.Spectral.Window,
	}
}
