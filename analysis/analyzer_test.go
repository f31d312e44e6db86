package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlfp/sleepspec/algorithms/epoch"
	"github.com/openlfp/sleepspec/algorithms/spectral"
	"github.com/openlfp/sleepspec/analysis/config"
)

func uniformLabels(n int, value float64) []epoch.Label {
	labels := make([]epoch.Label, n)
	for i := range labels {
		labels[i] = epoch.NumericLabel(value)
	}
	return labels
}

func TestAnalyzerStatePathway(t *testing.T) {
	fs := 500.0
	signal := sine(10.0, fs, 1.0, 15000)
	labels := uniformLabels(15000, 0)

	cfg := config.DefaultAnalysisConfig()
	cfg.Filter.Enabled = false
	cfg.Bands = []spectral.Band{
		{Name: "low", LowHz: 8.0, HighHz: 12.0},
		{Name: "high", LowHz: 20.0, HighHz: 24.0},
	}

	report, err := NewAnalyzer(cfg).AnalyzeStates(signal, labels)
	require.NoError(t, err)

	assert.Equal(t, 10, report.TotalEpochs, "30 s of clean signal fills ten 3 s epochs")
	assert.Empty(t, report.Skipped)
	require.Len(t, report.States, 1)

	state := report.States["0"]
	require.NotNil(t, state)
	assert.Equal(t, 10, state.EpochCount)

	// The 10 Hz tone sits on bin 30 of the 1/3 Hz axis.
	peak := 0
	for i, v := range state.MeanPSD {
		if v > state.MeanPSD[peak] {
			peak = i
		}
	}
	assert.Equal(t, 30, peak)
	assert.InDelta(t, 10.0, report.Freqs[peak], 1e-12)

	assert.InDelta(t, 0.5, state.Bands["low"].Mean, 1e-6)
	assert.Less(t, state.Bands["high"].Mean, 1e-6)
	assert.InDelta(t, 0.5, state.Bands["low"].Median, 1e-6)
	assert.InDelta(t, 0.0, state.Bands["low"].Std, 1e-6, "identical epochs have no spread")
}

func TestAnalyzerStatePathwayWithFilters(t *testing.T) {
	fs := 500.0
	signal := sine(10.0, fs, 1.0, 15000)
	labels := uniformLabels(15000, 0)

	report, err := NewAnalyzer(nil).AnalyzeStates(signal, labels)
	require.NoError(t, err)

	require.Len(t, report.States, 1)
	state := report.States["0"]

	// The default chain (60 Hz notch, 0.5-120 Hz bandpass) passes the
	// tone; the spectrum stays alpha-dominated.
	peak := 0
	for i, v := range state.MeanPSD {
		if v > state.MeanPSD[peak] {
			peak = i
		}
	}
	assert.InDelta(t, 10.0, report.Freqs[peak], 1e-12)
	assert.Greater(t, state.Bands["alpha"].Mean, 0.25)
	assert.Less(t, state.Bands["beta"].Mean, 0.02)
	assert.Less(t, state.Bands["gamma"].Mean, 0.02)
}

func TestAnalyzerGapFillRepairsEpoch(t *testing.T) {
	fs := 500.0
	signal := sine(10.0, fs, 1.0, 5000)
	labels := uniformLabels(5000, 1)
	labels[2000] = epoch.MissingLabel()

	cfg := config.DefaultAnalysisConfig()
	cfg.Filter.Enabled = false

	report, err := NewAnalyzer(cfg).AnalyzeStates(signal, labels)
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalEpochs, "the one-sample gap is filled before segmentation")

	cfg = config.DefaultAnalysisConfig()
	cfg.Filter.Enabled = false
	cfg.Epoch.FillEnabled = false

	report, err = NewAnalyzer(cfg).AnalyzeStates(signal, labels)
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalEpochs, "without filling the gap costs its epoch")
}

func TestAnalyzerCoherencePathway(t *testing.T) {
	x := noise(42, 15000)
	y := make([]float64, len(x))
	for i := range x {
		y[i] = 2.0 * x[i]
	}
	labels := uniformLabels(15000, 3)

	cfg := config.DefaultAnalysisConfig()
	cfg.Filter.Enabled = false

	report, err := NewAnalyzer(cfg).AnalyzeCoherence(x, y, labels)
	require.NoError(t, err)

	assert.Equal(t, 10, report.PairedEpochs)
	assert.Equal(t, 1500, report.NPerSeg, "default segment length clamps to the epoch length")

	state := report.States["3"]
	require.NotNil(t, state)
	assert.Equal(t, 10, state.EpochCount)
	assert.Equal(t, 10, state.NumSegments)
	for i, c := range state.Coherence {
		assert.InDelta(t, 1.0, c, 1e-9, "bin %d", i)
	}
	assert.InDelta(t, 1.0, state.BandAverages["alpha"], 1e-9)
}

func TestAnalyzerCoherenceChannelMismatch(t *testing.T) {
	x := noise(1, 3000)
	_, err := NewAnalyzer(nil).AnalyzeCoherence(x, x[:2000], uniformLabels(3000, 1))
	assert.Error(t, err)
}

func TestAnalyzerTransitionsPathway(t *testing.T) {
	signal, labels := transitionFixture()

	cfg := config.DefaultAnalysisConfig()
	cfg.Filter.Enabled = false
	cfg.Bands = []spectral.Band{{Name: "low", LowHz: 8.0, HighHz: 12.0}}

	report, err := NewAnalyzer(cfg).AnalyzeTransitions(signal, labels, 2.0)
	require.NoError(t, err)

	assert.Equal(t, 1, report.TotalChanges)
	require.Contains(t, report.Summaries, "1->2")
	assert.InDelta(t, 0.5, report.Summaries["1->2"].MeanBefore["low"], 1e-6)
}

func TestAnalyzerWholeSignalEstimates(t *testing.T) {
	fs := 500.0
	signal := sine(10.0, fs, 1.0, 15000)

	analyzer := NewAnalyzer(nil)
	psd, err := analyzer.PSD(signal)
	require.NoError(t, err)
	assert.Equal(t, 256, psd.NPerSeg, "whole-signal default derives min(256, len/4)")

	peak := 0
	for i, v := range psd.PSD {
		if v > psd.PSD[peak] {
			peak = i
		}
	}
	assert.InDelta(t, 10.0, psd.Freqs[peak], fs/256.0, "peak lands within one bin of the tone")

	x := noise(7, 15000)
	y := make([]float64, len(x))
	for i := range x {
		y[i] = -x[i]
	}
	coh, err := analyzer.Coherence(x, y)
	require.NoError(t, err)
	assert.Equal(t, 2048, coh.NPerSeg)
	for i, c := range coh.Coherence {
		assert.InDelta(t, 1.0, c, 1e-9, "bin %d", i)
	}
}

func TestAnalyzerNilConfigUsesDefaults(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	cfg := analyzer.Config()
	require.NotNil(t, cfg)
	assert.Equal(t, 500.0, cfg.SampleRate)
	assert.Len(t, cfg.Bands, 6)
}
