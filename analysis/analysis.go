// Package analysis composes the filtering, segmentation and spectral
// estimation building blocks into the pathways a sleep recording
// actually runs through: state-grouped PSD and band power,
// state-conditioned coherence between channel pairs, and band power
// around state transitions.
package analysis

import (
	"fmt"

	"github.com/openlfp/sleepspec/algorithms/epoch"
	"github.com/openlfp/sleepspec/algorithms/filters"
	"github.com/openlfp/sleepspec/algorithms/spectral"
	"github.com/openlfp/sleepspec/analysis/config"
	"github.com/openlfp/sleepspec/logging"
)

// Analyzer runs the composed pathways under one explicit
// configuration. Nothing is read from globals; two analyzers with
// different configs can run side by side.
type Analyzer struct {
	config *config.AnalysisConfig
	logger logging.Logger
}

// NewAnalyzer creates an analyzer; a nil config selects the defaults.
func NewAnalyzer(cfg *config.AnalysisConfig) *Analyzer {
	if cfg == nil {
		cfg = config.DefaultAnalysisConfig()
	}

	return &Analyzer{
		config: cfg,
		logger: logging.WithFields(logging.Fields{
			"component": "analyzer",
		}),
	}
}

// Config returns the analyzer's configuration.
func (a *Analyzer) Config() *config.AnalysisConfig {
	return a.config
}

// AnalyzeStates runs the full single-channel pathway: preprocessing,
// segmentation into labeled epochs, per-epoch Welch PSD, and
// state-grouped aggregation over the configured band table.
func (a *Analyzer) AnalyzeStates(signal []float64, labels []epoch.Label) (*StateReport, error) {
	cfg := a.config
	a.logger.Debug("starting state analysis", logging.Fields{
		"samples":     len(signal),
		"sample_rate": cfg.SampleRate,
		"epoch_sec":   cfg.Epoch.DurationSec,
	})

	labels, err := a.prepareLabels(labels)
	if err != nil {
		return nil, err
	}
	signal = a.prepareSignal(signal)

	epochs, err := epoch.Segment(signal, labels, cfg.SampleRate, cfg.Epoch.DurationSec)
	if err != nil {
		return nil, err
	}

	batch, err := NewBatchEstimator(cfg.WelchParams(), cfg.Workers).Compute(epochs, cfg.SampleRate)
	if err != nil {
		return nil, err
	}

	report, err := AggregateByState(batch, cfg.Bands)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("state analysis completed", logging.Fields{
		"epochs":  report.TotalEpochs,
		"states":  len(report.States),
		"skipped": len(report.Skipped),
	})
	return report, nil
}

// AnalyzeCoherence runs the two-channel pathway: both channels are
// preprocessed and segmented against the shared label track, epochs
// surviving on both channels are paired, and coherence is pooled per
// state.
func (a *Analyzer) AnalyzeCoherence(x, y []float64, labels []epoch.Label) (*CoherenceReport, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("channel lengths differ: %d vs %d", len(x), len(y))
	}

	cfg := a.config
	a.logger.Debug("starting coherence analysis", logging.Fields{
		"samples":     len(x),
		"sample_rate": cfg.SampleRate,
		"epoch_sec":   cfg.Epoch.DurationSec,
	})

	labels, err := a.prepareLabels(labels)
	if err != nil {
		return nil, err
	}
	x = a.prepareSignal(x)
	y = a.prepareSignal(y)

	xEpochs, err := epoch.Segment(x, labels, cfg.SampleRate, cfg.Epoch.DurationSec)
	if err != nil {
		return nil, err
	}
	yEpochs, err := epoch.Segment(y, labels, cfg.SampleRate, cfg.Epoch.DurationSec)
	if err != nil {
		return nil, err
	}

	report, err := AggregateCoherenceByState(xEpochs, yEpochs, cfg.SampleRate, cfg.CoherenceParams(), cfg.Bands)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("coherence analysis completed", logging.Fields{
		"paired_epochs": report.PairedEpochs,
		"states":        len(report.States),
	})
	return report, nil
}

// AnalyzeTransitions runs the transition pathway on a preprocessed
// copy of the inputs: windowSec seconds of band power on each side of
// every clean state change.
func (a *Analyzer) AnalyzeTransitions(signal []float64, labels []epoch.Label, windowSec float64) (*TransitionReport, error) {
	cfg := a.config

	labels, err := a.prepareLabels(labels)
	if err != nil {
		return nil, err
	}
	signal = a.prepareSignal(signal)

	return AnalyzeStateTransitions(signal, labels, cfg.SampleRate, windowSec, cfg.Bands, cfg.WelchParams())
}

// PSD estimates the whole-signal power spectral density with the
// configured Welch parameters. The signal is taken as given;
// AnalyzeStates owns preprocessing.
func (a *Analyzer) PSD(signal []float64) (*spectral.WelchResult, error) {
	return spectral.NewWelchWithParams(a.config.WelchParams()).Compute(signal, a.config.SampleRate)
}

// Coherence estimates whole-signal magnitude-squared coherence between
// two channels with the configured parameters.
func (a *Analyzer) Coherence(x, y []float64) (*spectral.CoherenceResult, error) {
	return spectral.NewCoherenceWithParams(a.config.CoherenceParams()).Compute(x, y, a.config.SampleRate)
}

// prepareSignal applies the configured filter chain.
func (a *Analyzer) prepareSignal(signal []float64) []float64 {
	if !a.config.Filter.Enabled {
		return signal
	}
	return filters.ApplyFiltersWithParams(signal, a.config.SampleRate, a.config.Filter.Params)
}

// prepareLabels forward-fills short label gaps when configured.
func (a *Analyzer) prepareLabels(labels []epoch.Label) ([]epoch.Label, error) {
	if !a.config.Epoch.FillEnabled {
		return labels, nil
	}

	filled, stats, err := epoch.ForwardFillLabels(labels, a.config.SampleRate, a.config.Epoch.Fill)
	if err != nil {
		return nil, err
	}
	if stats.FilledSamples > 0 {
		a.logger.Debug("forward-filled label gaps", logging.Fields{
			"gaps":           stats.Gaps,
			"filled_samples": stats.FilledSamples,
			"missing_after":  stats.MissingAfter,
		})
	}
	return filled, nil
}
