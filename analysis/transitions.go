package analysis

import (
	"fmt"
	"math"

	"github.com/openlfp/sleepspec/algorithms/common"
	"github.com/openlfp/sleepspec/algorithms/epoch"
	"github.com/openlfp/sleepspec/algorithms/spectral"
	"github.com/openlfp/sleepspec/logging"
)

// LabelChange marks one change between two observed labels. Index is
// the first sample carrying the new label. Changes into or out of a
// missing stretch do not count; gaps are the fill step's problem.
type LabelChange struct {
	Index int         `json:"index"`
	From  epoch.Label `json:"from"`
	To    epoch.Label `json:"to"`
}

// FindLabelChanges scans the label track for observed-to-observed
// changes.
func FindLabelChanges(labels []epoch.Label) []LabelChange {
	var changes []LabelChange
	for i := 1; i < len(labels); i++ {
		prev, cur := labels[i-1], labels[i]
		if prev.IsMissing() || cur.IsMissing() {
			continue
		}
		if !prev.Equal(cur) {
			changes = append(changes, LabelChange{Index: i, From: prev, To: cur})
		}
	}
	return changes
}

// Transition is one analyzed state change: band powers in the window
// immediately before and the window immediately after the change.
type Transition struct {
	Index  int                           `json:"index"`
	From   epoch.Label                   `json:"from"`
	To     epoch.Label                   `json:"to"`
	Before map[string]spectral.BandPower `json:"before"`
	After  map[string]spectral.BandPower `json:"after"`
}

// TransitionSummary aggregates every analyzed transition of one
// (from, to) state pair: mean linear band power on each side.
type TransitionSummary struct {
	From       epoch.Label        `json:"from"`
	To         epoch.Label        `json:"to"`
	Count      int                `json:"count"`
	MeanBefore map[string]float64 `json:"mean_before"`
	MeanAfter  map[string]float64 `json:"mean_after"`
}

// TransitionReport holds the per-transition band powers and the
// per-pair summaries. Summaries is keyed "from->to". TotalChanges
// counts every observed label change; Transitions keeps only those
// whose flanking windows were homogeneous, in range and NaN-free.
type TransitionReport struct {
	WindowSec    float64                       `json:"window_sec"`
	TotalChanges int                           `json:"total_changes"`
	Transitions  []Transition                  `json:"transitions"`
	Summaries    map[string]*TransitionSummary `json:"summaries"`
}

// AnalyzeStateTransitions locates label changes and compares band
// power across each one: windowSec seconds of signal before the change
// against windowSec seconds after. A transition is analyzed only when
// both windows fit inside the recording, carry exactly the flanking
// state's label throughout, and contain no NaN; everything else is
// counted but left out.
func AnalyzeStateTransitions(signal []float64, labels []epoch.Label, fs, windowSec float64, bands []spectral.Band, params spectral.WelchParams) (*TransitionReport, error) {
	if len(signal) != len(labels) {
		return nil, fmt.Errorf("signal and label lengths differ: %d vs %d", len(signal), len(labels))
	}
	if fs <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %g", fs)
	}

	windowSamples := int(math.Floor(windowSec * fs))
	if windowSamples <= 0 {
		return nil, fmt.Errorf("window of %g s at %g Hz contains no samples", windowSec, fs)
	}

	changes := FindLabelChanges(labels)
	report := &TransitionReport{
		WindowSec:    windowSec,
		TotalChanges: len(changes),
		Summaries:    make(map[string]*TransitionSummary),
	}
	if len(changes) == 0 {
		return report, nil
	}

	if params.NPerSeg <= 0 {
		params.NPerSeg = windowSamples
	}
	if params.NPerSeg > windowSamples {
		logging.Warn("segment length exceeds transition window, using window length", logging.Fields{
			"nperseg":        params.NPerSeg,
			"window_samples": windowSamples,
		})
		params.NPerSeg = windowSamples
	}
	estimator := spectral.NewWelchWithParams(params)

	windowPowers := func(window []float64) (map[string]spectral.BandPower, error) {
		res, err := estimator.Compute(window, fs)
		if err != nil {
			return nil, err
		}
		return spectral.ComputeBandPowers(res.PSD, res.Freqs, bands)
	}

	for _, change := range changes {
		lo := change.Index - windowSamples
		hi := change.Index + windowSamples
		if lo < 0 || hi > len(signal) {
			continue
		}
		if !windowCarriesLabel(labels[lo:change.Index], change.From) {
			continue
		}
		if !windowCarriesLabel(labels[change.Index:hi], change.To) {
			continue
		}
		before := signal[lo:change.Index]
		after := signal[change.Index:hi]
		if common.HasNaN(before) || common.HasNaN(after) {
			continue
		}

		beforePowers, err := windowPowers(before)
		if err != nil {
			logging.Warn("skipping transition, estimator failed", logging.Fields{
				"index":  change.Index,
				"reason": err.Error(),
			})
			continue
		}
		afterPowers, err := windowPowers(after)
		if err != nil {
			logging.Warn("skipping transition, estimator failed", logging.Fields{
				"index":  change.Index,
				"reason": err.Error(),
			})
			continue
		}

		report.Transitions = append(report.Transitions, Transition{
			Index:  change.Index,
			From:   change.From,
			To:     change.To,
			Before: beforePowers,
			After:  afterPowers,
		})

		key := change.From.String() + "->" + change.To.String()
		summary := report.Summaries[key]
		if summary == nil {
			summary = &TransitionSummary{
				From:       change.From,
				To:         change.To,
				MeanBefore: make(map[string]float64, len(bands)),
				MeanAfter:  make(map[string]float64, len(bands)),
			}
			report.Summaries[key] = summary
		}
		summary.Count++
		for name, power := range beforePowers {
			summary.MeanBefore[name] += power.Linear
		}
		for name, power := range afterPowers {
			summary.MeanAfter[name] += power.Linear
		}
	}

	for _, summary := range report.Summaries {
		for name := range summary.MeanBefore {
			summary.MeanBefore[name] /= float64(summary.Count)
		}
		for name := range summary.MeanAfter {
			summary.MeanAfter[name] /= float64(summary.Count)
		}
	}

	return report, nil
}

// windowCarriesLabel reports whether every label in the window equals
// want. Missing labels never match.
func windowCarriesLabel(labels []epoch.Label, want epoch.Label) bool {
	for _, l := range labels {
		if !want.Equal(l) {
			return false
		}
	}
	return true
}
