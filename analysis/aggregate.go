package analysis

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"

	"github.com/openlfp/sleepspec/algorithms/common"
	"github.com/openlfp/sleepspec/algorithms/epoch"
	"github.com/openlfp/sleepspec/algorithms/spectral"
)

// BandSummary describes the distribution of one band's linear power
// across the epochs of a state. MeanDB is the mean converted to
// decibels, not the mean of per-epoch decibel values.
type BandSummary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	MeanDB float64 `json:"mean_db"`
}

// StateSummary aggregates all epochs carrying one state label.
type StateSummary struct {
	Label      epoch.Label            `json:"label"`
	EpochCount int                    `json:"epoch_count"`
	MeanPSD    []float64              `json:"mean_psd"`
	Bands      map[string]BandSummary `json:"bands"`
}

// StateReport is the aggregated outcome of a per-epoch batch, grouped
// by state label. States is keyed by the label's string form. The
// Skipped entries of the batch carry through for diagnostics.
type StateReport struct {
	SampleRate  float64                  `json:"sample_rate"`
	Freqs       []float64                `json:"freqs"`
	States      map[string]*StateSummary `json:"states"`
	Skipped     []SkippedEpoch           `json:"skipped,omitempty"`
	TotalEpochs int                      `json:"total_epochs"`
}

// Empty reports whether no epoch contributed to the report.
func (r *StateReport) Empty() bool {
	return r.TotalEpochs == 0
}

// AggregateByState groups the batch's epochs by their state label and
// summarizes each group: epoch count, mean PSD curve on the shared
// frequency axis, and mean/median/std of every band's linear power.
// An empty batch aggregates to an empty report.
func AggregateByState(batch *BatchResult, bands []spectral.Band) (*StateReport, error) {
	report := &StateReport{
		SampleRate:  batch.SampleRate,
		Freqs:       batch.Freqs,
		States:      make(map[string]*StateSummary),
		Skipped:     batch.Skipped,
		TotalEpochs: len(batch.Epochs),
	}
	if batch.Empty() {
		return report, nil
	}

	rows, err := ComputeBandTable(batch, bands)
	if err != nil {
		return nil, err
	}

	type stateAccum struct {
		label  epoch.Label
		count  int
		psdSum []float64
		bands  map[string][]float64
	}

	accums := make(map[string]*stateAccum)
	for i, ep := range batch.Epochs {
		key := ep.Label.String()
		acc := accums[key]
		if acc == nil {
			acc = &stateAccum{
				label:  ep.Label,
				psdSum: make([]float64, len(ep.PSD)),
				bands:  make(map[string][]float64, len(bands)),
			}
			accums[key] = acc
		}

		acc.count++
		floats.Add(acc.psdSum, ep.PSD)
		for name, power := range rows[i].Powers {
			acc.bands[name] = append(acc.bands[name], power.Linear)
		}
	}

	for key, acc := range accums {
		floats.Scale(1.0/float64(acc.count), acc.psdSum)

		summaries := make(map[string]BandSummary, len(acc.bands))
		for name, values := range acc.bands {
			median, err := stats.Median(values)
			if err != nil {
				return nil, fmt.Errorf("median for band %q in state %q: %w", name, key, err)
			}
			mean := common.Mean(values)
			summaries[name] = BandSummary{
				Mean:   mean,
				Median: median,
				Std:    common.StandardDeviation(values),
				MeanDB: common.LinearDB(mean),
			}
		}

		report.States[key] = &StateSummary{
			Label:      acc.label,
			EpochCount: acc.count,
			MeanPSD:    acc.psdSum,
			Bands:      summaries,
		}
	}

	return report, nil
}
