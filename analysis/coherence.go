package analysis

import (
	"fmt"

	"github.com/openlfp/sleepspec/algorithms/epoch"
	"github.com/openlfp/sleepspec/algorithms/spectral"
	"github.com/openlfp/sleepspec/logging"
)

// StateCoherence is the pooled coherence estimate for one state: the
// cross- and auto-spectra of every segment of every paired epoch of
// that state are averaged before the ratio is taken. Pooling keeps the
// estimate honest where a single epoch would be too short to average.
type StateCoherence struct {
	Label        epoch.Label        `json:"label"`
	EpochCount   int                `json:"epoch_count"`
	NumSegments  int                `json:"num_segments"`
	Coherence    []float64          `json:"coherence"`
	BandAverages map[string]float64 `json:"band_averages"`
}

// CoherenceReport holds state-grouped coherence between two channels.
// States is keyed by the label's string form.
type CoherenceReport struct {
	SampleRate   float64                    `json:"sample_rate"`
	Freqs        []float64                  `json:"freqs"`
	NPerSeg      int                        `json:"nperseg"`
	States       map[string]*StateCoherence `json:"states"`
	PairedEpochs int                        `json:"paired_epochs"`
}

// Empty reports whether no epoch pair contributed to the report.
func (r *CoherenceReport) Empty() bool {
	return r.PairedEpochs == 0
}

// AggregateCoherenceByState pairs the two channels' epochs by their
// originating index, groups the pairs by state label, and estimates
// each state's coherence from the pooled segments of its pairs. An
// epoch retained on only one channel (NaN runs differ between
// channels) is left out. No pairs at all yields an empty report.
func AggregateCoherenceByState(xEpochs, yEpochs []epoch.Epoch, fs float64, params spectral.CoherenceParams, bands []spectral.Band) (*CoherenceReport, error) {
	if fs <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %g", fs)
	}

	type pair struct {
		x, y epoch.Epoch
	}

	// Both slices come out of segmentation ordered by index.
	var pairs []pair
	i, j := 0, 0
	for i < len(xEpochs) && j < len(yEpochs) {
		switch {
		case xEpochs[i].Index < yEpochs[j].Index:
			i++
		case xEpochs[i].Index > yEpochs[j].Index:
			j++
		default:
			if xEpochs[i].Label.Equal(yEpochs[j].Label) {
				pairs = append(pairs, pair{x: xEpochs[i], y: yEpochs[j]})
			}
			i++
			j++
		}
	}

	report := &CoherenceReport{
		SampleRate:   fs,
		States:       make(map[string]*StateCoherence),
		PairedEpochs: len(pairs),
	}
	if len(pairs) == 0 {
		return report, nil
	}

	epochLen := len(pairs[0].x.Signal)
	if params.NPerSeg <= 0 {
		params.NPerSeg = 2048
	}
	if params.NPerSeg > epochLen {
		logging.Warn("coherence segment length exceeds epoch length, using epoch length", logging.Fields{
			"nperseg":   params.NPerSeg,
			"epoch_len": epochLen,
		})
		params.NPerSeg = epochLen
	}
	report.NPerSeg = params.NPerSeg

	type stateAccum struct {
		label epoch.Label
		count int
		cross *spectral.CrossSpectrum
	}

	accums := make(map[string]*stateAccum)
	for _, p := range pairs {
		key := p.x.Label.String()
		acc := accums[key]
		if acc == nil {
			cross, err := spectral.NewCrossSpectrum(fs, params)
			if err != nil {
				return nil, err
			}
			acc = &stateAccum{label: p.x.Label, cross: cross}
			accums[key] = acc
		}

		if _, err := acc.cross.Accumulate(p.x.Signal, p.y.Signal); err != nil {
			return nil, fmt.Errorf("epoch %d: %w", p.x.Index, err)
		}
		acc.count++
	}

	for key, acc := range accums {
		result := acc.cross.Coherence()
		if report.Freqs == nil {
			report.Freqs = result.Freqs
		}

		averages := make(map[string]float64, len(bands))
		for _, band := range bands {
			mean, ok := spectral.BandMean(result.Coherence, result.Freqs, band)
			if !ok {
				logging.Warn("no frequency bins inside band, recording zero coherence", logging.Fields{
					"band":    band.Name,
					"low_hz":  band.LowHz,
					"high_hz": band.HighHz,
					"state":   key,
				})
			}
			averages[band.Name] = mean
		}

		report.States[key] = &StateCoherence{
			Label:        acc.label,
			EpochCount:   acc.count,
			NumSegments:  result.NumSegments,
			Coherence:    result.Coherence,
			BandAverages: averages,
		}
	}

	return report, nil
}
