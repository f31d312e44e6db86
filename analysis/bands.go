package analysis

import (
	"fmt"

	"github.com/openlfp/sleepspec/algorithms/epoch"
	"github.com/openlfp/sleepspec/algorithms/spectral"
)

// EpochBandPowers is one row of the per-epoch band table: the
// integrated power of each named band for a single epoch.
type EpochBandPowers struct {
	Index  int                           `json:"index"`
	Label  epoch.Label                   `json:"label"`
	Powers map[string]spectral.BandPower `json:"powers"`
}

// ComputeBandTable integrates every epoch's PSD over the band table.
// Rows align one-to-one with batch.Epochs.
func ComputeBandTable(batch *BatchResult, bands []spectral.Band) ([]EpochBandPowers, error) {
	rows := make([]EpochBandPowers, 0, len(batch.Epochs))
	for _, ep := range batch.Epochs {
		powers, err := spectral.ComputeBandPowers(ep.PSD, batch.Freqs, bands)
		if err != nil {
			return nil, fmt.Errorf("epoch %d: %w", ep.Index, err)
		}
		rows = append(rows, EpochBandPowers{
			Index:  ep.Index,
			Label:  ep.Label,
			Powers: powers,
		})
	}
	return rows, nil
}
