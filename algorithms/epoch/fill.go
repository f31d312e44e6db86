package epoch

import (
	"fmt"
	"math"
)

// Forward-filling repairs short gaps in sparsely logged state columns,
// where a device reports the state only on change or at a coarse
// interval. Filling is forward-only: a gap inherits the last observed
// label before it, never a later one.

// FillParams bounds how far a label may be carried into a gap.
type FillParams struct {
	// GeneralLimitSec caps filling when the states on both sides of
	// the gap agree (or the gap runs to the end of the recording).
	GeneralLimitSec float64 `json:"general_limit_sec"`
	// TransitionLimitSec caps filling when the states flanking the gap
	// differ, allowing for the longer reporting latency around a state
	// transition.
	TransitionLimitSec float64 `json:"transition_limit_sec"`
}

// DefaultFillParams returns the standard fill limits of 15 s within a
// state and 21 s across a transition.
func DefaultFillParams() FillParams {
	return FillParams{
		GeneralLimitSec:    15.0,
		TransitionLimitSec: 21.0,
	}
}

// FillStats summarizes one forward-fill pass.
type FillStats struct {
	Gaps           int `json:"gaps"`            // Gaps encountered
	TransitionGaps int `json:"transition_gaps"` // Gaps flanked by differing states
	FilledSamples  int `json:"filled_samples"`  // Missing samples that received a label
	MissingBefore  int `json:"missing_before"`  // Missing samples on input
	MissingAfter   int `json:"missing_after"`   // Missing samples on output
}

// ForwardFillLabels fills missing labels forward from the last
// observed state, up to a per-gap limit: the transition limit when the
// observed labels on either side of the gap differ, the general limit
// otherwise. Samples beyond the limit stay missing, as do leading gaps
// with no state to carry. Returns a new slice; the input is not
// modified.
func ForwardFillLabels(labels []Label, fs float64, params FillParams) ([]Label, FillStats, error) {
	if fs <= 0 {
		return nil, FillStats{}, fmt.Errorf("sample rate must be positive, got %g", fs)
	}

	filled := make([]Label, len(labels))
	copy(filled, labels)

	var stats FillStats
	for _, l := range labels {
		if l.IsMissing() {
			stats.MissingBefore++
		}
	}
	stats.MissingAfter = stats.MissingBefore

	i := 0
	for i < len(filled) {
		if !filled[i].IsMissing() {
			i++
			continue
		}

		// Found a gap [gapStart, gapEnd).
		gapStart := i
		for i < len(filled) && filled[i].IsMissing() {
			i++
		}
		gapEnd := i
		stats.Gaps++

		if gapStart == 0 {
			// Nothing observed yet; a leading gap cannot be filled.
			continue
		}
		prev := filled[gapStart-1]

		limitSec := params.GeneralLimitSec
		if gapEnd < len(filled) && !prev.Equal(filled[gapEnd]) {
			limitSec = params.TransitionLimitSec
			stats.TransitionGaps++
		}

		limitSamples := int(math.Floor(limitSec * fs))
		fillLen := gapEnd - gapStart
		if fillLen > limitSamples {
			fillLen = limitSamples
		}

		for j := gapStart; j < gapStart+fillLen; j++ {
			filled[j] = prev
		}
		stats.FilledSamples += fillLen
		stats.MissingAfter -= fillLen
	}

	return filled, stats, nil
}
