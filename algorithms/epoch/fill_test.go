package epoch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests use fs = 1 Hz and small limits so samples and seconds line up.
var testFill = FillParams{GeneralLimitSec: 3, TransitionLimitSec: 5}

func TestForwardFillWithinState(t *testing.T) {
	labels := LabelsFromFloats([]float64{1, math.NaN(), math.NaN(), 1})

	filled, stats, err := ForwardFillLabels(labels, 1.0, testFill)
	require.NoError(t, err)

	for _, l := range filled {
		assert.True(t, l.Equal(NumericLabel(1)))
	}
	assert.Equal(t, 1, stats.Gaps)
	assert.Equal(t, 0, stats.TransitionGaps)
	assert.Equal(t, 2, stats.FilledSamples)
	assert.Equal(t, 2, stats.MissingBefore)
	assert.Equal(t, 0, stats.MissingAfter)
}

func TestForwardFillAcrossTransition(t *testing.T) {
	nan := math.NaN()
	labels := LabelsFromFloats([]float64{1, nan, nan, nan, nan, 2})

	filled, stats, err := ForwardFillLabels(labels, 1.0, testFill)
	require.NoError(t, err)

	// The gap spans 4 samples, beyond the general limit but within the
	// transition limit, and fills forward with the earlier state.
	for i := 0; i < 5; i++ {
		assert.True(t, filled[i].Equal(NumericLabel(1)), "sample %d", i)
	}
	assert.True(t, filled[5].Equal(NumericLabel(2)))
	assert.Equal(t, 1, stats.TransitionGaps)
	assert.Equal(t, 0, stats.MissingAfter)
}

func TestForwardFillGeneralLimitTruncates(t *testing.T) {
	nan := math.NaN()
	labels := LabelsFromFloats([]float64{1, nan, nan, nan, nan, 1})

	filled, stats, err := ForwardFillLabels(labels, 1.0, testFill)
	require.NoError(t, err)

	assert.True(t, filled[1].Equal(NumericLabel(1)))
	assert.True(t, filled[3].Equal(NumericLabel(1)))
	assert.True(t, filled[4].IsMissing(), "samples beyond the limit stay missing")
	assert.Equal(t, 3, stats.FilledSamples)
	assert.Equal(t, 1, stats.MissingAfter)
}

func TestForwardFillTransitionLimitTruncates(t *testing.T) {
	nan := math.NaN()
	labels := LabelsFromFloats([]float64{1, nan, nan, nan, nan, nan, nan, 2})

	filled, stats, err := ForwardFillLabels(labels, 1.0, testFill)
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		assert.True(t, filled[i].Equal(NumericLabel(1)), "sample %d", i)
	}
	assert.True(t, filled[6].IsMissing())
	assert.True(t, filled[7].Equal(NumericLabel(2)))
	assert.Equal(t, 1, stats.TransitionGaps)
	assert.Equal(t, 5, stats.FilledSamples)
}

func TestForwardFillLeadingGapUnfilled(t *testing.T) {
	nan := math.NaN()
	labels := LabelsFromFloats([]float64{nan, nan, 1, 1})

	filled, stats, err := ForwardFillLabels(labels, 1.0, testFill)
	require.NoError(t, err)

	assert.True(t, filled[0].IsMissing())
	assert.True(t, filled[1].IsMissing())
	assert.Equal(t, 1, stats.Gaps)
	assert.Equal(t, 0, stats.FilledSamples)
	assert.Equal(t, 2, stats.MissingAfter)
}

func TestForwardFillTrailingGapUsesGeneralLimit(t *testing.T) {
	nan := math.NaN()
	labels := LabelsFromFloats([]float64{1, nan, nan, nan, nan})

	filled, stats, err := ForwardFillLabels(labels, 1.0, testFill)
	require.NoError(t, err)

	// No later state to compare against, so the general limit applies.
	assert.True(t, filled[3].Equal(NumericLabel(1)))
	assert.True(t, filled[4].IsMissing())
	assert.Equal(t, 0, stats.TransitionGaps)
	assert.Equal(t, 3, stats.FilledSamples)
}

func TestForwardFillFractionalLimit(t *testing.T) {
	nan := math.NaN()
	labels := LabelsFromFloats([]float64{1, nan, nan, nan, 1})

	params := FillParams{GeneralLimitSec: 2.5, TransitionLimitSec: 5}
	filled, stats, err := ForwardFillLabels(labels, 1.0, params)
	require.NoError(t, err)

	// floor(2.5 s * 1 Hz) = 2 samples.
	assert.True(t, filled[2].Equal(NumericLabel(1)))
	assert.True(t, filled[3].IsMissing())
	assert.Equal(t, 2, stats.FilledSamples)
}

func TestForwardFillDoesNotMutateInput(t *testing.T) {
	labels := LabelsFromFloats([]float64{1, math.NaN(), 1})

	_, _, err := ForwardFillLabels(labels, 1.0, testFill)
	require.NoError(t, err)

	assert.True(t, labels[1].IsMissing(), "input slice must stay untouched")
}

func TestForwardFillNoGaps(t *testing.T) {
	labels := LabelsFromFloats([]float64{1, 1, 2, 2})

	filled, stats, err := ForwardFillLabels(labels, 1.0, testFill)
	require.NoError(t, err)

	assert.Len(t, filled, 4)
	assert.Equal(t, FillStats{}, stats)
}

func TestForwardFillEmptyInput(t *testing.T) {
	filled, stats, err := ForwardFillLabels(nil, 1.0, testFill)
	require.NoError(t, err)
	assert.Empty(t, filled)
	assert.Equal(t, FillStats{}, stats)
}

func TestForwardFillInvalidSampleRate(t *testing.T) {
	_, _, err := ForwardFillLabels(LabelsFromFloats([]float64{1}), 0, testFill)
	assert.Error(t, err)
}

func TestDefaultFillParams(t *testing.T) {
	params := DefaultFillParams()
	assert.Equal(t, 15.0, params.GeneralLimitSec)
	assert.Equal(t, 21.0, params.TransitionLimitSec)
}
