package epoch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ramp returns 0, 1, 2, ... n-1 as float64 samples.
func ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

func uniformLabels(n int, value float64) []Label {
	out := make([]Label, n)
	for i := range out {
		out[i] = NumericLabel(value)
	}
	return out
}

func TestSegmentBasic(t *testing.T) {
	signal := ramp(9)
	labels := uniformLabels(9, 1)

	epochs, err := Segment(signal, labels, 1.0, 3.0)
	require.NoError(t, err)
	require.Len(t, epochs, 3)

	for k, e := range epochs {
		assert.Equal(t, k, e.Index)
		assert.Equal(t, k*3, e.Start)
		assert.Len(t, e.Signal, 3)
		assert.Equal(t, float64(k*3), e.Signal[0])
		assert.True(t, e.Label.Equal(NumericLabel(1)))
	}
}

func TestSegmentDropsRemainder(t *testing.T) {
	signal := ramp(10)
	labels := uniformLabels(10, 1)

	epochs, err := Segment(signal, labels, 1.0, 3.0)
	require.NoError(t, err)
	assert.Len(t, epochs, 3, "trailing partial window is dropped")
}

func TestSegmentShorterThanEpoch(t *testing.T) {
	signal := ramp(2)
	labels := uniformLabels(2, 1)

	epochs, err := Segment(signal, labels, 1.0, 3.0)
	require.NoError(t, err)
	assert.NotNil(t, epochs)
	assert.Empty(t, epochs)
}

func TestSegmentRejectsTransitionWindow(t *testing.T) {
	signal := ramp(9)
	labels := []Label{
		NumericLabel(1), NumericLabel(1), NumericLabel(1),
		NumericLabel(1), NumericLabel(2), NumericLabel(2),
		NumericLabel(2), NumericLabel(2), NumericLabel(2),
	}

	epochs, err := Segment(signal, labels, 1.0, 3.0)
	require.NoError(t, err)
	require.Len(t, epochs, 2, "only the window containing the transition is invalid")

	assert.Equal(t, 0, epochs[0].Index)
	assert.True(t, epochs[0].Label.Equal(NumericLabel(1)))
	assert.Equal(t, 2, epochs[1].Index)
	assert.Equal(t, 6, epochs[1].Start)
	assert.True(t, epochs[1].Label.Equal(NumericLabel(2)))
}

func TestSegmentRejectsMissingLabels(t *testing.T) {
	signal := ramp(6)
	labels := uniformLabels(6, 1)
	labels[4] = MissingLabel()

	epochs, err := Segment(signal, labels, 1.0, 3.0)
	require.NoError(t, err)
	require.Len(t, epochs, 1)
	assert.Equal(t, 0, epochs[0].Index)
}

func TestSegmentRejectsNaNSignal(t *testing.T) {
	signal := ramp(6)
	signal[1] = math.NaN()
	labels := uniformLabels(6, 1)

	epochs, err := Segment(signal, labels, 1.0, 3.0)
	require.NoError(t, err)
	require.Len(t, epochs, 1)
	assert.Equal(t, 1, epochs[0].Index)
	assert.Equal(t, 3, epochs[0].Start)
}

func TestSegmentTarget(t *testing.T) {
	signal := ramp(9)
	labels := []Label{
		NumericLabel(1), NumericLabel(1), NumericLabel(1),
		NumericLabel(2), NumericLabel(2), NumericLabel(2),
		NumericLabel(1), NumericLabel(1), NumericLabel(1),
	}

	epochs, err := SegmentTarget(signal, labels, 1.0, 3.0, NumericLabel(2))
	require.NoError(t, err)
	require.Len(t, epochs, 1)
	assert.Equal(t, 1, epochs[0].Index)
	assert.True(t, epochs[0].Label.Equal(NumericLabel(2)))
}

func TestSegmentTargetString(t *testing.T) {
	signal := ramp(6)
	labels := []Label{
		StringLabel("N2"), StringLabel("N2"), StringLabel("N2"),
		StringLabel("REM"), StringLabel("REM"), StringLabel("REM"),
	}

	epochs, err := SegmentTarget(signal, labels, 1.0, 3.0, StringLabel("REM"))
	require.NoError(t, err)
	require.Len(t, epochs, 1)
	assert.Equal(t, 3, epochs[0].Start)
}

func TestSegmentTargetMissingMatchesNothing(t *testing.T) {
	signal := ramp(6)
	labels := uniformLabels(6, 1)

	epochs, err := SegmentTarget(signal, labels, 1.0, 3.0, MissingLabel())
	require.NoError(t, err)
	assert.Empty(t, epochs)
}

func TestSegmentCopiesSignal(t *testing.T) {
	signal := ramp(3)
	labels := uniformLabels(3, 1)

	epochs, err := Segment(signal, labels, 1.0, 3.0)
	require.NoError(t, err)
	require.Len(t, epochs, 1)

	signal[0] = 99.0
	assert.Equal(t, 0.0, epochs[0].Signal[0], "epochs must not alias the caller's buffer")
}

func TestSegmentStructuralErrors(t *testing.T) {
	signal := ramp(6)

	_, err := Segment(signal, uniformLabels(5, 1), 1.0, 3.0)
	assert.Error(t, err, "length mismatch")

	_, err = Segment(signal, uniformLabels(6, 1), 0, 3.0)
	assert.Error(t, err, "non-positive sample rate")

	_, err = Segment(signal, uniformLabels(6, 1), 1.0, 0.4)
	assert.Error(t, err, "epoch floors to zero samples")
}

func TestEpochSamplesFloors(t *testing.T) {
	assert.Equal(t, 1500, EpochSamples(3.0, 500.0))
	assert.Equal(t, 7, EpochSamples(2.5, 3.0))
	assert.Equal(t, 0, EpochSamples(0.9, 1.0))
}

func TestSegmentFractionalEpochLength(t *testing.T) {
	// 2.5 s at 3 Hz floors to 7 samples per epoch.
	signal := ramp(15)
	labels := uniformLabels(15, 1)

	epochs, err := Segment(signal, labels, 3.0, 2.5)
	require.NoError(t, err)
	require.Len(t, epochs, 2)
	assert.Len(t, epochs[0].Signal, 7)
	assert.Equal(t, 7, epochs[1].Start)
}
