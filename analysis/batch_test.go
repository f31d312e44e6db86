package analysis

import (
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlfp/sleepspec/algorithms/epoch"
	"github.com/openlfp/sleepspec/algorithms/spectral"
	"github.com/openlfp/sleepspec/logging"
)

func TestMain(m *testing.M) {
	logging.SetGlobalLogger(&logging.NoOpLogger{})
	os.Exit(m.Run())
}

// sine returns n samples of amp*sin(2*pi*freq*t) at rate fs.
func sine(freq, fs, amp float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2.0*math.Pi*freq*float64(i)/fs)
	}
	return out
}

// sineEpochs builds count epochs of a 10 Hz unit sine, 1500 samples
// each, all carrying the same label.
func sineEpochs(count int, label epoch.Label) []epoch.Epoch {
	epochs := make([]epoch.Epoch, count)
	for i := range epochs {
		epochs[i] = epoch.Epoch{
			Index:  i,
			Start:  i * 1500,
			Signal: sine(10.0, 500.0, 1.0, 1500),
			Label:  label,
		}
	}
	return epochs
}

func TestBatchComputeBasic(t *testing.T) {
	fs := 500.0
	epochs := sineEpochs(4, epoch.NumericLabel(1))

	batch, err := NewBatchEstimator(spectral.WelchParams{}, 1).Compute(epochs, fs)
	require.NoError(t, err)

	assert.False(t, batch.Empty())
	assert.Equal(t, 1500, batch.NPerSeg)
	assert.Empty(t, batch.Skipped)
	require.Len(t, batch.Epochs, 4)
	require.Len(t, batch.Freqs, 751)

	// 10 Hz lands on bin 30 with a 1/3 Hz resolution.
	assert.InDelta(t, 10.0, batch.Freqs[30], 1e-12)
	for k, ep := range batch.Epochs {
		assert.Equal(t, k, ep.Index)
		assert.Equal(t, k*1500, ep.Start)
		require.Len(t, ep.PSD, 751)
		assert.InDelta(t, 1.0, ep.PSD[30], 1e-6, "epoch %d peak", k)
	}
}

func TestBatchComputeEmptyEpochs(t *testing.T) {
	batch, err := NewBatchEstimator(spectral.WelchParams{}, 1).Compute(nil, 500.0)
	require.NoError(t, err)
	assert.True(t, batch.Empty())
	assert.Nil(t, batch.Freqs)
}

func TestBatchParallelMatchesSerial(t *testing.T) {
	fs := 500.0
	epochs := sineEpochs(32, epoch.NumericLabel(2))

	serial, err := NewBatchEstimator(spectral.WelchParams{}, 1).Compute(epochs, fs)
	require.NoError(t, err)
	parallel, err := NewBatchEstimator(spectral.WelchParams{}, 4).Compute(epochs, fs)
	require.NoError(t, err)

	require.Len(t, parallel.Epochs, len(serial.Epochs))
	for k := range serial.Epochs {
		assert.Equal(t, serial.Epochs[k].Index, parallel.Epochs[k].Index)
		assert.Equal(t, serial.Epochs[k].PSD, parallel.Epochs[k].PSD, "epoch %d", k)
	}
}

func TestBatchSkipsMismatchedEpochLength(t *testing.T) {
	fs := 500.0
	epochs := sineEpochs(3, epoch.NumericLabel(1))
	epochs[1].Signal = epochs[1].Signal[:700]

	batch, err := NewBatchEstimator(spectral.WelchParams{}, 1).Compute(epochs, fs)
	require.NoError(t, err)

	require.Len(t, batch.Epochs, 2)
	assert.Equal(t, 0, batch.Epochs[0].Index)
	assert.Equal(t, 2, batch.Epochs[1].Index)

	require.Len(t, batch.Skipped, 1)
	assert.Equal(t, 1, batch.Skipped[0].Index)
	assert.Contains(t, batch.Skipped[0].Reason, "differs from batch length")
}

func TestBatchClampsSegmentLength(t *testing.T) {
	fs := 500.0
	epochs := sineEpochs(2, epoch.NumericLabel(1))

	batch, err := NewBatchEstimator(spectral.WelchParams{NPerSeg: 4096}, 1).Compute(epochs, fs)
	require.NoError(t, err)
	assert.Equal(t, 1500, batch.NPerSeg)
	assert.Len(t, batch.Epochs, 2)
}

func TestBatchExplicitSegmentLength(t *testing.T) {
	fs := 500.0
	epochs := sineEpochs(2, epoch.NumericLabel(1))

	// 500-sample segments inside each 1500-sample epoch: 1 Hz bins.
	batch, err := NewBatchEstimator(spectral.WelchParams{NPerSeg: 500}, 1).Compute(epochs, fs)
	require.NoError(t, err)
	assert.Equal(t, 500, batch.NPerSeg)
	require.Len(t, batch.Freqs, 251)
	assert.InDelta(t, 1.0, batch.Freqs[1], 1e-12)
	assert.InDelta(t, 10.0, batch.Freqs[10], 1e-12)
}

func TestBatchStructuralErrors(t *testing.T) {
	epochs := sineEpochs(1, epoch.NumericLabel(1))

	_, err := NewBatchEstimator(spectral.WelchParams{}, 1).Compute(epochs, 0)
	assert.Error(t, err, "non-positive sample rate")

	empty := []epoch.Epoch{{Index: 0, Signal: nil, Label: epoch.NumericLabel(1)}}
	_, err = NewBatchEstimator(spectral.WelchParams{}, 1).Compute(empty, 500.0)
	assert.Error(t, err, "first epoch has no samples")
}

func TestBatchWorkerCount(t *testing.T) {
	explicit := NewBatchEstimator(spectral.WelchParams{}, 4)
	assert.Equal(t, 3, explicit.workerCount(3), "explicit count caps at workload")
	assert.Equal(t, 4, explicit.workerCount(100))

	auto := NewBatchEstimator(spectral.WelchParams{}, 0)
	assert.GreaterOrEqual(t, auto.workerCount(1), 1, "small workloads still get a worker")
	assert.GreaterOrEqual(t, auto.workerCount(5000), 1)
}
