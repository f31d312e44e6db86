package epoch

import (
	"fmt"
	"math"

	"github.com/openlfp/sleepspec/algorithms/common"
)

// Epoch is one fixed-length window of a signal together with its single
// state label. Index is the window's ordinal position before validity
// filtering, so consumers can trace a surviving epoch back to its
// source location.
type Epoch struct {
	Index  int       `json:"index"`
	Start  int       `json:"start"`
	Signal []float64 `json:"-"`
	Label  Label     `json:"label"`
}

// Segment splits signal into consecutive non-overlapping epochs of
// epochSec seconds and keeps only the valid ones: a retained epoch has
// exactly epochSamples samples, a single observed label throughout,
// and no NaN samples. The trailing remainder shorter than one epoch is
// dropped. A signal shorter than one epoch yields an empty result, not
// an error.
//
// Mismatched signal/label lengths, a non-positive sampling rate, or an
// epoch length that floors to zero samples indicate caller misuse and
// fail fast.
func Segment(signal []float64, labels []Label, fs, epochSec float64) ([]Epoch, error) {
	return segment(signal, labels, fs, epochSec, nil)
}

// SegmentTarget behaves like Segment but additionally rejects epochs
// whose label differs from target.
func SegmentTarget(signal []float64, labels []Label, fs, epochSec float64, target Label) ([]Epoch, error) {
	return segment(signal, labels, fs, epochSec, &target)
}

func segment(signal []float64, labels []Label, fs, epochSec float64, target *Label) ([]Epoch, error) {
	if len(signal) != len(labels) {
		return nil, fmt.Errorf("signal and label lengths differ: %d vs %d", len(signal), len(labels))
	}
	if fs <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %g", fs)
	}

	epochSamples := int(math.Floor(epochSec * fs))
	if epochSamples <= 0 {
		return nil, fmt.Errorf("epoch of %g s at %g Hz contains no samples", epochSec, fs)
	}
	if len(signal) < epochSamples {
		return []Epoch{}, nil
	}

	numWindows := len(signal) / epochSamples
	epochs := make([]Epoch, 0, numWindows)

	for k := 0; k < numWindows; k++ {
		start := k * epochSamples
		windowSignal := signal[start : start+epochSamples]
		windowLabels := labels[start : start+epochSamples]

		if !homogeneousLabel(windowLabels) {
			continue
		}
		if target != nil && !windowLabels[0].Equal(*target) {
			continue
		}
		if common.HasNaN(windowSignal) {
			continue
		}

		// Copy out of the caller's array so epochs stay valid however
		// the caller reuses its buffers.
		signalCopy := make([]float64, epochSamples)
		copy(signalCopy, windowSignal)

		epochs = append(epochs, Epoch{
			Index:  k,
			Start:  start,
			Signal: signalCopy,
			Label:  windowLabels[0],
		})
	}

	return epochs, nil
}

// homogeneousLabel reports whether every label is observed and equal to
// the first. Any missing label disqualifies the window.
func homogeneousLabel(labels []Label) bool {
	if len(labels) == 0 {
		return false
	}
	first := labels[0]
	if first.IsMissing() {
		return false
	}
	for _, l := range labels[1:] {
		if !first.Equal(l) {
			return false
		}
	}
	return true
}

// EpochSamples returns the number of samples in one epoch of epochSec
// seconds at rate fs, floored to an integer.
func EpochSamples(epochSec, fs float64) int {
	return int(math.Floor(epochSec * fs))
}
