package analysis

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/openlfp/sleepspec/algorithms/epoch"
	"github.com/openlfp/sleepspec/algorithms/spectral"
	"github.com/openlfp/sleepspec/logging"
)

// EpochPSD is the Welch estimate for one retained epoch. Index and
// Start trace it back to its position in the recording.
type EpochPSD struct {
	Index int         `json:"index"`
	Start int         `json:"start"`
	Label epoch.Label `json:"label"`
	PSD   []float64   `json:"psd"`
}

// SkippedEpoch records an epoch the estimator could not process and
// why. Skips are data, not errors: one bad epoch never aborts a batch.
type SkippedEpoch struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// BatchResult holds the per-epoch PSD estimates of one batch on a
// shared frequency axis. A batch with no surviving epochs has a nil
// axis and an empty Epochs slice.
type BatchResult struct {
	Freqs      []float64      `json:"freqs"`
	Epochs     []EpochPSD     `json:"epochs"`
	Skipped    []SkippedEpoch `json:"skipped,omitempty"`
	NPerSeg    int            `json:"nperseg"`
	SampleRate float64        `json:"sample_rate"`
}

// Empty reports whether no epoch produced an estimate.
func (r *BatchResult) Empty() bool {
	return len(r.Epochs) == 0
}

// BatchEstimator computes Welch PSDs for a set of epochs, serially or
// on a bounded worker pool.
type BatchEstimator struct {
	params  spectral.WelchParams
	workers int
	logger  logging.Logger
}

// NewBatchEstimator creates a batch estimator. A non-positive NPerSeg
// in params selects the epoch length, giving one full-length segment
// per epoch. workers bounds the pool; zero sizes it from the machine
// and the workload, one forces serial computation.
func NewBatchEstimator(params spectral.WelchParams, workers int) *BatchEstimator {
	return &BatchEstimator{
		params:  params,
		workers: workers,
		logger: logging.WithFields(logging.Fields{
			"component": "epoch_psd_batch",
		}),
	}
}

// Compute estimates a PSD for every epoch. Epochs the estimator cannot
// process are collected in Skipped with a reason and the batch
// continues; the output preserves epoch order. An empty epoch set
// yields an empty result, not an error.
func (b *BatchEstimator) Compute(epochs []epoch.Epoch, fs float64) (*BatchResult, error) {
	if fs <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %g", fs)
	}

	result := &BatchResult{SampleRate: fs}
	if len(epochs) == 0 {
		return result, nil
	}

	batchLen := len(epochs[0].Signal)
	if batchLen == 0 {
		return nil, fmt.Errorf("epoch 0 has no samples")
	}

	params := b.params
	if params.NPerSeg <= 0 {
		params.NPerSeg = batchLen
	}
	if params.NPerSeg > batchLen {
		b.logger.Warn("segment length exceeds epoch length, using epoch length", logging.Fields{
			"nperseg":   params.NPerSeg,
			"epoch_len": batchLen,
		})
		params.NPerSeg = batchLen
	}
	result.NPerSeg = params.NPerSeg

	// The estimator carries no per-call state, so workers share one.
	estimator := spectral.NewWelchWithParams(params)

	welches := make([]*spectral.WelchResult, len(epochs))
	skips := make([]*SkippedEpoch, len(epochs))

	process := func(slot int) {
		ep := epochs[slot]
		if len(ep.Signal) != batchLen {
			skips[slot] = &SkippedEpoch{
				Index:  ep.Index,
				Reason: fmt.Sprintf("epoch length %d differs from batch length %d", len(ep.Signal), batchLen),
			}
			return
		}

		res, err := estimator.Compute(ep.Signal, fs)
		if err != nil {
			b.logger.Warn("skipping epoch, estimator failed", logging.Fields{
				"epoch_index": ep.Index,
				"reason":      err.Error(),
			})
			skips[slot] = &SkippedEpoch{Index: ep.Index, Reason: err.Error()}
			return
		}
		welches[slot] = res
	}

	numWorkers := b.workerCount(len(epochs))
	if numWorkers <= 1 {
		for slot := range epochs {
			process(slot)
		}
	} else {
		jobs := make(chan int, len(epochs))

		var wg sync.WaitGroup
		for w := 0; w < numWorkers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				// Each worker writes only its job's slot, so no
				// further synchronization is needed.
				for slot := range jobs {
					process(slot)
				}
			}()
		}

		go func() {
			defer close(jobs)
			for slot := range epochs {
				jobs <- slot
			}
		}()

		wg.Wait()
	}

	for slot, res := range welches {
		if res == nil {
			result.Skipped = append(result.Skipped, *skips[slot])
			continue
		}
		if result.Freqs == nil {
			result.Freqs = res.Freqs
		}
		ep := epochs[slot]
		result.Epochs = append(result.Epochs, EpochPSD{
			Index: ep.Index,
			Start: ep.Start,
			Label: ep.Label,
			PSD:   res.PSD,
		})
	}

	return result, nil
}

// workerCount sizes the pool from the workload: small batches stay on
// few workers, large batches use every CPU.
func (b *BatchEstimator) workerCount(numEpochs int) int {
	if b.workers > 0 {
		return min(b.workers, numEpochs)
	}

	numCPU := runtime.NumCPU()
	if numEpochs < 100 {
		return max(1, min(numCPU/2, numEpochs))
	}
	if numEpochs < 1000 {
		return min(numCPU, 8)
	}
	return numCPU
}
