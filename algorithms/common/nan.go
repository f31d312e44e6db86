package common

import "math"

// Run is a half-open index interval [Start, End) of consecutive samples.
type Run struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of samples covered by the run.
func (r Run) Len() int {
	return r.End - r.Start
}

// HasNaN reports whether any sample in data is NaN.
func HasNaN(data []float64) bool {
	for _, v := range data {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// ValidRuns returns the maximal contiguous runs of non-NaN samples in data,
// in order. An all-NaN or empty input yields no runs.
func ValidRuns(data []float64) []Run {
	var runs []Run
	start := -1
	for i, v := range data {
		if math.IsNaN(v) {
			if start >= 0 {
				runs = append(runs, Run{Start: start, End: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		runs = append(runs, Run{Start: start, End: len(data)})
	}
	return runs
}
