package filters

import (
	"fmt"
	"math"
)

// Butterworth designs as cascades of second-order sections, one section
// per conjugate pole pair, plus a first-order section for odd orders.
// The section quality factors place the poles on the Butterworth circle,
// giving a maximally flat passband.

// butterworthQ returns the quality factor of the index-th second-order
// section of an order-N Butterworth filter.
func butterworthQ(order, index int) float64 {
	angle := math.Pi * float64(2*index+1) / float64(2*order)
	return 1.0 / (2.0 * math.Sin(angle))
}

// DesignLowpass designs an order-N Butterworth lowpass with the given
// cutoff frequency in Hz.
func DesignLowpass(cutoff, fs float64, order int) (*Cascade, error) {
	if order < 1 {
		return nil, fmt.Errorf("filter order must be at least 1, got %d", order)
	}

	sections := make([]*Biquad, 0, order/2+1)
	for i := 0; i < order/2; i++ {
		section, err := designLowpassSection(cutoff, fs, butterworthQ(order, i))
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}
	if order%2 == 1 {
		section, err := designFirstOrderLowpass(cutoff, fs)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}

	return NewCascade(sections...), nil
}

// DesignHighpass designs an order-N Butterworth highpass with the given
// cutoff frequency in Hz.
func DesignHighpass(cutoff, fs float64, order int) (*Cascade, error) {
	if order < 1 {
		return nil, fmt.Errorf("filter order must be at least 1, got %d", order)
	}

	sections := make([]*Biquad, 0, order/2+1)
	for i := 0; i < order/2; i++ {
		section, err := designHighpassSection(cutoff, fs, butterworthQ(order, i))
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}
	if order%2 == 1 {
		section, err := designFirstOrderHighpass(cutoff, fs)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}

	return NewCascade(sections...), nil
}

// DesignBandpass designs a Butterworth bandpass as an order-N highpass
// at the low edge cascaded with an order-N lowpass at the high edge.
// The composite filter has order 2N, matching the conventional
// definition of an order-N bandpass design.
func DesignBandpass(low, high, fs float64, order int) (*Cascade, error) {
	if low >= high {
		return nil, fmt.Errorf("band edges out of order: low %g Hz >= high %g Hz", low, high)
	}

	highpass, err := DesignHighpass(low, fs, order)
	if err != nil {
		return nil, err
	}
	lowpass, err := DesignLowpass(high, fs, order)
	if err != nil {
		return nil, err
	}

	sections := make([]*Biquad, 0, highpass.NumSections()+lowpass.NumSections())
	sections = append(sections, highpass.sections...)
	sections = append(sections, lowpass.sections...)

	return NewCascade(sections...), nil
}
