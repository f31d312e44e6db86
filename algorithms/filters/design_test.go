package filters

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestButterworthQ(t *testing.T) {
	// Second-order Butterworth has the textbook Q of 1/sqrt(2).
	assert.InDelta(t, 1.0/math.Sqrt2, butterworthQ(2, 0), 1e-12)

	// Fourth-order section Qs.
	assert.InDelta(t, 1.3065629648763766, butterworthQ(4, 0), 1e-9)
	assert.InDelta(t, 0.5411961001461971, butterworthQ(4, 1), 1e-9)
}

func TestDesignNotchResponse(t *testing.T) {
	section, err := DesignNotch(60.0, 500.0, 30.0)
	require.NoError(t, err)

	cascade := NewCascade(section)

	// Full rejection at the notch frequency.
	mag, _ := cascade.FrequencyResponse(60.0, 500.0)
	assert.InDelta(t, 0.0, mag, 1e-9)

	// Frequencies well away from the notch pass nearly untouched.
	mag, _ = cascade.FrequencyResponse(10.0, 500.0)
	assert.InDelta(t, 1.0, mag, 0.01)
	mag, _ = cascade.FrequencyResponse(110.0, 500.0)
	assert.InDelta(t, 1.0, mag, 0.01)
}

func TestDesignNotchInvalid(t *testing.T) {
	_, err := DesignNotch(300.0, 500.0, 30.0)
	assert.Error(t, err, "frequency above Nyquist")

	_, err = DesignNotch(60.0, 0.0, 30.0)
	assert.Error(t, err, "non-positive sample rate")

	_, err = DesignNotch(60.0, 500.0, 0.0)
	assert.Error(t, err, "non-positive quality factor")
}

func TestDesignLowpassResponse(t *testing.T) {
	cascade, err := DesignLowpass(50.0, 500.0, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, cascade.Order())

	// Unity gain at DC.
	mag, _ := cascade.FrequencyResponse(0.0, 500.0)
	assert.InDelta(t, 1.0, mag, 1e-9)

	// -3 dB at the cutoff.
	mag, _ = cascade.FrequencyResponse(50.0, 500.0)
	assert.InDelta(t, 1.0/math.Sqrt2, mag, 0.01)

	// Strong attenuation an octave above.
	mag, _ = cascade.FrequencyResponse(100.0, 500.0)
	assert.Less(t, mag, 0.08)
}

func TestDesignHighpassResponse(t *testing.T) {
	cascade, err := DesignHighpass(1.0, 500.0, 4)
	require.NoError(t, err)

	// DC is blocked entirely.
	mag, _ := cascade.FrequencyResponse(0.0, 500.0)
	assert.InDelta(t, 0.0, mag, 1e-9)

	mag, _ = cascade.FrequencyResponse(1.0, 500.0)
	assert.InDelta(t, 1.0/math.Sqrt2, mag, 0.01)

	mag, _ = cascade.FrequencyResponse(20.0, 500.0)
	assert.InDelta(t, 1.0, mag, 0.01)
}

func TestDesignOddOrder(t *testing.T) {
	cascade, err := DesignLowpass(50.0, 500.0, 5)
	require.NoError(t, err)

	assert.Equal(t, 5, cascade.Order())
	assert.Equal(t, 3, cascade.NumSections())

	mag, _ := cascade.FrequencyResponse(0.0, 500.0)
	assert.InDelta(t, 1.0, mag, 1e-9)
	mag, _ = cascade.FrequencyResponse(50.0, 500.0)
	assert.InDelta(t, 1.0/math.Sqrt2, mag, 0.01)
}

func TestDesignBandpassResponse(t *testing.T) {
	cascade, err := DesignBandpass(0.5, 120.0, 500.0, 4)
	require.NoError(t, err)
	assert.Equal(t, 8, cascade.Order())

	// Mid-band passes with unity gain.
	mag, _ := cascade.FrequencyResponse(30.0, 500.0)
	assert.InDelta(t, 1.0, mag, 0.01)

	// Out-of-band frequencies are rejected.
	mag, _ = cascade.FrequencyResponse(0.05, 500.0)
	assert.Less(t, mag, 0.01)
	mag, _ = cascade.FrequencyResponse(240.0, 500.0)
	assert.Less(t, mag, 0.01)
}

func TestDesignBandpassInvalid(t *testing.T) {
	_, err := DesignBandpass(120.0, 0.5, 500.0, 4)
	assert.Error(t, err, "edges out of order")

	_, err = DesignBandpass(0.5, 250.0, 500.0, 4)
	assert.Error(t, err, "high edge at Nyquist")

	_, err = DesignBandpass(0.5, 120.0, 500.0, 0)
	assert.Error(t, err, "order below 1")
}

func TestBiquadProcessImpulse(t *testing.T) {
	// Identity section passes the impulse through unchanged.
	identity := NewBiquad(1, 0, 0, 1, 0, 0)
	impulse := []float64{1, 0, 0, 0}
	assert.Equal(t, impulse, identity.ProcessBuffer(impulse))

	// NewBiquad normalizes by a0.
	scaled := NewBiquad(2, 0, 0, 2, 0, 0)
	b0, b1, b2, a1, a2 := scaled.Coefficients()
	assert.Equal(t, 1.0, b0)
	assert.Equal(t, 0.0, b1)
	assert.Equal(t, 0.0, b2)
	assert.Equal(t, 0.0, a1)
	assert.Equal(t, 0.0, a2)
}

func TestBiquadReset(t *testing.T) {
	section, err := DesignNotch(60.0, 500.0, 30.0)
	require.NoError(t, err)

	input := []float64{1, 2, 3, 4, 5}
	first := section.ProcessBuffer(input)

	section.Reset()
	second := section.ProcessBuffer(input)

	assert.Equal(t, first, second)
}
