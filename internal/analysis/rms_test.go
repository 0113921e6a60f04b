package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRMSWindow(t *testing.T) {
	tests := []struct {
		name   string
		period float64
		want   int
	}{
		{name: "1 kHz sampling", period: 0.001, want: 20},
		{name: "2 kHz sampling", period: 0.0005, want: 40},
		{name: "coarser than one cycle", period: 0.05, want: 1},
		{name: "zero period", period: 0, want: 1},
		{name: "negative period", period: -0.001, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RMSWindow(tt.period))
		})
	}
}

func TestSlidingRMS_ConstantSignal(t *testing.T) {
	for _, c := range []float64{5, -3, 0} {
		values := make([]float64, 100)
		for i := range values {
			values[i] = c
		}

		out := SlidingRMS(values, 0.001)
		require.Len(t, out, len(values))
		for i, v := range out {
			assert.InDelta(t, math.Abs(c), v, 1e-9, "index %d", i)
		}
	}
}

func TestSlidingRMS_SineConvergesToAmplitudeOverSqrt2(t *testing.T) {
	const amplitude = 141.42
	values := sine(50, 1000, 5)
	for i := range values {
		values[i] *= amplitude
	}

	out := SlidingRMS(values, 1.0/1000)
	require.Len(t, out, len(values))

	// After the first full cycle the trailing window covers exactly one
	// period, so the RMS settles at amplitude/sqrt(2).
	want := amplitude / math.Sqrt2
	for i := RMSWindow(1.0 / 1000); i < len(out); i++ {
		assert.InEpsilon(t, want, out[i], 0.01, "index %d", i)
	}
}

func TestSlidingRMS_PartialLeadingWindows(t *testing.T) {
	values := []float64{3, 4}

	out := SlidingRMS(values, 0.001)
	require.Len(t, out, 2)

	assert.InDelta(t, 3, out[0], 1e-9)
	assert.InDelta(t, math.Sqrt((9+16)/2.0), out[1], 1e-9)
}

func TestSlidingRMS_Empty(t *testing.T) {
	assert.Nil(t, SlidingRMS(nil, 0.001))
	assert.Nil(t, SlidingRMS([]float64{}, 0.001))
}

func TestSlidingRMS_Idempotent(t *testing.T) {
	values := sine(50, 1000, 3)

	first := SlidingRMS(values, 1.0/1000)
	second := SlidingRMS(values, 1.0/1000)

	assert.Equal(t, first, second)
}
