package analysis

import "math"

// NominalCycleSeconds is the window length of the RMS transform: one
// cycle of a 50 Hz system. The window is fixed at the nominal cycle, not
// derived from the estimated frequency.
const NominalCycleSeconds = 0.02

// RMSWindow returns the RMS window size in samples for the given sample
// period: one nominal cycle, never fewer than one sample.
func RMSWindow(period float64) int {
	if period <= 0 {
		return 1
	}
	w := int(math.Round(NominalCycleSeconds / period))
	if w < 1 {
		return 1
	}
	return w
}

// SlidingRMS computes a trailing sliding-window root-mean-square over
// values: output i is the RMS of values[i-w+1 .. i] where w is one
// nominal cycle of samples. The first w-1 outputs are computed over
// however many samples are available, so the result aligns
// index-for-index with the input and contains no undefined values.
func SlidingRMS(values []float64, period float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	window := RMSWindow(period)

	// Prefix sums of squares keep the transform linear in the sample
	// count regardless of window size.
	prefix := make([]float64, len(values)+1)
	for i, v := range values {
		prefix[i+1] = prefix[i] + v*v
	}

	out := make([]float64, len(values))
	for i := range values {
		w := window
		if i+1 < w {
			w = i + 1
		}
		mean := (prefix[i+1] - prefix[i+1-w]) / float64(w)
		out[i] = math.Sqrt(mean)
	}
	return out
}
