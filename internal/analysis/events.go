package analysis

import (
	"time"

	"ctview/pkg/contracts/domain"
)

// ExtractIntervals converts a boolean-valued (0/1) series into the
// ordered sequence of contiguous high periods of the signal.
//
// The first difference of the series marks the edges: +1 is a rising
// edge opening an interval, -1 a falling edge closing one. A series that
// starts already asserted gets a synthesized start at the first
// timestamp, and one still asserted at the end gets a synthesized end at
// the last timestamp, so starts and ends always pair up in order. A
// constant-0 series yields nothing; a constant-1 series yields exactly
// one interval spanning the whole series.
func ExtractIntervals(signal string, timestamps []time.Time, values []float64) []domain.Interval {
	if len(values) == 0 || len(timestamps) < len(values) {
		return nil
	}

	var starts, ends []time.Time
	if values[0] == 1 {
		starts = append(starts, timestamps[0])
	}
	for i := 1; i < len(values); i++ {
		switch values[i] - values[i-1] {
		case 1:
			starts = append(starts, timestamps[i])
		case -1:
			ends = append(ends, timestamps[i])
		}
	}
	if values[len(values)-1] == 1 {
		ends = append(ends, timestamps[len(values)-1])
	}

	n := len(starts)
	if len(ends) < n {
		n = len(ends)
	}
	intervals := make([]domain.Interval, 0, n)
	for k := 0; k < n; k++ {
		intervals = append(intervals, domain.Interval{
			Signal: signal,
			Start:  starts[k],
			End:    ends[k],
		})
	}
	return intervals
}
