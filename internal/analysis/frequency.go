package analysis

import (
	"time"

	"ctview/pkg/contracts/domain"
)

// EstimateFrequency derives an instantaneous-frequency time series from
// the positive zero-crossings of one reference channel's secondary-unit
// samples, assumed uniformly spaced at period seconds.
//
// A crossing is an index i where sign(y[i+1]) - sign(y[i]) > 0, the
// discrete sign-difference test: it fires on negative-to-positive
// transitions and also on negative-to-zero and zero-to-positive ones.
// The exact crossing time is linearly interpolated inside the sample
// interval. Each pair of consecutive crossings yields one frequency
// value, 1/dt, stamped at the later crossing.
//
// Fewer than two usable crossings produce an empty result. A flat
// segment straddling zero (equal consecutive samples) would make the
// interpolation denominator zero; such crossings are skipped.
func EstimateFrequency(start time.Time, samples []float64, period float64) []domain.FrequencyPoint {
	if period <= 0 || len(samples) < 2 {
		return nil
	}

	var crossTimes []float64
	for i := 0; i+1 < len(samples); i++ {
		if sign(samples[i+1])-sign(samples[i]) <= 0 {
			continue
		}
		denom := samples[i+1] - samples[i]
		if denom == 0 {
			continue
		}
		crossTimes = append(crossTimes, float64(i)*period-samples[i]*period/denom)
	}
	if len(crossTimes) < 2 {
		return nil
	}

	points := make([]domain.FrequencyPoint, 0, len(crossTimes)-1)
	for k := 1; k < len(crossTimes); k++ {
		dt := crossTimes[k] - crossTimes[k-1]
		if dt <= 0 {
			continue
		}
		points = append(points, domain.FrequencyPoint{
			Timestamp: start.Add(time.Duration(crossTimes[k] * float64(time.Second))),
			Hz:        1 / dt,
		})
	}
	return points
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
