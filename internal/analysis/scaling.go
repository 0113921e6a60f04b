package analysis

import (
	"time"

	"ctview/pkg/contracts/domain"
)

// Timestamps converts the record's relative sample times into absolute
// instants: start + sample_times[i]. The result is strictly increasing
// whenever the sample times are.
func Timestamps(r *domain.Record) []time.Time {
	out := make([]time.Time, len(r.SampleTimes))
	for i, t := range r.SampleTimes {
		out[i] = r.Start.Add(time.Duration(t * float64(time.Second)))
	}
	return out
}

// BuildSeries produces the two parallel series collections for a record.
//
// Secondary values are the raw samples unchanged. Primary values are
// raw * (primary_factor / secondary_factor) / 1000; when the secondary
// factor is zero the primary value falls back to the raw sample, so the
// two unit systems coincide for that channel. That fallback silently
// mislabels the units but matches long-standing recorder-tooling
// behaviour, so it is kept.
//
// Digital channels carry their 0/1 samples unchanged in both systems.
// Channel order follows the record's declaration order, and every output
// series has exactly one point per sample time.
func BuildSeries(r *domain.Record) (primary, secondary domain.SeriesSet) {
	stamps := Timestamps(r)

	primary = domain.SeriesSet{Unit: domain.UnitPrimary}
	secondary = domain.SeriesSet{Unit: domain.UnitSecondary}

	for _, ch := range r.Analog {
		ratio := 1.0
		if ch.SecondaryFactor != 0 {
			ratio = (ch.PrimaryFactor / ch.SecondaryFactor) / 1000
		}
		p := make([]domain.SeriesPoint, len(ch.Samples))
		s := make([]domain.SeriesPoint, len(ch.Samples))
		for i, v := range ch.Samples {
			s[i] = domain.SeriesPoint{Timestamp: stamps[i], Value: v}
			p[i] = domain.SeriesPoint{Timestamp: stamps[i], Value: v * ratio}
		}
		primary.Channels = append(primary.Channels, domain.Series{ChannelID: ch.ID, Points: p})
		secondary.Channels = append(secondary.Channels, domain.Series{ChannelID: ch.ID, Points: s})
	}

	for _, ch := range r.Status {
		pts := make([]domain.SeriesPoint, len(ch.Samples))
		for i, v := range ch.Samples {
			pts[i] = domain.SeriesPoint{Timestamp: stamps[i], Value: v}
		}
		primary.Channels = append(primary.Channels, domain.Series{ChannelID: ch.ID, Points: pts})
		secondary.Channels = append(secondary.Channels, domain.Series{ChannelID: ch.ID, Points: pts})
	}

	return primary, secondary
}
