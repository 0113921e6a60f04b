package domain

import "time"

// UnitSystem selects which of the two parallel scaled representations of
// an analog measurement a consumer wants.
type UnitSystem string

const (
	// UnitPrimary is the scaled real-world (high-voltage side) value.
	UnitPrimary UnitSystem = "primary"
	// UnitSecondary is the as-recorded instrument-side value.
	UnitSecondary UnitSystem = "secondary"
)

// IsValid reports whether u names a known unit system.
func (u UnitSystem) IsValid() bool {
	return u == UnitPrimary || u == UnitSecondary
}

// SeriesPoint is one (timestamp, value) sample of a scaled series.
type SeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Series is a per-channel time-indexed sequence of real values in one
// unit system. Derived from a Record, never mutated after creation.
type Series struct {
	ChannelID string        `json:"channel_id"`
	Points    []SeriesPoint `json:"points"`
}

// SeriesSet is an ordered collection of per-channel series sharing one
// unit system. Channel order matches the declaration order of the Record
// the set was derived from.
type SeriesSet struct {
	Unit     UnitSystem `json:"unit"`
	Channels []Series   `json:"channels"`
}

// Channel returns the series for the given channel id.
func (s *SeriesSet) Channel(id string) (Series, bool) {
	for _, ch := range s.Channels {
		if ch.ChannelID == id {
			return ch, true
		}
	}
	return Series{}, false
}

// ChannelIDs returns the channel ids in set order.
func (s *SeriesSet) ChannelIDs() []string {
	ids := make([]string, len(s.Channels))
	for i, ch := range s.Channels {
		ids[i] = ch.ChannelID
	}
	return ids
}

// DigitalChannelMeta describes one status channel for signal-selection
// UIs. Empty is the structured activity flag; Label is the decorated
// display string derived from it.
type DigitalChannelMeta struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Empty bool   `json:"empty"`
}

// FrequencyPoint is one instantaneous power-system frequency estimate,
// stamped at the zero-crossing that closed the measurement interval.
type FrequencyPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Hz        float64   `json:"hz"`
}

// Interval is one contiguous high period of a digital signal.
type Interval struct {
	Signal string    `json:"signal"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// AnalysisBundle is the memoizable product of one decode-and-scale pass:
// the immutable Record plus its derived series collections and digital
// channel metadata. Cached content-addressed on the input bytes.
type AnalysisBundle struct {
	Record    *Record              `json:"record"`
	Primary   SeriesSet            `json:"primary"`
	Secondary SeriesSet            `json:"secondary"`
	Digital   []DigitalChannelMeta `json:"digital"`
}
