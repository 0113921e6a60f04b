package domain

import "time"

// AnalogChannel holds one analog channel of a disturbance record: the
// as-recorded (secondary side) sample values plus the transformer ratio
// factors needed to derive primary-side values.
type AnalogChannel struct {
	ID              string    `json:"id"`
	Phase           string    `json:"phase,omitempty"`
	Unit            string    `json:"unit,omitempty"`
	Samples         []float64 `json:"samples"`
	PrimaryFactor   float64   `json:"primary_factor"`
	SecondaryFactor float64   `json:"secondary_factor"`
}

// StatusChannel holds one digital (status) channel. Samples carry only the
// values 0 and 1.
type StatusChannel struct {
	ID      string    `json:"id"`
	Phase   string    `json:"phase,omitempty"`
	Samples []float64 `json:"samples"`
}

// Record is the decoded COMTRADE unit: one uploaded CFG/DAT pair turned
// into channel sample arrays. It is constructed once per upload and never
// mutated afterwards; every derived view (series, metadata, frequency
// estimates, intervals) is computed fresh from it.
type Record struct {
	Station       string          `json:"station"`
	Device        string          `json:"device,omitempty"`
	Start         time.Time       `json:"start"`
	LineFrequency float64         `json:"line_frequency"`
	SampleTimes   []float64       `json:"sample_times"`
	Analog        []AnalogChannel `json:"analog"`
	Status        []StatusChannel `json:"status"`
}

// SampleCount returns the number of samples per channel.
func (r *Record) SampleCount() int {
	return len(r.SampleTimes)
}

// SamplePeriod returns the spacing between the first two samples in
// seconds. Uniform spacing is assumed for frequency estimation and RMS
// windowing.
func (r *Record) SamplePeriod() float64 {
	if len(r.SampleTimes) < 2 {
		return 0
	}
	return r.SampleTimes[1] - r.SampleTimes[0]
}

// AnalogIDs returns the analog channel ids in declaration order.
func (r *Record) AnalogIDs() []string {
	ids := make([]string, len(r.Analog))
	for i, ch := range r.Analog {
		ids[i] = ch.ID
	}
	return ids
}

// StatusIDs returns the status channel ids in declaration order.
func (r *Record) StatusIDs() []string {
	ids := make([]string, len(r.Status))
	for i, ch := range r.Status {
		ids[i] = ch.ID
	}
	return ids
}
