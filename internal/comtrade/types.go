package comtrade

import "time"

// AnalogChannel is one decoded analog channel. Samples hold the
// as-recorded values with the CFG conversion (a*x + b) already applied.
type AnalogChannel struct {
	ID              string
	Phase           string
	Unit            string
	Samples         []float64
	PrimaryFactor   float64
	SecondaryFactor float64
}

// StatusChannel is one decoded digital channel with 0/1 samples.
type StatusChannel struct {
	ID      string
	Phase   string
	Samples []float64
}

// Recording is the decoded contents of one CFG/DAT pair.
type Recording struct {
	Station       string
	Device        string
	RevisionYear  int
	LineFrequency float64
	Start         time.Time
	Trigger       time.Time
	// Times holds seconds since Start for each sample, strictly increasing.
	Times  []float64
	Analog []AnalogChannel
	Status []StatusChannel
}

// SampleCount returns the number of decoded samples per channel.
func (r *Recording) SampleCount() int {
	return len(r.Times)
}
