package comtrade

import "strings"

// Decode parses a CFG/DAT pair into a Recording. The CFG conversion
// factors (a, b) are applied to analog samples here, so Recording analog
// values are already in secondary (instrument-side) units.
func Decode(cfgText string, dat []byte) (*Recording, error) {
	cfg, err := parseCFG(cfgText)
	if err != nil {
		return nil, err
	}

	var raw *rawData
	if cfg.Binary {
		raw, err = decodeBinaryDAT(dat, len(cfg.Analog), len(cfg.Status))
	} else {
		raw, err = decodeASCIIDAT(dat, len(cfg.Analog), len(cfg.Status))
	}
	if err != nil {
		return nil, err
	}

	n := len(raw.Times)
	rec := &Recording{
		Station:       cfg.Station,
		Device:        cfg.Device,
		RevisionYear:  cfg.RevisionYear,
		LineFrequency: cfg.LineFrequency,
		Start:         cfg.Start,
		Trigger:       cfg.Trigger,
		Times:         cfg.sampleTimes(n, raw.Times),
		Analog:        make([]AnalogChannel, len(cfg.Analog)),
		Status:        make([]StatusChannel, len(cfg.Status)),
	}

	for i, def := range cfg.Analog {
		samples := raw.Analog[i]
		for j, v := range samples {
			samples[j] = def.A*v + def.B
		}
		rec.Analog[i] = AnalogChannel{
			ID:              def.ID,
			Phase:           def.Phase,
			Unit:            def.Unit,
			Samples:         samples,
			PrimaryFactor:   def.Primary,
			SecondaryFactor: def.Secondary,
		}
	}
	for i, def := range cfg.Status {
		rec.Status[i] = StatusChannel{
			ID:      def.ID,
			Phase:   def.Phase,
			Samples: raw.Status[i],
		}
	}

	return rec, nil
}

// StationLabel returns the human-readable station name: the first
// comma-delimited token of the CFG's first line. Purely descriptive,
// never used in computation.
func StationLabel(cfgText string) string {
	lines := splitLines(cfgText)
	if len(lines) == 0 {
		return ""
	}
	first, _, _ := strings.Cut(lines[0], ",")
	return strings.TrimSpace(first)
}
