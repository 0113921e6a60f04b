package comtrade

import (
	"strconv"
	"strings"
	"time"
)

// analogDef is one "An,..." line of the CFG: channel identity plus the
// raw-to-secondary conversion (a*x + b) and the transformer ratio factors.
type analogDef struct {
	ID        string
	Phase     string
	Unit      string
	A         float64
	B         float64
	Primary   float64
	Secondary float64
}

// statusDef is one "Dn,..." line of the CFG.
type statusDef struct {
	ID    string
	Phase string
}

// sampleRate is one "samp,endsamp" entry of the CFG rate table.
// EndSample is the 1-based index of the last sample recorded at this rate.
type sampleRate struct {
	Samples   float64
	EndSample int
}

// cfgFile is the parsed CFG configuration section.
type cfgFile struct {
	Station       string
	Device        string
	RevisionYear  int
	Analog        []analogDef
	Status        []statusDef
	LineFrequency float64
	Rates         []sampleRate
	Start         time.Time
	Trigger       time.Time
	Binary        bool
	TimeMult      float64
}

// parseCFG parses the CFG text of a COMTRADE bundle (1991 and 1999
// revisions). Field counts follow IEEE C37.111; fields the analysis
// engine never consumes (ccbm, skew, min/max, PS flag) are accepted and
// discarded.
func parseCFG(text string) (*cfgFile, error) {
	lines := splitLines(text)
	if len(lines) < 2 {
		return nil, decodeErrorf("cfg", 1, "truncated configuration: %d lines", len(lines))
	}

	cfg := &cfgFile{TimeMult: 1}

	// Line 1: station_name,rec_dev_id[,rev_year]
	head := strings.Split(lines[0], ",")
	cfg.Station = strings.TrimSpace(head[0])
	if len(head) > 1 {
		cfg.Device = strings.TrimSpace(head[1])
	}
	if len(head) > 2 {
		cfg.RevisionYear, _ = strconv.Atoi(strings.TrimSpace(head[2]))
	}

	// Line 2: TT,##A,##D
	counts := strings.Split(lines[1], ",")
	if len(counts) < 3 {
		return nil, decodeErrorf("cfg", 2, "channel count line needs 3 fields, got %d", len(counts))
	}
	numAnalog, err := parseChannelCount(counts[1], "A")
	if err != nil {
		return nil, decodeErrorf("cfg", 2, "analog channel count %q: %v", counts[1], err)
	}
	numStatus, err := parseChannelCount(counts[2], "D")
	if err != nil {
		return nil, decodeErrorf("cfg", 2, "status channel count %q: %v", counts[2], err)
	}

	line := 2 // 0-based index of the next unread line
	if len(lines) < line+numAnalog+numStatus {
		return nil, decodeErrorf("cfg", len(lines), "expected %d channel lines, file ends early", numAnalog+numStatus)
	}

	// Analog channel lines:
	// An,ch_id,ph,ccbm,uu,a,b,skew,min,max[,primary,secondary,PS]
	for i := 0; i < numAnalog; i++ {
		f := strings.Split(lines[line], ",")
		if len(f) < 7 {
			return nil, decodeErrorf("cfg", line+1, "analog channel line needs at least 7 fields, got %d", len(f))
		}
		def := analogDef{
			ID:        strings.TrimSpace(f[1]),
			Phase:     strings.TrimSpace(f[2]),
			Unit:      strings.TrimSpace(f[4]),
			A:         parseFloatDefault(f[5], 1),
			B:         parseFloatDefault(f[6], 0),
			Primary:   1,
			Secondary: 1,
		}
		if len(f) > 10 {
			def.Primary = parseFloatDefault(f[10], 1)
		}
		if len(f) > 11 {
			def.Secondary = parseFloatDefault(f[11], 1)
		}
		cfg.Analog = append(cfg.Analog, def)
		line++
	}

	// Status channel lines: Dn,ch_id[,ph,ccbm,y]
	for i := 0; i < numStatus; i++ {
		f := strings.Split(lines[line], ",")
		if len(f) < 2 {
			return nil, decodeErrorf("cfg", line+1, "status channel line needs at least 2 fields, got %d", len(f))
		}
		def := statusDef{ID: strings.TrimSpace(f[1])}
		if len(f) > 2 {
			def.Phase = strings.TrimSpace(f[2])
		}
		cfg.Status = append(cfg.Status, def)
		line++
	}

	// Line frequency.
	if line >= len(lines) {
		return nil, decodeErrorf("cfg", len(lines), "missing line frequency")
	}
	cfg.LineFrequency = parseFloatDefault(lines[line], 0)
	line++

	// Sample rate table: nrates then nrates samp,endsamp lines. A zero
	// nrates still carries one rate line per the standard.
	if line >= len(lines) {
		return nil, decodeErrorf("cfg", len(lines), "missing sample rate count")
	}
	nrates, err := strconv.Atoi(strings.TrimSpace(lines[line]))
	if err != nil {
		return nil, decodeErrorf("cfg", line+1, "sample rate count %q: %v", lines[line], err)
	}
	line++
	rateLines := nrates
	if rateLines == 0 {
		rateLines = 1
	}
	for i := 0; i < rateLines; i++ {
		if line >= len(lines) {
			return nil, decodeErrorf("cfg", len(lines), "missing sample rate line %d of %d", i+1, rateLines)
		}
		f := strings.Split(lines[line], ",")
		if len(f) < 2 {
			return nil, decodeErrorf("cfg", line+1, "sample rate line needs 2 fields, got %d", len(f))
		}
		end, err := strconv.Atoi(strings.TrimSpace(f[1]))
		if err != nil {
			return nil, decodeErrorf("cfg", line+1, "end sample %q: %v", f[1], err)
		}
		cfg.Rates = append(cfg.Rates, sampleRate{
			Samples:   parseFloatDefault(f[0], 0),
			EndSample: end,
		})
		line++
	}

	// First data point timestamp, then trigger timestamp.
	if line+1 >= len(lines) {
		return nil, decodeErrorf("cfg", len(lines), "missing start/trigger timestamps")
	}
	cfg.Start, err = parseCFGTime(lines[line])
	if err != nil {
		return nil, decodeErrorf("cfg", line+1, "start timestamp %q: %v", lines[line], err)
	}
	line++
	cfg.Trigger, err = parseCFGTime(lines[line])
	if err != nil {
		return nil, decodeErrorf("cfg", line+1, "trigger timestamp %q: %v", lines[line], err)
	}
	line++

	// Data file type.
	if line >= len(lines) {
		return nil, decodeErrorf("cfg", len(lines), "missing data file type")
	}
	switch strings.ToUpper(strings.TrimSpace(lines[line])) {
	case "ASCII", "ASC":
		cfg.Binary = false
	case "BINARY", "BIN":
		cfg.Binary = true
	default:
		return nil, decodeErrorf("cfg", line+1, "unknown data file type %q", lines[line])
	}
	line++

	// Time multiplier (1999 revision, optional).
	if line < len(lines) && strings.TrimSpace(lines[line]) != "" {
		cfg.TimeMult = parseFloatDefault(lines[line], 1)
	}
	if cfg.TimeMult == 0 {
		cfg.TimeMult = 1
	}

	return cfg, nil
}

// sampleTimes derives the relative time of every sample. When the CFG
// declares a usable sample rate table the times come from it, piecewise
// over the rate segments; otherwise the per-record DAT timestamps are
// scaled by the time multiplier (microseconds on the wire).
func (c *cfgFile) sampleTimes(n int, datTimes []float64) []float64 {
	times := make([]float64, n)
	if len(c.Rates) > 0 && c.Rates[0].Samples > 0 {
		base := 0.0
		segStart := 0
		for seg, r := range c.Rates {
			end := r.EndSample
			if seg == len(c.Rates)-1 || end > n {
				end = n
			}
			for i := segStart; i < end; i++ {
				times[i] = base + float64(i-segStart)/r.Samples
			}
			if r.Samples > 0 {
				base += float64(end-segStart) / r.Samples
			}
			segStart = end
			if segStart >= n {
				break
			}
		}
		return times
	}
	for i := 0; i < n && i < len(datTimes); i++ {
		times[i] = datTimes[i] * c.TimeMult / 1e6
	}
	return times
}

// parseChannelCount parses counts of the form "6A" or "12D"; the unit
// suffix is optional in files emitted by some recorders.
func parseChannelCount(field, suffix string) (int, error) {
	s := strings.TrimSpace(field)
	s = strings.TrimSuffix(strings.TrimSuffix(s, strings.ToLower(suffix)), suffix)
	return strconv.Atoi(s)
}

// parseCFGTime parses a COMTRADE timestamp line: dd/mm/yyyy,hh:mm:ss.ffffff.
// Two-digit years show up in 1991-revision files and are pivoted the way
// recorders of that era intended.
func parseCFGTime(line string) (time.Time, error) {
	s := strings.TrimSpace(line)
	if s == "" {
		return time.Time{}, nil
	}
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return time.Time{}, decodeErrorf("cfg", 0, "timestamp needs date,time")
	}
	d := strings.Split(parts[0], "/")
	if len(d) != 3 {
		return time.Time{}, decodeErrorf("cfg", 0, "date needs dd/mm/yyyy")
	}
	day, err1 := strconv.Atoi(strings.TrimSpace(d[0]))
	month, err2 := strconv.Atoi(strings.TrimSpace(d[1]))
	year, err3 := strconv.Atoi(strings.TrimSpace(d[2]))
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, decodeErrorf("cfg", 0, "non-numeric date field")
	}
	if year < 70 {
		year += 2000
	} else if year < 100 {
		year += 1900
	}

	clock := strings.Split(parts[1], ":")
	if len(clock) != 3 {
		return time.Time{}, decodeErrorf("cfg", 0, "time needs hh:mm:ss")
	}
	hour, err1 := strconv.Atoi(strings.TrimSpace(clock[0]))
	minute, err2 := strconv.Atoi(strings.TrimSpace(clock[1]))
	if err1 != nil || err2 != nil {
		return time.Time{}, decodeErrorf("cfg", 0, "non-numeric time field")
	}
	secs, err := strconv.ParseFloat(strings.TrimSpace(clock[2]), 64)
	if err != nil {
		return time.Time{}, decodeErrorf("cfg", 0, "seconds field %q", clock[2])
	}
	whole := int(secs)
	nanos := int((secs - float64(whole)) * 1e9)

	return time.Date(year, time.Month(month), day, hour, minute, whole, nanos, time.UTC), nil
}

func parseFloatDefault(field string, def float64) float64 {
	s := strings.TrimSpace(field)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	// Trailing blank lines are common; interior ones are structural.
	for len(raw) > 0 && strings.TrimSpace(raw[len(raw)-1]) == "" {
		raw = raw[:len(raw)-1]
	}
	return raw
}
