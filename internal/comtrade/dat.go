package comtrade

import (
	"encoding/binary"
	"strconv"
	"strings"
)

// rawData holds the DAT contents before conversion and time assembly:
// one row per sample, analog values still in recorder counts.
type rawData struct {
	Analog [][]float64 // [channel][sample]
	Status [][]float64 // [channel][sample]
	Times  []float64   // per-record timestamps in recorder units
}

// decodeBinaryDAT decodes the BINARY layout: per sample a uint32 sample
// number, a uint32 timestamp, one int16 per analog channel and the status
// channels packed 16 per uint16 word, all little-endian.
func decodeBinaryDAT(dat []byte, numAnalog, numStatus int) (*rawData, error) {
	statusWords := (numStatus + 15) / 16
	recordSize := 4 + 4 + 2*numAnalog + 2*statusWords
	if len(dat) == 0 {
		return nil, decodeErrorf("dat", 0, "empty data file")
	}
	if len(dat)%recordSize != 0 {
		return nil, decodeErrorf("dat", 0, "file size %d is not a multiple of record size %d", len(dat), recordSize)
	}
	n := len(dat) / recordSize

	raw := newRawData(numAnalog, numStatus, n)
	for rec := 0; rec < n; rec++ {
		off := rec * recordSize
		raw.Times[rec] = float64(binary.LittleEndian.Uint32(dat[off+4 : off+8]))
		off += 8
		for ch := 0; ch < numAnalog; ch++ {
			v := int16(binary.LittleEndian.Uint16(dat[off : off+2]))
			raw.Analog[ch][rec] = float64(v)
			off += 2
		}
		for w := 0; w < statusWords; w++ {
			word := binary.LittleEndian.Uint16(dat[off : off+2])
			for bit := 0; bit < 16; bit++ {
				ch := w*16 + bit
				if ch >= numStatus {
					break
				}
				raw.Status[ch][rec] = float64((word >> uint(bit)) & 1)
			}
			off += 2
		}
	}
	return raw, nil
}

// decodeASCIIDAT decodes the ASCII layout: one comma-separated line per
// sample holding the sample number, the timestamp, the analog values and
// the status values.
func decodeASCIIDAT(dat []byte, numAnalog, numStatus int) (*rawData, error) {
	lines := splitLines(string(dat))
	if len(lines) == 0 {
		return nil, decodeErrorf("dat", 0, "empty data file")
	}

	raw := newRawData(numAnalog, numStatus, len(lines))
	wantFields := 2 + numAnalog + numStatus
	for rec, line := range lines {
		f := strings.Split(line, ",")
		if len(f) < wantFields {
			return nil, decodeErrorf("dat", rec+1, "record has %d fields, want %d", len(f), wantFields)
		}
		ts, err := strconv.ParseFloat(strings.TrimSpace(f[1]), 64)
		if err != nil {
			return nil, decodeErrorf("dat", rec+1, "timestamp %q: %v", f[1], err)
		}
		raw.Times[rec] = ts
		for ch := 0; ch < numAnalog; ch++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(f[2+ch]), 64)
			if err != nil {
				return nil, decodeErrorf("dat", rec+1, "analog value %q: %v", f[2+ch], err)
			}
			raw.Analog[ch][rec] = v
		}
		for ch := 0; ch < numStatus; ch++ {
			s := strings.TrimSpace(f[2+numAnalog+ch])
			switch s {
			case "0", "":
				raw.Status[ch][rec] = 0
			case "1":
				raw.Status[ch][rec] = 1
			default:
				return nil, decodeErrorf("dat", rec+1, "status value %q is not 0 or 1", s)
			}
		}
	}
	return raw, nil
}

func newRawData(numAnalog, numStatus, samples int) *rawData {
	raw := &rawData{
		Analog: make([][]float64, numAnalog),
		Status: make([][]float64, numStatus),
		Times:  make([]float64, samples),
	}
	for i := range raw.Analog {
		raw.Analog[i] = make([]float64, samples)
	}
	for i := range raw.Status {
		raw.Status[i] = make([]float64, samples)
	}
	return raw
}
