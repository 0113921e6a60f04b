// Package analysis implements the waveform analysis engine for COMTRADE
// disturbance records.
//
// The engine turns the raw sampled channel arrays of a decoded record
// into the derived views a charting frontend consumes:
//
//  1. Scaling & timestamps (scaling.go): absolute-time series in two
//     unit systems, primary (real-world side) and secondary (as recorded)
//  2. Digital channel classification (classifier.go): activity detection
//     separating inert channels from ones that change or sit asserted
//  3. Frequency estimation (frequency.go): instantaneous power-system
//     frequency from interpolated positive zero-crossings of a reference
//     channel
//  4. Sliding-window RMS sized to one nominal 50 Hz cycle (rms.go)
//  5. Digital event extraction (events.go): contiguous high periods of a
//     status signal as (start, end) intervals
//
// Every function here is a pure, deterministic transform over immutable
// inputs: no cross-call state, no I/O, cost proportional to the sample
// count. Degenerate inputs (too few zero-crossings, empty selections,
// flat signals) yield empty results, never errors.
package analysis
