// Package comtrade decodes COMTRADE (IEEE C37.111) disturbance record
// bundles: the CFG configuration text and the DAT sample file, in both
// ASCII and binary layouts.
//
// The package is the record-decoding boundary of the application. It
// turns raw bytes into a Recording with per-channel sample arrays and
// relative sample times; everything downstream (scaling, classification,
// frequency estimation, event extraction) consumes the Recording and
// never touches the wire format again.
//
// Malformed input is reported as a *DecodeError carrying the section
// (cfg or dat) and line or record number where decoding stopped. No
// partial results are returned.
package comtrade
