package comtrade

import "fmt"

// DecodeError reports a malformed CFG or DAT input. It is fatal for the
// load: the caller surfaces it to the user and waits for a re-upload.
type DecodeError struct {
	Section string // "cfg" or "dat"
	Line    int    // 1-based line (cfg) or record (dat) number, 0 if n/a
	Msg     string
	Err     error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("comtrade %s line %d: %s", e.Section, e.Line, e.Msg)
	}
	return fmt.Sprintf("comtrade %s: %s", e.Section, e.Msg)
}

// Unwrap allows errors.Is and errors.As to reach the cause.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeErrorf(section string, line int, format string, args ...interface{}) *DecodeError {
	return &DecodeError{
		Section: section,
		Line:    line,
		Msg:     fmt.Sprintf(format, args...),
	}
}
