// Package record adapts decoded COMTRADE recordings into the immutable
// Record consumed by the waveform analysis engine.
package record

import (
	"context"
	"fmt"
	"log/slog"

	"ctview/internal/comtrade"
	"ctview/pkg/contracts/domain"
)

// Adapter wraps the record decoder output into the uniform in-memory
// representation. It performs no re-validation of the wire format:
// decode failures propagate unchanged, and a successful decode yields a
// Record honouring the invariant that every sample slice has the same
// length as the sample time sequence.
type Adapter struct {
	logger *slog.Logger
}

// NewAdapter creates a record adapter.
func NewAdapter(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		logger: logger.With(slog.String("component", "record_adapter")),
	}
}

// Build decodes a CFG/DAT pair and assembles the Record. The station
// label is the caller-supplied display name; when empty the station name
// from the CFG header is used. All decode state is local to the call and
// released on every exit path, including decode failure.
func (a *Adapter) Build(ctx context.Context, cfgText string, dat []byte, station string) (*domain.Record, error) {
	rec, err := comtrade.Decode(cfgText, dat)
	if err != nil {
		a.logger.WarnContext(ctx, "record decode failed",
			slog.String("station", station),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("decode comtrade bundle: %w", err)
	}

	if station == "" {
		station = rec.Station
	}

	out := &domain.Record{
		Station:       station,
		Device:        rec.Device,
		Start:         rec.Start,
		LineFrequency: rec.LineFrequency,
		SampleTimes:   rec.Times,
		Analog:        make([]domain.AnalogChannel, len(rec.Analog)),
		Status:        make([]domain.StatusChannel, len(rec.Status)),
	}
	for i, ch := range rec.Analog {
		out.Analog[i] = domain.AnalogChannel{
			ID:              ch.ID,
			Phase:           ch.Phase,
			Unit:            ch.Unit,
			Samples:         ch.Samples,
			PrimaryFactor:   ch.PrimaryFactor,
			SecondaryFactor: ch.SecondaryFactor,
		}
	}
	for i, ch := range rec.Status {
		out.Status[i] = domain.StatusChannel{
			ID:      ch.ID,
			Phase:   ch.Phase,
			Samples: ch.Samples,
		}
	}

	a.logger.InfoContext(ctx, "record decoded",
		slog.String("station", out.Station),
		slog.Time("start", out.Start),
		slog.Int("samples", out.SampleCount()),
		slog.Int("analog_channels", len(out.Analog)),
		slog.Int("status_channels", len(out.Status)),
	)

	return out, nil
}

// StationLabel extracts the display station name from raw CFG text: the
// first comma-delimited token of the first line.
func StationLabel(cfgText string) string {
	return comtrade.StationLabel(cfgText)
}
