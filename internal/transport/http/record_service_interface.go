package http

import (
	"context"

	"ctview/internal/services"
	"ctview/pkg/contracts/domain"
)

// RecordServiceInterface is the record service surface consumed by the
// HTTP handlers. Narrowing it to an interface keeps the handlers
// testable with a fake service.
type RecordServiceInterface interface {
	Load(ctx context.Context, in services.UploadInput) (*services.LoadedRecord, error)
	Get(ctx context.Context, id string) (*services.LoadedRecord, error)
	Series(ctx context.Context, id string, unit domain.UnitSystem, channels []string) (domain.SeriesSet, error)
	Frequency(ctx context.Context, id, channel string) ([]domain.FrequencyPoint, error)
	RMS(ctx context.Context, id string, unit domain.UnitSystem, channels []string) (domain.SeriesSet, error)
	Events(ctx context.Context, id string, signals []string) ([]domain.Interval, error)
	Digital(ctx context.Context, id string) ([]domain.DigitalChannelMeta, error)
}
