package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	"ctview/internal/analysis"
	"ctview/internal/cache"
	apierrors "ctview/internal/errors"
	"ctview/internal/record"
	"ctview/internal/validation"
	"ctview/pkg/contracts/domain"
)

// UploadInput is one uploaded COMTRADE bundle. CFG and DAT are required;
// HDR and INF are optional free text surfaced verbatim.
type UploadInput struct {
	CFG []byte
	DAT []byte
	HDR []byte
	INF []byte
}

// LoadedRecord is one record session: an analysis bundle addressable by
// id for the lifetime of the upload session, plus the free-text metadata
// that accompanied the upload.
type LoadedRecord struct {
	ID         string
	LoadedAt   time.Time
	Bundle     *domain.AnalysisBundle
	HeaderText string
	InfoText   string
}

// RecordService owns the uploaded-record sessions. Decoding and scaling
// run once per distinct bundle content; repeated uploads of the same
// bytes hit the content-addressed cache. All derived views (frequency,
// RMS, intervals) are computed fresh per request and never stored.
type RecordService struct {
	adapter   *record.Adapter
	bundles   *cache.RecordCache
	validator *validation.BundleValidator
	logger    *slog.Logger
	maxLoaded int

	mu     sync.RWMutex
	loaded map[string]*LoadedRecord
	order  []string // upload order, oldest first

	loadCounter     metric.Int64Counter
	cacheHitCounter metric.Int64Counter
}

// NewRecordService creates the record service. meter may be nil; metrics
// are then skipped.
func NewRecordService(
	adapter *record.Adapter,
	bundles *cache.RecordCache,
	validator *validation.BundleValidator,
	maxLoaded int,
	logger *slog.Logger,
	meter metric.Meter,
) *RecordService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &RecordService{
		adapter:   adapter,
		bundles:   bundles,
		validator: validator,
		logger:    logger.With(slog.String("component", "record_service")),
		maxLoaded: maxLoaded,
		loaded:    make(map[string]*LoadedRecord),
	}
	if meter != nil {
		s.loadCounter, _ = meter.Int64Counter("ctview.records.loaded")
		s.cacheHitCounter, _ = meter.Int64Counter("ctview.records.cache_hits")
	}
	return s
}

// Load validates, decodes and scales an uploaded bundle, registers the
// result as an addressable session and returns it. Identical bundle
// bytes reuse the cached analysis.
func (s *RecordService) Load(ctx context.Context, in UploadInput) (*LoadedRecord, error) {
	if err := s.validator.ValidateBundle(in.CFG, in.DAT); err != nil {
		return nil, err
	}

	station := record.StationLabel(string(in.CFG))
	key := cache.Key(in.CFG, in.DAT, station)

	bundle, hit := s.bundles.Get(key)
	if hit {
		if s.cacheHitCounter != nil {
			s.cacheHitCounter.Add(ctx, 1)
		}
		s.logger.InfoContext(ctx, "analysis bundle served from cache",
			slog.String("station", station))
	} else {
		rec, err := s.adapter.Build(ctx, string(in.CFG), in.DAT, station)
		if err != nil {
			return nil, err
		}
		primary, secondary := analysis.BuildSeries(rec)
		bundle = &domain.AnalysisBundle{
			Record:    rec,
			Primary:   primary,
			Secondary: secondary,
			Digital:   analysis.ClassifyStatusChannels(rec),
		}
		s.bundles.Set(key, bundle)
	}

	loaded := &LoadedRecord{
		ID:         uuid.New().String(),
		LoadedAt:   time.Now(),
		Bundle:     bundle,
		HeaderText: string(in.HDR),
		InfoText:   string(in.INF),
	}

	s.mu.Lock()
	s.loaded[loaded.ID] = loaded
	s.order = append(s.order, loaded.ID)
	for len(s.order) > s.maxLoaded {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.loaded, oldest)
	}
	s.mu.Unlock()

	if s.loadCounter != nil {
		s.loadCounter.Add(ctx, 1)
	}
	s.logger.InfoContext(ctx, "record loaded",
		slog.String("record_id", loaded.ID),
		slog.String("station", station),
		slog.Bool("cache_hit", hit),
	)
	return loaded, nil
}

// Get returns the loaded record for id.
func (s *RecordService) Get(ctx context.Context, id string) (*LoadedRecord, error) {
	s.mu.RLock()
	loaded, ok := s.loaded[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apierrors.NewNotFoundError("record", id)
	}
	return loaded, nil
}

// Series returns the scaled series of a record in the requested unit
// system. An empty channel selection returns every channel; otherwise
// the subset is returned in record declaration order. Selection labels
// may carry the empty-channel decoration; it is stripped before lookup.
func (s *RecordService) Series(ctx context.Context, id string, unit domain.UnitSystem, channels []string) (domain.SeriesSet, error) {
	loaded, err := s.Get(ctx, id)
	if err != nil {
		return domain.SeriesSet{}, err
	}
	set, err := s.seriesSet(loaded, unit)
	if err != nil {
		return domain.SeriesSet{}, err
	}
	if len(channels) == 0 {
		return set, nil
	}

	want := make(map[string]bool, len(channels))
	for _, ch := range channels {
		want[analysis.StripEmptyLabel(ch)] = true
	}
	subset := domain.SeriesSet{Unit: set.Unit}
	for _, ch := range set.Channels {
		if want[ch.ChannelID] {
			subset.Channels = append(subset.Channels, ch)
			delete(want, ch.ChannelID)
		}
	}
	for ch := range want {
		s.logger.WarnContext(ctx, "selected channel not in record, skipped",
			slog.String("record_id", id),
			slog.String("channel", ch))
	}
	return subset, nil
}

// Frequency estimates power-system frequency over time from the
// secondary-unit samples of one reference analog channel.
func (s *RecordService) Frequency(ctx context.Context, id, channel string) ([]domain.FrequencyPoint, error) {
	loaded, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rec := loaded.Bundle.Record
	for _, ch := range rec.Analog {
		if ch.ID == channel {
			return analysis.EstimateFrequency(rec.Start, ch.Samples, rec.SamplePeriod()), nil
		}
	}
	return nil, apierrors.NewNotFoundError("analog channel", channel)
}

// RMS returns the sliding-window RMS transform of the selected analog
// channels in the requested unit system. Digital channels in the
// selection are ignored; an empty selection transforms every analog
// channel.
func (s *RecordService) RMS(ctx context.Context, id string, unit domain.UnitSystem, channels []string) (domain.SeriesSet, error) {
	loaded, err := s.Get(ctx, id)
	if err != nil {
		return domain.SeriesSet{}, err
	}
	set, err := s.seriesSet(loaded, unit)
	if err != nil {
		return domain.SeriesSet{}, err
	}
	rec := loaded.Bundle.Record
	period := rec.SamplePeriod()

	analogIDs := make(map[string]bool, len(rec.Analog))
	for _, ch := range rec.Analog {
		analogIDs[ch.ID] = true
	}
	want := make(map[string]bool, len(channels))
	for _, ch := range channels {
		want[analysis.StripEmptyLabel(ch)] = true
	}

	out := domain.SeriesSet{Unit: set.Unit}
	for _, ch := range set.Channels {
		if !analogIDs[ch.ChannelID] {
			continue
		}
		if len(channels) > 0 && !want[ch.ChannelID] {
			continue
		}
		values := make([]float64, len(ch.Points))
		for i, p := range ch.Points {
			values[i] = p.Value
		}
		rms := analysis.SlidingRMS(values, period)
		points := make([]domain.SeriesPoint, len(ch.Points))
		for i, p := range ch.Points {
			points[i] = domain.SeriesPoint{Timestamp: p.Timestamp, Value: rms[i]}
		}
		out.Channels = append(out.Channels, domain.Series{ChannelID: ch.ChannelID, Points: points})
	}
	return out, nil
}

// Events extracts the contiguous high periods of the selected digital
// signals. Selections may carry the empty-channel label decoration.
// Unknown signals are skipped; an empty selection yields an empty
// result.
func (s *RecordService) Events(ctx context.Context, id string, signals []string) ([]domain.Interval, error) {
	loaded, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rec := loaded.Bundle.Record
	stamps := analysis.Timestamps(rec)

	byID := make(map[string]domain.StatusChannel, len(rec.Status))
	for _, ch := range rec.Status {
		byID[ch.ID] = ch
	}

	intervals := make([]domain.Interval, 0)
	for _, raw := range signals {
		signal := analysis.StripEmptyLabel(raw)
		ch, ok := byID[signal]
		if !ok {
			s.logger.WarnContext(ctx, "selected signal not in record, skipped",
				slog.String("record_id", id),
				slog.String("signal", signal))
			continue
		}
		intervals = append(intervals, analysis.ExtractIntervals(signal, stamps, ch.Samples)...)
	}
	return intervals, nil
}

// Digital returns the digital channel metadata of a record.
func (s *RecordService) Digital(ctx context.Context, id string) ([]domain.DigitalChannelMeta, error) {
	loaded, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return loaded.Bundle.Digital, nil
}

// Stats reports session and cache state for health checks.
func (s *RecordService) Stats() map[string]interface{} {
	s.mu.RLock()
	loadedCount := len(s.loaded)
	s.mu.RUnlock()
	return map[string]interface{}{
		"loaded_records": loadedCount,
		"bundle_cache":   s.bundles.Stats(),
	}
}

func (s *RecordService) seriesSet(loaded *LoadedRecord, unit domain.UnitSystem) (domain.SeriesSet, error) {
	switch unit {
	case domain.UnitPrimary:
		return loaded.Bundle.Primary, nil
	case domain.UnitSecondary, "":
		return loaded.Bundle.Secondary, nil
	default:
		return domain.SeriesSet{}, apierrors.NewValidationError("unit must be primary or secondary")
	}
}
