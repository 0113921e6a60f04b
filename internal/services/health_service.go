package services

import (
	"context"
	"log/slog"
	"time"
)

// HealthStatus is the health endpoint response body.
type HealthStatus struct {
	Status        string                 `json:"status"`
	Version       string                 `json:"version"`
	UptimeSeconds float64                `json:"uptime_seconds"`
	Records       map[string]interface{} `json:"records"`
	Timestamp     time.Time              `json:"timestamp"`
}

// HealthService reports service liveness and record store state.
type HealthService struct {
	records *RecordService
	version string
	started time.Time
	logger  *slog.Logger
}

// NewHealthService creates a health service.
func NewHealthService(records *RecordService, version string, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		records: records,
		version: version,
		started: time.Now(),
		logger:  logger.With(slog.String("component", "health_service")),
	}
}

// Health returns the current service status. The service has no external
// dependencies to probe; a responsive process with a functioning record
// store is healthy.
func (s *HealthService) Health(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:        "healthy",
		Version:       s.version,
		UptimeSeconds: time.Since(s.started).Seconds(),
		Records:       s.records.Stats(),
		Timestamp:     time.Now().UTC(),
	}
}
