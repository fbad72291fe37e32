package services

import (
	"context"
	"log/slog"
	"time"

	"enrdash/internal/store"
)

// HealthService reports process and dataset health for the health endpoints.
type HealthService struct {
	store     *store.Store
	logger    *slog.Logger
	version   string
	startedAt time.Time
}

// NewHealthService creates a health service.
func NewHealthService(st *store.Store, version string, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		store:     st,
		logger:    logger,
		version:   version,
		startedAt: time.Now(),
	}
}

// HealthCheck returns the overall health status including dataset state.
func (hs *HealthService) HealthCheck(ctx context.Context) map[string]interface{} {
	result := map[string]interface{}{
		"status":  "healthy",
		"version": hs.version,
		"uptime":  time.Since(hs.startedAt).Round(time.Second).String(),
	}

	snapshot := hs.store.Snapshot()
	if snapshot == nil {
		result["status"] = "degraded"
		result["dataset_loaded"] = false
		return result
	}

	result["dataset_loaded"] = true
	result["loaded_at"] = snapshot.LoadedAt.UTC().Format(time.RFC3339)
	result["regions"] = len(snapshot.Regions)
	result["observations"] = len(snapshot.Observations)
	result["years"] = map[string]int{
		"min": snapshot.YearMin,
		"max": snapshot.YearMax,
	}
	if snapshot.Geo != nil && len(snapshot.Geo.Failures) > 0 {
		result["geometry_failures"] = snapshot.Geo.FailedCodes()
	}
	return result
}

// ReadinessCheck reports whether the service can answer data queries.
func (hs *HealthService) ReadinessCheck(ctx context.Context) map[string]interface{} {
	if hs.store.Snapshot() == nil {
		return map[string]interface{}{"ready": false, "reason": "dataset not loaded"}
	}
	return map[string]interface{}{"ready": true}
}

// LivenessCheck reports whether the process is alive.
func (hs *HealthService) LivenessCheck(ctx context.Context) map[string]interface{} {
	return map[string]interface{}{"alive": true}
}

// Version returns build version information.
func (hs *HealthService) Version() map[string]string {
	return map[string]string{"version": hs.version}
}
