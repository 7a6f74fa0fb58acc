package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/placeit-be/internal/models"
	"github.com/isdelr/placeit-be/internal/store"
)

// UpstreamReporter exposes the latest upstream probe results.
type UpstreamReporter interface {
	Statuses() []models.UpstreamStatus
}

// ResourceReporter exposes the latest resource sample.
type ResourceReporter interface {
	Latest() models.ResourceSample
}

// HealthService assembles the health report.
type HealthService struct {
	store     store.UserStore
	upstreams UpstreamReporter
	resources ResourceReporter
}

// NewHealthService creates a new HealthService.
func NewHealthService(s store.UserStore, upstreams UpstreamReporter, resources ResourceReporter) *HealthService {
	return &HealthService{store: s, upstreams: upstreams, resources: resources}
}

// Check reports "ok" when the store answers and every upstream is healthy,
// "degraded" when only upstreams fail and "down" when the store fails.
func (s *HealthService) Check(ctx context.Context) models.Health {
	h := models.Health{Status: "ok", Store: s.store.Name()}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.store.Ping(pingCtx); err != nil {
		log.Error().Err(err).Str("store", s.store.Name()).Msg("Credential store ping failed")
		h.Status = "down"
	}

	if s.upstreams != nil {
		h.Upstreams = s.upstreams.Statuses()
		for _, u := range h.Upstreams {
			if !u.Healthy && h.Status == "ok" {
				h.Status = "degraded"
			}
		}
	}
	if s.resources != nil {
		h.Resources = s.resources.Latest()
	}
	return h
}
