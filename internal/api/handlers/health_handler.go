package handlers

import (
	"context"
	"net/http"

	"github.com/isdelr/placeit-be/internal/httpx"
	"github.com/isdelr/placeit-be/internal/models"
)

// HealthChecker builds the health report.
type HealthChecker interface {
	Check(ctx context.Context) models.Health
}

// HealthHandler serves the health report.
type HealthHandler struct {
	checker HealthChecker
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// Get responds 200 unless the credential store is unreachable.
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	report := h.checker.Check(r.Context())
	status := http.StatusOK
	if report.Status == "down" {
		status = http.StatusServiceUnavailable
	}
	httpx.JSON(w, status, report)
}
