package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/placeit-be/internal/auth"
	"github.com/isdelr/placeit-be/internal/geo"
	"github.com/isdelr/placeit-be/internal/httpx"
	"github.com/isdelr/placeit-be/internal/maps"
	"github.com/isdelr/placeit-be/internal/models"
	"github.com/isdelr/placeit-be/internal/services"
)

// AnalysisObserver records the outcome of analysis runs.
type AnalysisObserver interface {
	ObserveAnalysis(suitable, total int)
}

// AnalysisHandler handles location search, analysis and map configuration.
type AnalysisHandler struct {
	service     services.AnalysisServiceProvider
	observer    AnalysisObserver
	mapTilerKey string
}

// NewAnalysisHandler creates a new AnalysisHandler. observer may be nil.
func NewAnalysisHandler(service services.AnalysisServiceProvider, observer AnalysisObserver, mapTilerKey string) *AnalysisHandler {
	return &AnalysisHandler{service: service, observer: observer, mapTilerKey: mapTilerKey}
}

// Search geocodes the q query parameter.
func (h *AnalysisHandler) Search(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

// Analyze runs a suitability analysis for the posted centre and radius.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req models.PredictionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var userID string
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		userID = claims.UserID
	}

	result, err := h.service.Analyze(r.Context(), userID, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if h.observer != nil {
		h.observer.ObserveAnalysis(result.SuitableCount, result.Total)
	}
	httpx.JSON(w, http.StatusOK, result)
}

// MapStyle is a style entry with its resolved document URL.
type MapStyle struct {
	maps.Style
	URL string `json:"url"`
}

// MapConfig is what a map view needs to initialise itself.
type MapConfig struct {
	Center       models.Location `json:"center"`
	DefaultZoom  int             `json:"defaultZoom"`
	FocusZoom    int             `json:"focusZoom"`
	DefaultStyle string          `json:"defaultStyle"`
	Styles       []MapStyle      `json:"styles"`
	MaxRadiusKm  float64         `json:"maxRadiusKm"`
}

// GetMapConfig returns the default centre and the selectable tile styles.
func (h *AnalysisHandler) GetMapConfig(w http.ResponseWriter, r *http.Request) {
	cfg := MapConfig{
		Center:       geo.DefaultLocation,
		DefaultZoom:  12,
		FocusZoom:    14,
		DefaultStyle: maps.DefaultStyle,
		MaxRadiusKm:  50,
	}
	for _, s := range maps.Styles {
		u, err := maps.StyleURL(s.ID, h.mapTilerKey)
		if err != nil {
			log.Error().Err(err).Str("style", s.ID).Msg("Failed to build style URL")
			continue
		}
		cfg.Styles = append(cfg.Styles, MapStyle{Style: s, URL: u})
	}
	httpx.JSON(w, http.StatusOK, cfg)
}
