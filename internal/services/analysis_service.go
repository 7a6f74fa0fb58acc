package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/placeit-be/internal/geo"
	"github.com/isdelr/placeit-be/internal/geocoder"
	"github.com/isdelr/placeit-be/internal/maps"
	"github.com/isdelr/placeit-be/internal/models"
	"github.com/isdelr/placeit-be/internal/predictor"
	ws "github.com/isdelr/placeit-be/internal/websocket"
)

// AnalysisServiceProvider defines the interface for location search and analysis.
type AnalysisServiceProvider interface {
	Search(ctx context.Context, query string) (models.SearchResult, error)
	Analyze(ctx context.Context, userID string, req models.PredictionRequest) (models.AnalysisResult, error)
}

// Publisher delivers a notification to a user's live connections.
type Publisher interface {
	Publish(userID string, message []byte)
}

// AnalysisService composes the geocoder, the predictor and the map projections.
type AnalysisService struct {
	geocoder  geocoder.Geocoder
	predictor predictor.Predictor
	publisher Publisher
	validate  *validator.Validate
}

// NewAnalysisService creates a new AnalysisService. publisher may be nil.
func NewAnalysisService(g geocoder.Geocoder, p predictor.Predictor, publisher Publisher) *AnalysisService {
	return &AnalysisService{
		geocoder:  g,
		predictor: p,
		publisher: publisher,
		validate:  validator.New(),
	}
}

// Search geocodes query and attaches the region advisory.
func (s *AnalysisService) Search(ctx context.Context, query string) (models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.SearchResult{}, clientError(ErrValidation, "Search query is required.")
	}

	loc, err := s.geocoder.Search(ctx, query)
	if err != nil {
		if errors.Is(err, geocoder.ErrNoResults) {
			return models.SearchResult{}, clientError(ErrNotFound, MsgLocationNotFound)
		}
		log.Error().Err(err).Str("query", query).Msg("Geocoder lookup failed")
		return models.SearchResult{}, clientError(ErrUpstream, "Failed to fetch location.")
	}

	return models.SearchResult{Location: loc, Warning: geo.RegionWarning(loc.Lat, loc.Lng)}, nil
}

// Analyze asks the predictor to score points within the radius and builds the
// map projection of the answer.
func (s *AnalysisService) Analyze(ctx context.Context, userID string, req models.PredictionRequest) (models.AnalysisResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.AnalysisResult{}, clientError(ErrValidation, validationMessage(err))
	}

	preds, err := s.predictor.PredictCircle(ctx, req)
	if err != nil {
		log.Error().Err(err).
			Float64("lat", req.Latitude).Float64("lng", req.Longitude).Float64("radius_km", req.RadiusKm).
			Msg("Prediction request failed")
		return models.AnalysisResult{}, clientError(ErrUpstream, "An error occurred during prediction.")
	}

	center := models.Location{Lat: req.Latitude, Lng: req.Longitude}
	markers, suitable := maps.Summarize(preds)
	result := models.AnalysisResult{
		Center:        center,
		RadiusKm:      req.RadiusKm,
		Circle:        geo.CircleFeature(center, req.RadiusKm),
		Markers:       markers,
		SuitableCount: suitable,
		Total:         len(markers),
		Warning:       geo.RegionWarning(center.Lat, center.Lng),
	}

	if s.publisher != nil && userID != "" {
		s.publisher.Publish(userID, ws.Encode(ws.ActionAnalysisComplete, map[string]interface{}{
			"center":        center,
			"radiusKm":      req.RadiusKm,
			"suitableCount": suitable,
			"total":         len(markers),
			"summary":       maps.SummaryText(suitable, len(markers)),
		}))
	}

	log.Info().Str("user_id", userID).Int("total", len(markers)).Int("suitable", suitable).Msg("Analysis complete")
	return result, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request."
	}
	switch verrs[0].Field() {
	case "RadiusKm":
		return "Radius must be greater than 0 and at most 50 km."
	case "Latitude":
		return "Latitude must be between -90 and 90."
	case "Longitude":
		return "Longitude must be between -180 and 180."
	}
	return fmt.Sprintf("Invalid value for %s.", verrs[0].Field())
}

var _ AnalysisServiceProvider = (*AnalysisService)(nil)
