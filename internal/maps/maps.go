// Package maps builds the map-facing projections: tile style URLs and the
// markers plotted for each prediction.
package maps

import (
	"fmt"
	"math"
	"net/url"

	"github.com/isdelr/placeit-be/internal/models"
)

// DefaultStyle is the style a new map opens with.
const DefaultStyle = "streets-v2"

// Style is a selectable MapTiler style.
type Style struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Styles lists the styles offered in the style picker, in display order.
var Styles = []Style{
	{ID: "streets-v2", Label: "Streets"},
	{ID: "outdoor-v2", Label: "Outdoor"},
	{ID: "satellite", Label: "Satellite View"},
	{ID: "darkmatter", Label: "Dark Matter"},
	{ID: "bright-v2", Label: "Bright"},
	{ID: "basic-v2", Label: "Basic"},
}

const styleBaseURL = "https://api.maptiler.com/maps/"

// StyleURL returns the MapTiler style document URL for style.
func StyleURL(style, key string) (string, error) {
	if !knownStyle(style) {
		return "", fmt.Errorf("unknown map style %q", style)
	}
	return styleBaseURL + url.PathEscape(style) + "/style.json?key=" + url.QueryEscape(key), nil
}

func knownStyle(id string) bool {
	for _, s := range Styles {
		if s.ID == id {
			return true
		}
	}
	return false
}

// Marker colours.
const (
	SuitableColor   = "#00742b"
	UnsuitableColor = "#a40d0d"
)

// MarkerFor projects a prediction into what the map shows for it.
func MarkerFor(p models.Prediction) models.Marker {
	m := models.Marker{
		Lat:          p.Latitude,
		Lng:          p.Longitude,
		Suitable:     p.IsSuitable,
		Color:        UnsuitableColor,
		Status:       "Not Suitable",
		Label:        displayLabel(p.PlaceName),
		ScorePercent: int(math.Round(p.SuitabilityScore * 100)),
	}
	if p.IsSuitable {
		m.Color = SuitableColor
		m.Status = "Suitable"
	}
	return m
}

func displayLabel(place string) string {
	switch place {
	case "":
		return "Analyzed Point"
	case "Open Area", "Unnamed Place":
		return "Place type: " + place
	default:
		return place
	}
}

// Summarize projects all predictions and counts the suitable ones.
func Summarize(preds []models.Prediction) (markers []models.Marker, suitable int) {
	markers = make([]models.Marker, 0, len(preds))
	for _, p := range preds {
		m := MarkerFor(p)
		if m.Suitable {
			suitable++
		}
		markers = append(markers, m)
	}
	return markers, suitable
}

// SummaryText is the one-line analysis outcome shown after a run.
func SummaryText(suitable, total int) string {
	return fmt.Sprintf("Analysis Complete! %d suitable found out of %d points.", suitable, total)
}
