// Package geo holds the small amount of geometry the analysis view needs:
// the radius polygon drawn over the map, the supported-region heuristic and a
// great-circle distance.
package geo

import (
	"math"

	"github.com/isdelr/placeit-be/internal/models"
)

const (
	// CirclePoints is the number of distinct vertices in a radius polygon.
	CirclePoints = 64

	kmPerDegreeLat = 110.54
	kmPerDegreeLng = 111.32
	earthRadiusKm  = 6371.0088
)

// DefaultRadiusKm is the radius offered before the user picks one.
const DefaultRadiusKm = 2.5

// DefaultLocation is the map centre used before any search.
var DefaultLocation = models.Location{Lat: 20.2961, Lng: 85.8245, Name: "Bhubaneswar (Default)"}

// Circle approximates a circle of radiusKm around center as CirclePoints
// [lng, lat] vertices followed by a copy of the first vertex. Longitude
// offsets are scaled by 1/cos(lat).
func Circle(center models.Location, radiusKm float64) [][2]float64 {
	dx := radiusKm / (kmPerDegreeLng * math.Cos(center.Lat*math.Pi/180))
	dy := radiusKm / kmPerDegreeLat

	coords := make([][2]float64, 0, CirclePoints+1)
	for i := 0; i < CirclePoints; i++ {
		theta := float64(i) / CirclePoints * 2 * math.Pi
		coords = append(coords, [2]float64{
			center.Lng + dx*math.Cos(theta),
			center.Lat + dy*math.Sin(theta),
		})
	}
	return append(coords, coords[0])
}

// CircleFeature wraps Circle as a GeoJSON polygon feature.
func CircleFeature(center models.Location, radiusKm float64) models.Feature {
	return models.Feature{
		Type: "Feature",
		Geometry: models.Geometry{
			Type:        "Polygon",
			Coordinates: [][][2]float64{Circle(center, radiusKm)},
		},
	}
}

// Distance returns the haversine distance in kilometres.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLng := (lng2 - lng1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}
