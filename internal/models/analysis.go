package models

// Location is a geocoded point with a human readable name.
type Location struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name"`
}

// PredictionRequest is the body sent to the external prediction endpoint.
type PredictionRequest struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	RadiusKm  float64 `json:"radius_km" validate:"gt=0,lte=50"`
}

// Prediction is a single candidate point scored by the external predictor.
type Prediction struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	IsSuitable       bool    `json:"is_suitable"`
	SuitabilityScore float64 `json:"suitability_score"`
	PlaceName        string  `json:"place_name"`
}

// Marker is the display projection of a Prediction.
type Marker struct {
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Suitable     bool    `json:"suitable"`
	Color        string  `json:"color"`
	Status       string  `json:"status"`
	Label        string  `json:"label"`
	ScorePercent int     `json:"scorePercent"`
}

// Feature is a minimal GeoJSON feature carrying a single polygon.
type Feature struct {
	Type     string   `json:"type"`
	Geometry Geometry `json:"geometry"`
}

// Geometry is a GeoJSON polygon geometry. Coordinates are [lng, lat] pairs.
type Geometry struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

// AnalysisResult is everything a client needs to render one analysis run.
type AnalysisResult struct {
	Center        Location `json:"center"`
	RadiusKm      float64  `json:"radiusKm"`
	Circle        Feature  `json:"circle"`
	Markers       []Marker `json:"markers"`
	SuitableCount int      `json:"suitableCount"`
	Total         int      `json:"total"`
	Warning       string   `json:"warning,omitempty"`
}

// SearchResult is a geocoded location plus the region advisory, if any.
type SearchResult struct {
	Location Location `json:"location"`
	Warning  string   `json:"warning,omitempty"`
}
