package geo

// RegionWarningText is shown for searches outside the supported regions.
const RegionWarningText = "The analysis is currently optimized for South and East India. Results for other regions may be limited."

// Box is an open/half-open latitude-longitude rectangle.
type Box struct {
	Name            string
	MinLat, MaxLat  float64
	MinLng, MaxLng  float64
	MinLatInclusive bool
}

// Contains reports whether (lat, lng) lies inside b.
func (b Box) Contains(lat, lng float64) bool {
	latOK := lat > b.MinLat
	if b.MinLatInclusive {
		latOK = lat >= b.MinLat
	}
	return latOK && lat < b.MaxLat && lng > b.MinLng && lng < b.MaxLng
}

// SupportedRegions are the areas the predictor has data for.
var SupportedRegions = []Box{
	{Name: "South India", MinLat: 8.0, MaxLat: 19.0, MinLng: 74.0, MaxLng: 85.0},
	{Name: "East India", MinLat: 19.0, MaxLat: 27.0, MinLng: 80.0, MaxLng: 89.5, MinLatInclusive: true},
}

// InSupportedRegion reports whether the point falls inside any supported box.
func InSupportedRegion(lat, lng float64) bool {
	for _, b := range SupportedRegions {
		if b.Contains(lat, lng) {
			return true
		}
	}
	return false
}

// RegionWarning returns the advisory for points outside the supported
// regions, or "" when the point is covered. It never blocks a request.
func RegionWarning(lat, lng float64) string {
	if InSupportedRegion(lat, lng) {
		return ""
	}
	return RegionWarningText
}
