package maps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/placeit-be/internal/models"
)

func TestStyleURL(t *testing.T) {
	u, err := StyleURL("satellite", "k3y")
	require.NoError(t, err)
	assert.Equal(t, "https://api.maptiler.com/maps/satellite/style.json?key=k3y", u)

	_, err = StyleURL("watercolor", "k3y")
	require.Error(t, err)

	_, err = StyleURL(DefaultStyle, "")
	require.NoError(t, err)
}

func TestMarkerFor(t *testing.T) {
	cases := []struct {
		in     models.Prediction
		color  string
		status string
		label  string
		pct    int
	}{
		{models.Prediction{IsSuitable: true, SuitabilityScore: 0.874, PlaceName: "Esplanade One"}, SuitableColor, "Suitable", "Esplanade One", 87},
		{models.Prediction{IsSuitable: false, SuitabilityScore: 0.416, PlaceName: "Open Area"}, UnsuitableColor, "Not Suitable", "Place type: Open Area", 42},
		{models.Prediction{IsSuitable: false, SuitabilityScore: 0.2, PlaceName: "Unnamed Place"}, UnsuitableColor, "Not Suitable", "Place type: Unnamed Place", 20},
		{models.Prediction{IsSuitable: true, SuitabilityScore: 0.99}, SuitableColor, "Suitable", "Analyzed Point", 99},
	}
	for _, tc := range cases {
		m := MarkerFor(tc.in)
		assert.Equal(t, tc.color, m.Color)
		assert.Equal(t, tc.status, m.Status)
		assert.Equal(t, tc.label, m.Label)
		assert.Equal(t, tc.pct, m.ScorePercent)
	}
}

func TestSummarize(t *testing.T) {
	preds := []models.Prediction{
		{IsSuitable: true, Latitude: 1, Longitude: 2},
		{IsSuitable: false},
		{IsSuitable: true},
	}
	markers, suitable := Summarize(preds)
	require.Len(t, markers, 3)
	assert.Equal(t, 2, suitable)
	assert.Equal(t, 1.0, markers[0].Lat)
	assert.Equal(t, 2.0, markers[0].Lng)
	assert.Equal(t, "Analysis Complete! 2 suitable found out of 3 points.", SummaryText(suitable, len(markers)))

	empty, n := Summarize(nil)
	assert.NotNil(t, empty)
	assert.Zero(t, n)
}
