// Package geocoder resolves free-text place queries to coordinates.
package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/isdelr/placeit-be/internal/models"
)

// ErrNoResults is returned when the geocoder knows no place for the query.
var ErrNoResults = errors.New("geocoder: no results")

// Geocoder looks up the best match for a free-text query.
type Geocoder interface {
	Search(ctx context.Context, query string) (models.Location, error)
}

// Nominatim is a client for the OpenStreetMap Nominatim search API.
type Nominatim struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// NewNominatim creates a Nominatim client. Nominatim's usage policy requires
// an identifying User-Agent.
func NewNominatim(baseURL, userAgent string, timeout time.Duration) *Nominatim {
	return &Nominatim{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the configured endpoint root.
func (n *Nominatim) BaseURL() string { return n.baseURL }

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Search returns the first hit for query.
func (n *Nominatim) Search(ctx context.Context, query string) (models.Location, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("limit", "1")
	q.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return models.Location{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.http.Do(req)
	if err != nil {
		return models.Location{}, fmt.Errorf("geocoder: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Location{}, fmt.Errorf("geocoder: unexpected status %d", resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return models.Location{}, fmt.Errorf("geocoder: decode: %w", err)
	}
	if len(places) == 0 {
		return models.Location{}, ErrNoResults
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return models.Location{}, fmt.Errorf("geocoder: bad lat %q: %w", places[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return models.Location{}, fmt.Errorf("geocoder: bad lon %q: %w", places[0].Lon, err)
	}
	return models.Location{Lat: lat, Lng: lng, Name: places[0].DisplayName}, nil
}

var _ Geocoder = (*Nominatim)(nil)
