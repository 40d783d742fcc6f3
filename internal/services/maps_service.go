package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bloodlink/internal/models"

	"googlemaps.github.io/maps"
)

var ErrNoAPIKey = errors.New("GOOGLE_MAPS_API_KEY not set")

// MapsService geocodes hospital addresses
type MapsService struct {
	client *maps.Client
}

// NewMapsService returns ErrNoAPIKey when apiKey is empty
func NewMapsService(apiKey string) (*MapsService, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &MapsService{client: client}, nil
}

// Geocode resolves a free-form address to its best match
func (s *MapsService) Geocode(ctx context.Context, address string) (*models.GeoPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	results, err := s.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no geocoding result for %q", address)
	}

	best := results[0]
	return &models.GeoPoint{
		PlaceID:          best.PlaceID,
		FormattedAddress: best.FormattedAddress,
		Latitude:         best.Geometry.Location.Lat,
		Longitude:        best.Geometry.Location.Lng,
	}, nil
}
