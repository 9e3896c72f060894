// Package geocode resolves city names to coordinates.
package geocode

import (
	"context"
	"errors"
)

var (
	ErrNotFound   = errors.New("location not found")
	ErrEmptyQuery = errors.New("empty location query")
	ErrUpstream   = errors.New("geocoder unavailable")
)

type Location struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"display_name"`
}

type Geocoder interface {
	Geocode(ctx context.Context, query string) (Location, error)
}
