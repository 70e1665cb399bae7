package geospatial

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// ErrNoGeometry reports that a payload carried no geometry at all, as
// opposed to carrying one that failed to parse.
var ErrNoGeometry = errors.New("no geometry present")

// ErrInvalidGeometry reports a geometry payload that was present but could
// not be decoded into a usable shape.
var ErrInvalidGeometry = errors.New("invalid geometry")

// ParseGeometry decodes a GeoJSON geometry payload. An empty payload yields
// ErrNoGeometry; a malformed one yields an error wrapping ErrInvalidGeometry.
func ParseGeometry(raw json.RawMessage) (orb.Geometry, error) {
	if len(raw) == 0 {
		return nil, ErrNoGeometry
	}

	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}
	geom := g.Geometry()
	if geom == nil {
		return nil, ErrNoGeometry
	}
	return geom, nil
}

// Centroid calculates the centroid of a geometry.
func Centroid(geometry orb.Geometry) orb.Point {
	centroid, _ := planar.CentroidArea(geometry)
	return centroid
}

// AreaSquareMeters calculates the geodesic area of a geometry in square
// meters. Geographic (lon/lat) coordinates are expected.
func AreaSquareMeters(geometry orb.Geometry) float64 {
	return geo.Area(geometry)
}

// ToHectares converts square meters to hectares.
func ToHectares(sqMeters float64) float64 {
	return sqMeters / 10000
}

// RoundHectares rounds a hectare figure to one decimal place.
func RoundHectares(ha float64) float64 {
	return math.Round(ha*10) / 10
}
