package boundary

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"everglades-dss/grower-portal/grower-portal-backend/pkg/geospatial"
)

// DataLoadError reports a boundary dataset that is missing or unparsable.
// This is fatal: the service has no degraded mode without its region.
type DataLoadError struct {
	Source string
	Err    error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("boundary data load failed for %s: %v", e.Source, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// Load reads the region boundary from a GeoJSON source, repairs and unions
// its polygons, and returns the resulting Region. Called once at startup;
// the result is cached for the process lifetime by the caller.
func Load(path string) (*Region, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DataLoadError{Source: path, Err: err}
	}
	return Parse(path, data)
}

// Parse builds a Region from raw GeoJSON bytes. The payload may be a
// FeatureCollection, a single Feature, or a bare geometry.
func Parse(source string, data []byte) (*Region, error) {
	geoms, err := decodeGeometries(data)
	if err != nil {
		return nil, &DataLoadError{Source: source, Err: err}
	}

	var unified orb.MultiPolygon
	for _, g := range geoms {
		switch geom := g.(type) {
		case orb.Polygon:
			if p := repairPolygon(geom); p != nil {
				unified = append(unified, p)
			}
		case orb.MultiPolygon:
			for _, p := range geom {
				if rp := repairPolygon(p); rp != nil {
					unified = append(unified, rp)
				}
			}
		}
	}
	if len(unified) == 0 {
		return nil, &DataLoadError{Source: source, Err: fmt.Errorf("no usable polygon geometry")}
	}

	return &Region{
		Geometry: unified,
		Bound:    unified.Bound(),
		Centroid: geospatial.Centroid(unified),
	}, nil
}

func decodeGeometries(data []byte) ([]orb.Geometry, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	switch probe.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, err
		}
		var geoms []orb.Geometry
		for _, f := range fc.Features {
			if f.Geometry != nil {
				geoms = append(geoms, f.Geometry)
			}
		}
		return geoms, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, err
		}
		return []orb.Geometry{f.Geometry}, nil
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, err
		}
		return []orb.Geometry{g.Geometry()}, nil
	}
}

// repairPolygon normalizes a polygon the way a zero-distance buffer would:
// rings are closed, degenerate rings are dropped, and ring orientation is
// rewound to the exterior-CCW / interior-CW convention. Returns nil when
// the outer ring is unusable.
func repairPolygon(p orb.Polygon) orb.Polygon {
	var repaired orb.Polygon
	for i, ring := range p {
		r := closeRing(ring)
		if len(r) < 4 {
			if i == 0 {
				return nil
			}
			continue
		}
		exterior := len(repaired) == 0
		if exterior && r.Orientation() == orb.CW {
			r.Reverse()
		}
		if !exterior && r.Orientation() == orb.CCW {
			r.Reverse()
		}
		repaired = append(repaired, r)
	}
	return repaired
}

func closeRing(ring orb.Ring) orb.Ring {
	if len(ring) == 0 {
		return ring
	}
	if ring[0] != ring[len(ring)-1] {
		ring = append(orb.Ring{}, ring...)
		ring = append(ring, ring[0])
	}
	return ring
}
