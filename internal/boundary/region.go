package boundary

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"everglades-dss/grower-portal/grower-portal-backend/pkg/geospatial"
)

// Region is the eligible growing area: a unioned multi-polygon in
// geographic (lon/lat, WGS84) coordinates with its bounding box and
// centroid. Built once at startup and shared read-only.
type Region struct {
	Geometry orb.MultiPolygon
	Bound    orb.Bound
	Centroid orb.Point
}

// Contains reports whether the coordinate falls inside the region.
// Points exactly on the boundary count as inside.
func (r *Region) Contains(lon, lat float64) bool {
	return planar.MultiPolygonContains(r.Geometry, orb.Point{lon, lat})
}

// AreaHectares measures a geometry's surface in hectares, rounded to one
// decimal place. Area is computed geodesically on the geographic
// coordinates rather than on the lon/lat plane.
func AreaHectares(geometry orb.Geometry) float64 {
	return geospatial.RoundHectares(geospatial.ToHectares(geospatial.AreaSquareMeters(geometry)))
}
