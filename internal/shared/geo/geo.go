package geo

import (
	"math"
	"strconv"

	"github.com/golang/geo/s2"
)

// EarthRadiusKm is the mean Earth radius used for all distance figures.
const EarthRadiusKm = 6371.0

// LatLng is a WGS84 coordinate in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HaversineKm returns the great-circle distance between two coordinates in kilometers.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lng1)
	p2 := s2.LatLngFromDegrees(lat2, lng2)
	return p1.Distance(p2).Radians() * EarthRadiusKm
}

// DistanceKm is HaversineKm over LatLng values.
func DistanceKm(a, b LatLng) float64 {
	return HaversineKm(a.Lat, a.Lng, b.Lat, b.Lng)
}

// PointInPolygon runs an even-odd ray cast with latitude as x and longitude as y.
//
// Boundary points are not special-cased: each edge is treated as half-open, so a
// point on the edge may land on either side depending on its orientation and
// rounding. For the square (0,0),(0,1),(1,1),(1,0) the corner (0,0) counts as
// inside and (1,1) as outside.
func PointInPolygon(p LatLng, polygon []LatLng) bool {
	inside := false
	x, y := p.Lat, p.Lng
	for i, j := 0, len(polygon)-1; i < len(polygon); j, i = i, i+1 {
		xi, yi := polygon[i].Lat, polygon[i].Lng
		xj, yj := polygon[j].Lat, polygon[j].Lng
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// Centroid is the arithmetic mean of the vertices, not the area centroid.
// It returns false for an empty vertex list.
func Centroid(vertices []LatLng) (LatLng, bool) {
	if len(vertices) == 0 {
		return LatLng{}, false
	}
	var lat, lng float64
	for _, v := range vertices {
		lat += v.Lat
		lng += v.Lng
	}
	n := float64(len(vertices))
	return LatLng{Lat: lat / n, Lng: lng / n}, true
}

// FormatCoordinates renders "lat, lng" with a fixed number of decimals.
func FormatCoordinates(p LatLng, precision int) string {
	if precision < 0 {
		precision = 6
	}
	return strconv.FormatFloat(p.Lat, 'f', precision, 64) + ", " + strconv.FormatFloat(p.Lng, 'f', precision, 64)
}

// Valid reports whether the coordinate is inside the WGS84 range.
func (p LatLng) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lng) &&
		p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}
