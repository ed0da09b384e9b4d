package geolocation

import (
	"context"

	"backend-touristsafety/internal/shared/geo"
)

// Geocoder turns coordinates into a human readable place.
type Geocoder interface {
	Address(ctx context.Context, lat, lng float64) (string, error)
}

type Landmark struct {
	Position geo.LatLng
	Address  string
}

// landmarkRadiusKm is how close a position must be to be reported as the landmark itself.
const landmarkRadiusKm = 0.5

var DefaultLandmarks = []Landmark{
	{Position: geo.LatLng{Lat: 28.6139, Lng: 77.2090}, Address: "India Gate, New Delhi"},
	{Position: geo.LatLng{Lat: 28.6507, Lng: 77.2334}, Address: "Red Fort, Old Delhi"},
	{Position: geo.LatLng{Lat: 28.5245, Lng: 77.1855}, Address: "Qutub Minar, Mehrauli"},
	{Position: geo.LatLng{Lat: 28.6562, Lng: 77.2410}, Address: "Jama Masjid, Old Delhi"},
	{Position: geo.LatLng{Lat: 28.6127, Lng: 77.2773}, Address: "Lotus Temple, Kalkaji"},
}

// LandmarkGeocoder names a position after the closest entry of a fixed landmark table.
type LandmarkGeocoder struct {
	landmarks []Landmark
}

func NewLandmarkGeocoder(landmarks ...Landmark) *LandmarkGeocoder {
	if len(landmarks) == 0 {
		landmarks = DefaultLandmarks
	}
	return &LandmarkGeocoder{landmarks: landmarks}
}

// Address never fails: within 500 m it returns the landmark address, otherwise "Near <address>".
func (g *LandmarkGeocoder) Address(_ context.Context, lat, lng float64) (string, error) {
	p := geo.LatLng{Lat: lat, Lng: lng}
	closest := g.landmarks[0]
	minDist := geo.DistanceKm(p, closest.Position)
	for _, lm := range g.landmarks[1:] {
		if d := geo.DistanceKm(p, lm.Position); d < minDist {
			minDist = d
			closest = lm
		}
	}
	if minDist < landmarkRadiusKm {
		return closest.Address, nil
	}
	return "Near " + closest.Address, nil
}
