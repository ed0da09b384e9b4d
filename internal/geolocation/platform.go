package geolocation

import (
	"context"
	"time"

	"backend-touristsafety/internal/shared/geo"
)

type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

// DefaultOptions asks for a high accuracy fix within 10s and accepts one up to a minute old.
var DefaultOptions = Options{
	HighAccuracy: true,
	Timeout:      10 * time.Second,
	MaximumAge:   60 * time.Second,
}

type Position struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

func (p Position) LatLng() geo.LatLng {
	return geo.LatLng{Lat: p.Lat, Lng: p.Lng}
}

// Reading is one event on a watch: a fix or a failure.
type Reading struct {
	Position Position
	Err      error
}

// Platform is the device location provider.
//
// WatchPosition delivers readings until ctx is done and then closes the channel.
type Platform interface {
	CurrentPosition(ctx context.Context, opts Options) (Position, error)
	WatchPosition(ctx context.Context, opts Options) (<-chan Reading, error)
}

type PermissionState string

const (
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
	PermissionPrompt  PermissionState = "prompt"
	PermissionUnknown PermissionState = "unknown"
)

// PermissionQuerier is implemented by platforms that can report their permission state.
type PermissionQuerier interface {
	Permission(ctx context.Context) (PermissionState, error)
}
