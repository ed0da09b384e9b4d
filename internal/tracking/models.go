package tracking

import (
	"time"

	"backend-touristsafety/internal/geolocation"
)

// Fix is one position report uploaded by a tourist device.
type Fix struct {
	ID         int64     `json:"id,omitempty"`
	DeviceID   string    `json:"deviceId"`
	UserID     string    `json:"userId,omitempty"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Accuracy   float64   `json:"accuracy"`
	RecordedAt time.Time `json:"recordedAt"`
}

func (f Fix) position() geolocation.Position {
	return geolocation.Position{Lat: f.Lat, Lng: f.Lng, Accuracy: f.Accuracy, Timestamp: f.RecordedAt}
}

type DeviceStatus struct {
	DeviceID   string                    `json:"deviceId"`
	UserID     string                    `json:"userId"`
	StartedAt  time.Time                 `json:"startedAt"`
	FixCount   int                       `json:"fixCount"`
	LastUpdate *geolocation.SafetyUpdate `json:"lastUpdate,omitempty"`
}
