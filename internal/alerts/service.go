package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"backend-touristsafety/internal/geolocation"
	"backend-touristsafety/internal/logger"
	"backend-touristsafety/internal/metrics"
	"backend-touristsafety/internal/shared/geo"
	"backend-touristsafety/internal/stream"
)

const defaultSOSMessage = "URGENT: Tourist requiring immediate assistance"

var (
	ErrInvalidLocation   = errors.New("alert location out of range")
	ErrInvalidStatus     = errors.New("unknown alert status")
	ErrInvalidTransition = errors.New("alert status cannot move backwards")
	ErrNoneSelected      = errors.New("no alerts selected")
)

// fallbackLocation is used when an SOS carries no position and none is tracked.
var fallbackLocation = Location{Lat: 28.6139, Lng: 77.2090, Address: "Location unavailable"}

// Positions resolves the last tracked position of a device owned by userID.
type Positions interface {
	LastPosition(deviceID, userID string) (geolocation.Position, bool)
}

type Service struct {
	store     Store
	hub       *stream.Hub
	positions Positions
	locator   *geolocation.Service
	now       func() time.Time
}

type Option func(*Service)

func WithHub(h *stream.Hub) Option {
	return func(s *Service) { s.hub = h }
}

func WithPositions(p Positions) Option {
	return func(s *Service) { s.positions = p }
}

func WithGeocoder(g geolocation.Geocoder) Option {
	return func(s *Service) { s.locator = geolocation.New(nil, geolocation.WithGeocoder(g)) }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		locator: geolocation.New(nil),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendSOS raises a critical SOS alert for userID. The alert is located from the
// request coordinates, then the device's last fix, then a fixed fallback.
func (s *Service) SendSOS(ctx context.Context, userID string, req SOSRequest) (Alert, error) {
	loc, err := s.locate(ctx, userID, req)
	if err != nil {
		return Alert{}, err
	}

	emergency := strings.ToLower(strings.TrimSpace(req.Emergency))
	if emergency == "" {
		emergency = "general"
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		msg = defaultSOSMessage
	}

	a, err := s.store.Create(ctx, Alert{
		Type:        TypeSOS,
		Emergency:   emergency,
		TouristID:   userID,
		TouristName: req.TouristName,
		DeviceID:    req.DeviceID,
		Message:     msg,
		Location:    loc,
		Timestamp:   s.now(),
		Status:      StatusActive,
		Priority:    PriorityCritical,
	})
	if err != nil {
		return Alert{}, err
	}

	metrics.AlertsRaisedTotal.WithLabelValues(string(a.Type)).Inc()
	logger.L().Warn("sos_alert_raised", "alert_id", a.ID, "tourist_id", userID, "emergency", emergency,
		"lat", loc.Lat, "lng", loc.Lng)
	s.broadcast(a)
	return a, nil
}

func (s *Service) locate(ctx context.Context, userID string, req SOSRequest) (Location, error) {
	if req.Lat != nil && req.Lng != nil {
		p := geo.LatLng{Lat: *req.Lat, Lng: *req.Lng}
		if !p.Valid() {
			return Location{}, ErrInvalidLocation
		}
		addr := strings.TrimSpace(req.Address)
		if addr == "" {
			addr = s.locator.Address(ctx, p.Lat, p.Lng)
		}
		return Location{Lat: p.Lat, Lng: p.Lng, Address: addr}, nil
	}
	if s.positions != nil && req.DeviceID != "" {
		if pos, ok := s.positions.LastPosition(req.DeviceID, userID); ok {
			return Location{Lat: pos.Lat, Lng: pos.Lng, Address: s.locator.Address(ctx, pos.Lat, pos.Lng)}, nil
		}
	}
	return fallbackLocation, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Alert, error) {
	return s.store.Get(ctx, id)
}

// List returns the alerts selected by f, newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]Alert, error) {
	return s.store.List(ctx, f)
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	all, err := s.store.List(ctx, FilterAll)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Total: len(all)}
	for _, a := range all {
		if FilterActive.Matches(a) {
			sum.Active++
		}
		if FilterCritical.Matches(a) {
			sum.Critical++
		}
		if FilterUnresolved.Matches(a) {
			sum.Unresolved++
		}
	}
	return sum, nil
}

// UpdateStatus moves alert id to status on behalf of officerID, who becomes the
// assigned officer if none is set. Setting the current status is a no-op.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status Status, officerID string) (Alert, error) {
	if _, ok := statusRank[status]; !ok {
		return Alert{}, ErrInvalidStatus
	}
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return Alert{}, err
	}
	if a.Status == status {
		return a, nil
	}
	if !canMove(a.Status, status) {
		return Alert{}, ErrInvalidTransition
	}

	prev := a.Status
	now := s.now()
	a.Status = status
	if a.AssignedOfficer == "" {
		a.AssignedOfficer = officerID
	}
	if a.AcknowledgedAt == nil {
		a.AcknowledgedAt = &now
	}
	if status == StatusResolved {
		a.ResolvedAt = &now
	}
	if err := s.store.Save(ctx, a, prev); err != nil {
		return Alert{}, err
	}

	metrics.AlertStatusChangesTotal.WithLabelValues(string(status)).Inc()
	logger.L().Info("alert_status_changed", "alert_id", id, "from", prev, "to", status, "officer", officerID)
	s.broadcast(a)
	return a, nil
}

type BulkFailure struct {
	ID    int64  `json:"id"`
	Error string `json:"error"`
}

type BulkResult struct {
	Updated []Alert       `json:"updated"`
	Failed  []BulkFailure `json:"failed"`
}

// BulkUpdateStatus applies UpdateStatus to each id. One failing alert does not
// stop the others.
func (s *Service) BulkUpdateStatus(ctx context.Context, ids []int64, status Status, officerID string) (BulkResult, error) {
	if len(ids) == 0 {
		return BulkResult{}, ErrNoneSelected
	}
	if _, ok := statusRank[status]; !ok {
		return BulkResult{}, ErrInvalidStatus
	}

	res := BulkResult{Updated: []Alert{}, Failed: []BulkFailure{}}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		a, err := s.UpdateStatus(ctx, id, status, officerID)
		if err != nil {
			res.Failed = append(res.Failed, BulkFailure{ID: id, Error: err.Error()})
			continue
		}
		res.Updated = append(res.Updated, a)
	}
	return res, nil
}

func (s *Service) broadcast(a Alert) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(a)
	if err != nil {
		logger.L().Error("alert_encode_failed", "alert_id", a.ID, "err", err)
		return
	}
	s.hub.Broadcast(stream.AlertsTopic, payload)
}
