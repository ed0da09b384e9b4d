package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"sync"
	"time"

	"backend-touristsafety/internal/db"
	"backend-touristsafety/internal/geolocation"
	"backend-touristsafety/internal/identity"
	"backend-touristsafety/internal/logger"
	"backend-touristsafety/internal/metrics"
	"backend-touristsafety/internal/stream"
	"backend-touristsafety/internal/zones"
)

var (
	ErrDeviceNotFound  = errors.New("device is not being tracked")
	ErrDeviceOwned     = errors.New("device is tracked by another user")
	ErrDeviceStopped   = errors.New("device tracking stopped")
	ErrInvalidDevice   = errors.New("invalid device id")
	ErrInvalidFix      = errors.New("fix coordinates out of range")
	ErrHistoryDisabled = errors.New("fix history requires postgres")
)

var deviceIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// Service keeps one safety tracking watch per device. Uploaded fixes feed the
// device's position platform and every resulting SafetyUpdate goes to the hub.
type Service struct {
	db    db.Querier
	hub   *stream.Hub
	zones zones.Source
	now   func() time.Time
	opts  geolocation.Options

	mu      sync.Mutex
	devices map[string]*device
}

type device struct {
	userID  string
	started time.Time
	feed    *geolocation.FeedPlatform
	watch   *geolocation.Watch
	fixes   int
	last    *geolocation.SafetyUpdate
}

type Option func(*Service)

// WithLocationOptions sets the position options used for every device watch.
func WithLocationOptions(o geolocation.Options) Option {
	return func(s *Service) { s.opts = o }
}

// NewService wires tracking to an optional fix log (q may be nil) and an optional hub.
func NewService(q db.Querier, hub *stream.Hub, src zones.Source, opts ...Option) *Service {
	s := &Service{
		db:      q,
		hub:     hub,
		zones:   src,
		now:     time.Now,
		opts:    geolocation.DefaultOptions,
		devices: map[string]*device{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddFix records a fix for deviceID and classifies it against the safety zones.
// The first fix from a device starts its tracking watch. A fix that races with
// StopDevice is logged but not tracked, and ErrDeviceStopped is returned.
func (s *Service) AddFix(ctx context.Context, deviceID, userID string, fix Fix) (Fix, error) {
	if !deviceIDPattern.MatchString(deviceID) {
		return Fix{}, ErrInvalidDevice
	}
	fix.DeviceID = deviceID
	fix.UserID = userID
	if fix.RecordedAt.IsZero() {
		fix.RecordedAt = s.now()
	}
	if !fix.position().LatLng().Valid() {
		return Fix{}, ErrInvalidFix
	}

	dev, err := s.ensureDevice(ctx, deviceID, userID)
	if err != nil {
		return Fix{}, err
	}

	if s.db != nil {
		row := s.db.QueryRow(ctx, `
			INSERT INTO device_fixes (device_id, user_id, lat, lng, accuracy, recorded_at)
			VALUES ($1,$2,$3,$4,$5,$6)
			RETURNING id
		`, fix.DeviceID, fix.UserID, fix.Lat, fix.Lng, fix.Accuracy, fix.RecordedAt)
		if err := row.Scan(&fix.ID); err != nil {
			return Fix{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.devices[deviceID] != dev {
		return Fix{}, ErrDeviceStopped
	}
	dev.fixes++
	metrics.FixesTotal.Inc()
	dev.feed.Publish(fix.position())
	return fix, nil
}

// owned returns the tracked device for deviceID, checking it belongs to userID.
// The caller holds s.mu.
func (s *Service) owned(deviceID, userID string) (*device, bool, error) {
	dev, ok := s.devices[deviceID]
	if !ok {
		return nil, false, nil
	}
	if dev.userID != userID {
		return nil, true, ErrDeviceOwned
	}
	return dev, true, nil
}

func (s *Service) ensureDevice(ctx context.Context, deviceID, userID string) (*device, error) {
	s.mu.Lock()
	dev, ok, err := s.owned(deviceID, userID)
	s.mu.Unlock()
	if ok {
		return dev, err
	}

	// Zones may come from postgres, so they are loaded without holding the lock.
	zs, err := s.zones.Zones(ctx, zones.KindSafety)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if dev, ok, err := s.owned(deviceID, userID); ok {
		return dev, err
	}

	dev = &device{
		userID:  userID,
		started: s.now(),
		feed:    geolocation.NewFeedPlatform(),
	}
	locator := geolocation.New(dev.feed, geolocation.WithOptions(s.opts))
	watch, err := locator.StartSafetyTracking(context.Background(), zs, func(u geolocation.SafetyUpdate) {
		s.onUpdate(deviceID, dev, u)
	})
	if err != nil {
		return nil, err
	}
	dev.watch = watch
	s.devices[deviceID] = dev
	logger.L().Info("tracking_started", "device_id", deviceID, "user_id", userID, "zones", len(zs))
	return dev, nil
}

func (s *Service) onUpdate(deviceID string, dev *device, u geolocation.SafetyUpdate) {
	s.mu.Lock()
	dev.last = &u
	s.mu.Unlock()

	if u.NearestZone != nil && !u.NearestZone.Inside {
		logger.L().Debug("device_outside_zone", "device_id", deviceID, "nearest", u.NearestZone.ID, "distance_km", u.NearestZone.DistanceKm)
	}
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(u)
	if err != nil {
		logger.L().Error("safety_update_encode_failed", "device_id", deviceID, "err", err)
		return
	}
	s.hub.Broadcast(deviceID, payload)
}

// StopDevice ends tracking for deviceID. Only the owner or police may stop it.
func (s *Service) StopDevice(deviceID, userID string, role identity.Role) error {
	s.mu.Lock()
	dev, ok := s.devices[deviceID]
	if !ok {
		s.mu.Unlock()
		return ErrDeviceNotFound
	}
	if dev.userID != userID && role != identity.RolePolice {
		s.mu.Unlock()
		return ErrDeviceOwned
	}
	delete(s.devices, deviceID)
	s.mu.Unlock()

	dev.watch.Stop()
	if s.hub != nil {
		s.hub.Forget(deviceID)
	}
	logger.L().Info("tracking_stopped", "device_id", deviceID, "by", userID)
	return nil
}

// Authorize reports whether userID may see deviceID. Police may see any device;
// a tourist only a device they are tracking.
func (s *Service) Authorize(deviceID, userID string, role identity.Role) error {
	if role == identity.RolePolice {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	dev, ok := s.devices[deviceID]
	if !ok {
		return ErrDeviceNotFound
	}
	if dev.userID != userID {
		return ErrDeviceOwned
	}
	return nil
}

func (s *Service) Status(deviceID string) (DeviceStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dev, ok := s.devices[deviceID]
	if !ok {
		return DeviceStatus{}, ErrDeviceNotFound
	}
	return dev.status(deviceID), nil
}

// LastPosition is the latest fix of deviceID when userID is tracking it.
func (s *Service) LastPosition(deviceID, userID string) (geolocation.Position, bool) {
	s.mu.Lock()
	dev, ok := s.devices[deviceID]
	s.mu.Unlock()
	if !ok || dev.userID != userID {
		return geolocation.Position{}, false
	}
	return dev.feed.Latest()
}

// Devices lists every tracked device.
func (s *Service) Devices() []DeviceStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]DeviceStatus, 0, len(s.devices))
	for id, dev := range s.devices {
		out = append(out, dev.status(id))
	}
	return out
}

func (d *device) status(deviceID string) DeviceStatus {
	return DeviceStatus{
		DeviceID:   deviceID,
		UserID:     d.userID,
		StartedAt:  d.started,
		FixCount:   d.fixes,
		LastUpdate: d.last,
	}
}

// Fixes returns the logged fixes of a device in recording order. Tourists only
// see fixes they reported themselves.
func (s *Service) Fixes(ctx context.Context, deviceID, userID string, role identity.Role) ([]Fix, error) {
	if s.db == nil {
		return nil, ErrHistoryDisabled
	}
	reporter := userID
	if role == identity.RolePolice {
		reporter = ""
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, device_id, user_id, lat, lng, COALESCE(accuracy,0), recorded_at
		FROM device_fixes WHERE device_id=$1 AND ($2 = '' OR user_id=$2)
		ORDER BY recorded_at
	`, deviceID, reporter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fixes []Fix
	for rows.Next() {
		var f Fix
		if err := rows.Scan(&f.ID, &f.DeviceID, &f.UserID, &f.Lat, &f.Lng, &f.Accuracy, &f.RecordedAt); err != nil {
			return nil, err
		}
		fixes = append(fixes, f)
	}
	return fixes, rows.Err()
}

// Close stops every device watch.
func (s *Service) Close() {
	s.mu.Lock()
	devs := s.devices
	s.devices = map[string]*device{}
	s.mu.Unlock()

	for _, dev := range devs {
		dev.watch.Stop()
	}
}
