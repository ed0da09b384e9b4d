package geolocation

import (
	"context"
	"strconv"
	"sync"
	"time"

	"backend-touristsafety/internal/logger"
	"backend-touristsafety/internal/metrics"
	"backend-touristsafety/internal/shared/geo"
	"backend-touristsafety/internal/zones"
)

type Service struct {
	platform Platform
	geocoder Geocoder
	opts     Options
	now      func() time.Time

	mu      sync.Mutex
	last    Position
	hasLast bool
	watches map[*Watch]struct{}
}

type Option func(*Service)

func WithGeocoder(g Geocoder) Option {
	return func(s *Service) { s.geocoder = g }
}

func WithOptions(o Options) Option {
	return func(s *Service) { s.opts = o }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New builds a Service over platform. A nil platform yields a service whose
// position operations fail with ErrNotSupported.
func New(platform Platform, opts ...Option) *Service {
	s := &Service{
		platform: platform,
		geocoder: NewLandmarkGeocoder(),
		opts:     DefaultOptions,
		now:      time.Now,
		watches:  make(map[*Watch]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Available() bool {
	return s.platform != nil
}

func (s *Service) Options() Options {
	return s.opts
}

// CurrentPosition requests a single fix. The configured timeout bounds the wait,
// so a silent platform fails with ErrTimeout. Nothing is retried.
func (s *Service) CurrentPosition(ctx context.Context) (Position, error) {
	if s.platform == nil {
		return Position{}, s.fail("current", ErrNotSupported)
	}
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	pos, err := s.platform.CurrentPosition(ctx, s.opts)
	if err != nil {
		return Position{}, s.fail("current", mapError(err))
	}
	s.remember(pos)
	return pos, nil
}

// LastPosition is the most recent fix seen by this service.
func (s *Service) LastPosition() (Position, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.hasLast
}

func (s *Service) remember(pos Position) {
	s.mu.Lock()
	s.last = pos
	s.hasLast = true
	s.mu.Unlock()
}

func (s *Service) fail(op string, err error) error {
	metrics.LocationErrorsTotal.WithLabelValues(errorKind(err)).Inc()
	logger.L().Warn("location_error", "op", op, "err", err)
	return err
}

// StartWatching subscribes to continuous updates. Every call returns an
// independent handle which the caller must Stop; overlapping watches are allowed.
// onError may be nil.
func (s *Service) StartWatching(ctx context.Context, onUpdate func(Position), onError func(error)) (*Watch, error) {
	if s.platform == nil {
		return nil, s.fail("watch", ErrNotSupported)
	}

	wctx, cancel := context.WithCancel(ctx)
	readings, err := s.platform.WatchPosition(wctx, s.opts)
	if err != nil {
		cancel()
		return nil, s.fail("watch", mapError(err))
	}

	w := &Watch{svc: s, cancel: cancel, done: make(chan struct{})}
	s.mu.Lock()
	s.watches[w] = struct{}{}
	s.mu.Unlock()
	metrics.ActiveWatches.Inc()

	go w.run(readings, onUpdate, onError)
	return w, nil
}

// StopWatching stops every watch started by this service. Safe to call repeatedly.
func (s *Service) StopWatching() {
	s.mu.Lock()
	ws := make([]*Watch, 0, len(s.watches))
	for w := range s.watches {
		ws = append(ws, w)
	}
	s.mu.Unlock()

	for _, w := range ws {
		w.Stop()
	}
}

// ActiveWatches reports how many watches have not been stopped.
func (s *Service) ActiveWatches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watches)
}

func (s *Service) Distance(a, b geo.LatLng) float64 {
	return geo.DistanceKm(a, b)
}

func (s *Service) PointInPolygon(p geo.LatLng, polygon []geo.LatLng) bool {
	return geo.PointInPolygon(p, polygon)
}

// NearestZone picks the zone whose vertex centroid is closest to pos. Equal
// distances keep the earlier zone. Zones without vertices are skipped.
func (s *Service) NearestZone(pos geo.LatLng, zs []zones.Zone) (zones.Match, bool) {
	var (
		best  zones.Match
		found bool
	)
	for _, z := range zs {
		center, ok := geo.Centroid(z.Vertices)
		if !ok {
			continue
		}
		d := geo.DistanceKm(pos, center)
		if !found || d < best.DistanceKm {
			best = zones.Match{Zone: z, DistanceKm: d}
			found = true
		}
	}
	if !found {
		return zones.Match{}, false
	}
	best.Inside = geo.PointInPolygon(pos, best.Vertices)
	metrics.ZoneLookupsTotal.WithLabelValues(strconv.FormatBool(best.Inside)).Inc()
	return best, true
}

func (s *Service) NearestSafetyZone(pos Position, zs []zones.Zone) (zones.Match, bool) {
	return s.NearestZone(pos.LatLng(), zs)
}

// Address always returns a non-empty description. Geocoder failures fall back
// to the formatted coordinates.
func (s *Service) Address(ctx context.Context, lat, lng float64) string {
	addr, err := s.geocoder.Address(ctx, lat, lng)
	if err != nil || addr == "" {
		if err != nil {
			logger.L().Warn("geocode_failed", "lat", lat, "lng", lng, "err", err)
		}
		return FormatCoordinates(Position{Lat: lat, Lng: lng}, 6)
	}
	return addr
}

type EnhancedPosition struct {
	Position
	Address   string `json:"address"`
	Formatted string `json:"formatted"`
}

// EnhancedPosition fails only when the position fetch fails.
func (s *Service) EnhancedPosition(ctx context.Context) (EnhancedPosition, error) {
	pos, err := s.CurrentPosition(ctx)
	if err != nil {
		return EnhancedPosition{}, err
	}
	return EnhancedPosition{
		Position:  pos,
		Address:   s.Address(ctx, pos.Lat, pos.Lng),
		Formatted: FormatCoordinates(pos, 6),
	}, nil
}

// SafetyUpdate is delivered on every safety tracking event. Err is set instead
// of the position fields when the platform failed.
type SafetyUpdate struct {
	Position    *Position    `json:"position,omitempty"`
	NearestZone *zones.Match `json:"nearestZone,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
	Err         error        `json:"-"`
	Error       string       `json:"error,omitempty"`
}

// StartSafetyTracking watches the position and classifies every fix against zs.
// The returned watch must be stopped like any other.
func (s *Service) StartSafetyTracking(ctx context.Context, zs []zones.Zone, callback func(SafetyUpdate)) (*Watch, error) {
	return s.StartWatching(ctx,
		func(pos Position) {
			u := SafetyUpdate{Position: &pos, Timestamp: s.now()}
			if m, ok := s.NearestSafetyZone(pos, zs); ok {
				u.NearestZone = &m
			}
			callback(u)
		},
		func(err error) {
			logger.L().Error("safety_tracking_error", "err", err)
			callback(SafetyUpdate{Timestamp: s.now(), Err: err, Error: Message(err)})
		},
	)
}

// PermissionStatus asks the platform for its permission state, reporting
// PermissionUnknown when it cannot tell.
func (s *Service) PermissionStatus(ctx context.Context) PermissionState {
	q, ok := s.platform.(PermissionQuerier)
	if !ok {
		return PermissionUnknown
	}
	state, err := q.Permission(ctx)
	if err != nil {
		return PermissionUnknown
	}
	switch state {
	case PermissionGranted, PermissionDenied, PermissionPrompt:
		return state
	default:
		return PermissionUnknown
	}
}

// RequestPermission reports whether location access is usable. An undecided
// state is resolved by fetching a position.
func (s *Service) RequestPermission(ctx context.Context) bool {
	switch s.PermissionStatus(ctx) {
	case PermissionGranted:
		return true
	case PermissionDenied:
		return false
	default:
		_, err := s.CurrentPosition(ctx)
		return err == nil
	}
}

// FormatCoordinates renders "lat, lng", or "Unknown location" when either coordinate is zero.
func FormatCoordinates(pos Position, precision int) string {
	if pos.Lat == 0 || pos.Lng == 0 {
		return "Unknown location"
	}
	return geo.FormatCoordinates(pos.LatLng(), precision)
}

// Watch is a live position subscription.
type Watch struct {
	svc    *Service
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	stopped bool
	once    sync.Once
}

func (w *Watch) run(readings <-chan Reading, onUpdate func(Position), onError func(error)) {
	defer close(w.done)
	defer w.Stop()

	for r := range readings {
		if r.Err != nil {
			err := w.svc.fail("watch", mapError(r.Err))
			w.deliver(func() {
				if onError != nil {
					onError(err)
				}
			})
			continue
		}
		pos := r.Position
		w.deliver(func() {
			w.svc.remember(pos)
			onUpdate(pos)
		})
	}
}

// deliver runs fn unless the watch has been stopped. Stop may be called from fn.
// The check and the call are not atomic with respect to Stop: a reading that
// passed the check runs even if Stop returns first.
func (w *Watch) deliver(fn func()) {
	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()
	if stopped {
		return
	}
	fn()
}

// Stop releases the subscription. It does not wait for a callback that is
// already being dispatched, so it may be called from inside one; that callback
// may still run after Stop returns, but no later reading is delivered.
// Calling Stop more than once is a no-op.
func (w *Watch) Stop() {
	w.once.Do(func() {
		w.mu.Lock()
		w.stopped = true
		w.mu.Unlock()
		w.cancel()

		w.svc.mu.Lock()
		delete(w.svc.watches, w)
		w.svc.mu.Unlock()
		metrics.ActiveWatches.Dec()
	})
}

// Done is closed once the platform has released the subscription.
func (w *Watch) Done() <-chan struct{} {
	return w.done
}
