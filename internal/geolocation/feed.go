package geolocation

import (
	"context"
	"sync"
	"time"
)

const feedBuffer = 16

// FeedPlatform is a Platform driven by positions pushed into it, such as fixes
// uploaded by a device. It is safe for concurrent use.
type FeedPlatform struct {
	mu         sync.Mutex
	latest     Position
	hasLatest  bool
	nextID     int
	watchers   map[int]chan Reading
	waiters    map[int]chan Reading
	permission PermissionState
	now        func() time.Time
}

func NewFeedPlatform() *FeedPlatform {
	return &FeedPlatform{
		watchers:   make(map[int]chan Reading),
		waiters:    make(map[int]chan Reading),
		permission: PermissionGranted,
		now:        time.Now,
	}
}

// Publish records pos as the latest fix and hands it to every watcher and pending request.
// A watcher whose buffer is full misses the fix.
func (f *FeedPlatform) Publish(pos Position) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if pos.Timestamp.IsZero() {
		pos.Timestamp = f.now()
	}
	f.latest = pos
	f.hasLatest = true
	f.dispatch(Reading{Position: pos})
}

// Fail reports a platform error to every watcher and pending request.
func (f *FeedPlatform) Fail(code ErrorCode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dispatch(Reading{Err: &PlatformError{Code: code}})
}

func (f *FeedPlatform) dispatch(r Reading) {
	for _, ch := range f.watchers {
		select {
		case ch <- r:
		default:
		}
	}
	for id, ch := range f.waiters {
		ch <- r
		delete(f.waiters, id)
	}
}

func (f *FeedPlatform) SetPermission(state PermissionState) {
	f.mu.Lock()
	f.permission = state
	f.mu.Unlock()
}

func (f *FeedPlatform) Permission(context.Context) (PermissionState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.permission, nil
}

// Latest returns the most recent fix regardless of age.
func (f *FeedPlatform) Latest() (Position, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest, f.hasLatest
}

// CurrentPosition serves the cached fix when it is younger than opts.MaximumAge,
// otherwise it waits for the next Publish or Fail.
func (f *FeedPlatform) CurrentPosition(ctx context.Context, opts Options) (Position, error) {
	f.mu.Lock()
	if f.permission == PermissionDenied {
		f.mu.Unlock()
		return Position{}, &PlatformError{Code: CodePermissionDenied}
	}
	if f.hasLatest && f.now().Sub(f.latest.Timestamp) <= opts.MaximumAge {
		pos := f.latest
		f.mu.Unlock()
		return pos, nil
	}
	id := f.nextID
	f.nextID++
	ch := make(chan Reading, 1)
	f.waiters[id] = ch
	f.mu.Unlock()

	select {
	case r := <-ch:
		return r.Position, r.Err
	case <-ctx.Done():
		f.mu.Lock()
		delete(f.waiters, id)
		f.mu.Unlock()
		return Position{}, ctx.Err()
	}
}

func (f *FeedPlatform) WatchPosition(ctx context.Context, opts Options) (<-chan Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.permission == PermissionDenied {
		return nil, &PlatformError{Code: CodePermissionDenied}
	}
	id := f.nextID
	f.nextID++
	ch := make(chan Reading, feedBuffer)
	if f.hasLatest && f.now().Sub(f.latest.Timestamp) <= opts.MaximumAge {
		ch <- Reading{Position: f.latest}
	}
	f.watchers[id] = ch

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.watchers, id)
		close(ch)
		f.mu.Unlock()
	}()
	return ch, nil
}

// Watchers reports how many watches are subscribed.
func (f *FeedPlatform) Watchers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.watchers)
}
