package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/nandanugg/safetrip/module/core/domain"
	"github.com/nandanugg/safetrip/module/core/internal/positioning"
	"github.com/nandanugg/safetrip/module/core/internal/repository/kv"
)

var errStoreDown = errors.New("store down")

// failingStore wraps a Memory store and fails writes while failing is set.
type failingStore struct {
	*kv.Memory
	mu      sync.Mutex
	failing bool
	writes  int
}

func newFailingStore() *failingStore {
	return &failingStore{Memory: kv.NewMemory()}
}

func (s *failingStore) setFailing(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = v
}

func (s *failingStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	s.writes++
	failing := s.failing
	s.mu.Unlock()
	if failing {
		return errStoreDown
	}
	return s.Memory.Set(ctx, key, value)
}

func (s *failingStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	failing := s.failing
	s.mu.Unlock()
	if failing {
		return errStoreDown
	}
	return s.Memory.Remove(ctx, key)
}

type watchCallbacks struct {
	onUpdate func(positioning.Fix)
	onError  func(error)
}

type fakeSource struct {
	mu          sync.Mutex
	unavailable bool
	watchErr    error
	next        positioning.WatchID
	watches     map[positioning.WatchID]watchCallbacks
	cleared     []positioning.WatchID
	last        watchCallbacks
	currentFn   func(ctx context.Context, opts positioning.Options) (positioning.Fix, error)
	lastOpts    positioning.Options
}

func newFakeSource() *fakeSource {
	return &fakeSource{watches: make(map[positioning.WatchID]watchCallbacks)}
}

func (f *fakeSource) Available() bool { return !f.unavailable }

func (f *fakeSource) Watch(onUpdate func(positioning.Fix), onError func(error), opts positioning.Options) (positioning.WatchID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.watchErr != nil {
		return 0, f.watchErr
	}
	f.next++
	f.last = watchCallbacks{onUpdate: onUpdate, onError: onError}
	f.watches[f.next] = f.last
	f.lastOpts = opts
	return f.next, nil
}

func (f *fakeSource) ClearWatch(id positioning.WatchID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.watches, id)
	f.cleared = append(f.cleared, id)
}

func (f *fakeSource) CurrentPosition(ctx context.Context, opts positioning.Options) (positioning.Fix, error) {
	if f.currentFn != nil {
		return f.currentFn(ctx, opts)
	}
	return positioning.Fix{}, &positioning.PositionError{Code: positioning.PositionUnavailable}
}

func (f *fakeSource) activeWatches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.watches)
}

// lastCallbacks survives ClearWatch so tests can deliver a late fix.
func (f *fakeSource) lastCallbacks() watchCallbacks {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func (f *fakeSource) emit(lat, lon float64) {
	cb := f.lastCallbacks()
	if cb.onUpdate != nil {
		cb.onUpdate(positioning.Fix{Latitude: lat, Longitude: lon, Accuracy: 5})
	}
}

func (f *fakeSource) emitError(err error) {
	cb := f.lastCallbacks()
	if cb.onError != nil {
		cb.onError(err)
	}
}

type mockAlertPublisher struct {
	mu             sync.Mutex
	publishAlertFn func(ctx context.Context, alert *domain.GeofenceAlert) error
	calls          []*domain.GeofenceAlert
}

func (m *mockAlertPublisher) PublishAlert(ctx context.Context, alert *domain.GeofenceAlert) error {
	m.mu.Lock()
	m.calls = append(m.calls, alert)
	m.mu.Unlock()
	if m.publishAlertFn != nil {
		return m.publishAlertFn(ctx, alert)
	}
	return nil
}

type mockArchive struct {
	insertFn func(ctx context.Context, loc *domain.TrackedLocation) error
	calls    []*domain.TrackedLocation
}

func (m *mockArchive) Insert(ctx context.Context, loc *domain.TrackedLocation) error {
	m.calls = append(m.calls, loc)
	if m.insertFn != nil {
		return m.insertFn(ctx, loc)
	}
	return nil
}

type mockSOSPublisher struct {
	publishSOSFn func(ctx context.Context, alert *domain.SOSAlert) error
	calls        []*domain.SOSAlert
}

func (m *mockSOSPublisher) PublishSOS(ctx context.Context, alert *domain.SOSAlert) error {
	m.calls = append(m.calls, alert)
	if m.publishSOSFn != nil {
		return m.publishSOSFn(ctx, alert)
	}
	return nil
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}
