package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nandanugg/safetrip/module/core/internal/repository/bus"
	"github.com/nandanugg/safetrip/module/core/internal/repository/kv"
	"github.com/nandanugg/safetrip/module/core/metrics"
)

const KeySleepMode = "sleep_mode"

// SleepMode is the shared suppression flag. The store is authoritative
// unless the last write failed, in which case the in-memory value wins
// until a write succeeds again.
//
// Subscribers of this instance are called synchronously by Set; the bus
// only carries flips made by other instances.
type SleepMode struct {
	store  kv.Store
	bus    bus.Bus
	logger *zap.Logger
	origin string

	mu       sync.Mutex
	value    bool
	unsynced bool

	lmu       sync.Mutex
	nextID    int
	listeners map[int]func(bool)
}

func NewSleepMode(ctx context.Context, store kv.Store, b bus.Bus, logger *zap.Logger) *SleepMode {
	s := &SleepMode{
		store:     store,
		bus:       b,
		logger:    logger,
		origin:    uuid.NewString(),
		listeners: make(map[int]func(bool)),
	}
	s.Enabled(ctx)
	return s
}

// Enabled re-reads the persisted flag. Absent means false.
func (s *SleepMode) Enabled(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unsynced {
		return s.value
	}
	v, _, err := kv.GetJSON[bool](ctx, s.store, KeySleepMode)
	if err != nil {
		s.logger.Warn("read sleep mode", zap.Error(err))
		return s.value
	}
	s.value = v
	return v
}

// Set persists the flag, notifies local subscribers before returning and
// then announces the change on the bus. Failures are logged; the new
// value still applies to this process.
func (s *SleepMode) Set(ctx context.Context, enabled bool) {
	s.mu.Lock()
	s.value = enabled
	if err := kv.SetJSON(ctx, s.store, KeySleepMode, enabled); err != nil {
		s.unsynced = true
		metrics.PersistErrorsTotal.WithLabelValues(KeySleepMode).Inc()
		s.logger.Error("persist sleep mode", zap.Bool("enabled", enabled), zap.Error(err))
	} else {
		s.unsynced = false
	}
	s.mu.Unlock()

	s.dispatch(s.Enabled(ctx))

	if err := s.bus.Publish(ctx, bus.Event{Key: KeySleepMode, Origin: s.origin}); err != nil {
		s.logger.Error("announce sleep mode", zap.Error(err))
	}
}

func (s *SleepMode) Toggle(ctx context.Context) bool {
	next := !s.Enabled(ctx)
	s.Set(ctx, next)
	return next
}

// Subscribe calls fn with the freshly read value whenever the flag may
// have changed, whichever process or component changed it.
func (s *SleepMode) Subscribe(fn func(enabled bool)) func() {
	s.lmu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners[id] = fn
	s.lmu.Unlock()

	unsubscribeBus := s.bus.Subscribe(func(ev bus.Event) {
		if !ev.Matches(KeySleepMode) || ev.Origin == s.origin {
			return
		}
		fn(s.Enabled(context.Background()))
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.lmu.Lock()
			delete(s.listeners, id)
			s.lmu.Unlock()
			unsubscribeBus()
		})
	}
}

func (s *SleepMode) dispatch(enabled bool) {
	s.lmu.Lock()
	fns := make([]func(bool), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.lmu.Unlock()

	for _, fn := range fns {
		fn(enabled)
	}
}
