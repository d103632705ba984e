package positioning

import (
	"context"
	"sync"
	"time"

	"github.com/nandanugg/safetrip/module/core/domain"
)

var _ Source = (*Simulator)(nil)

const (
	simulatedAccuracy = 8

	DefaultSimulatorInterval = 2 * time.Second
)

// Simulator walks a fixed route, emitting one fix per interval to every
// watcher. All watchers share the walker's position.
type Simulator struct {
	route    []domain.LatLng
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	pos     int
	nextID  WatchID
	watches map[WatchID]chan struct{}
}

func NewSimulator(route []domain.LatLng, interval time.Duration) *Simulator {
	if interval <= 0 {
		interval = DefaultSimulatorInterval
	}
	return &Simulator{
		route:    route,
		interval: interval,
		now:      time.Now,
		watches:  make(map[WatchID]chan struct{}),
	}
}

// Walk interpolates steps points along each leg of waypoints, closing the
// loop back to the first waypoint.
func Walk(waypoints []domain.LatLng, steps int) []domain.LatLng {
	if len(waypoints) < 2 || steps < 1 {
		return append([]domain.LatLng(nil), waypoints...)
	}
	out := make([]domain.LatLng, 0, len(waypoints)*steps)
	for i, from := range waypoints {
		to := waypoints[(i+1)%len(waypoints)]
		for s := 0; s < steps; s++ {
			f := float64(s) / float64(steps)
			out = append(out, domain.LatLng{
				Lat: from.Lat + (to.Lat-from.Lat)*f,
				Lon: from.Lon + (to.Lon-from.Lon)*f,
			})
		}
	}
	return out
}

func (s *Simulator) Available() bool {
	return len(s.route) > 0
}

func (s *Simulator) Watch(onUpdate func(Fix), _ func(error), _ Options) (WatchID, error) {
	if !s.Available() {
		return 0, ErrUnsupported
	}

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	stop := make(chan struct{})
	s.watches[id] = stop
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				onUpdate(s.advance())
			}
		}
	}()
	return id, nil
}

func (s *Simulator) ClearWatch(id WatchID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stop, ok := s.watches[id]; ok {
		close(stop)
		delete(s.watches, id)
	}
}

func (s *Simulator) CurrentPosition(ctx context.Context, _ Options) (Fix, error) {
	if !s.Available() {
		return Fix{}, ErrUnsupported
	}
	if err := ctx.Err(); err != nil {
		return Fix{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fixAt(s.pos), nil
}

func (s *Simulator) advance() Fix {
	s.mu.Lock()
	defer s.mu.Unlock()

	fix := s.fixAt(s.pos)
	s.pos = (s.pos + 1) % len(s.route)
	return fix
}

func (s *Simulator) fixAt(i int) Fix {
	p := s.route[i]
	return Fix{
		Latitude:  p.Lat,
		Longitude: p.Lon,
		Accuracy:  simulatedAccuracy,
		Timestamp: s.now(),
	}
}
