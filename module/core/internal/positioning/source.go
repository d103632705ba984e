package positioning

import (
	"context"
	"time"
)

type WatchID int64

type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

var (
	WatchOptions   = Options{HighAccuracy: true, Timeout: 10 * time.Second, MaximumAge: 5 * time.Second}
	OneShotOptions = Options{HighAccuracy: true, Timeout: 10 * time.Second}
)

// Fix is a raw reading from the positioning capability.
type Fix struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
	Timestamp time.Time
}

// Source is a positioning capability. Implementations never invoke the
// watch callbacks before Watch returns, and never while holding a lock
// that ClearWatch needs.
type Source interface {
	Available() bool
	Watch(onUpdate func(Fix), onError func(error), opts Options) (WatchID, error)
	ClearWatch(id WatchID)
	CurrentPosition(ctx context.Context, opts Options) (Fix, error)
}
