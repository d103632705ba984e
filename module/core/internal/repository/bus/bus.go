package bus

import "context"

// Event announces that the value under Key changed. It never carries the
// value itself; subscribers re-read the store. An empty Key means every
// key may have changed. Origin names the publisher so it can skip its
// own echo.
type Event struct {
	Key    string `json:"key"`
	Origin string `json:"origin,omitempty"`
}

// Matches reports whether a subscriber interested in key should react.
func (e Event) Matches(key string) bool {
	return e.Key == "" || e.Key == key
}

type Bus interface {
	Publish(ctx context.Context, ev Event) error
	// Subscribe registers fn for every later event. The returned func
	// removes the subscription and is safe to call more than once.
	Subscribe(fn func(Event)) (unsubscribe func())
}
