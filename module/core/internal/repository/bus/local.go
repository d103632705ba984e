package bus

import (
	"context"
	"sync"
)

var _ Bus = (*Local)(nil)

// Local fans events out to in-process subscribers. Publish delivers
// synchronously, in subscription order, on the caller's goroutine.
type Local struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(Event)
	ids  []int
}

func NewLocal() *Local {
	return &Local{subs: make(map[int]func(Event))}
}

func (l *Local) Publish(_ context.Context, ev Event) error {
	l.mu.RLock()
	fns := make([]func(Event), 0, len(l.ids))
	for _, id := range l.ids {
		fns = append(fns, l.subs[id])
	}
	l.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
	return nil
}

func (l *Local) Subscribe(fn func(Event)) func() {
	l.mu.Lock()
	id := l.next
	l.next++
	l.subs[id] = fn
	l.ids = append(l.ids, id)
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.subs, id)
			for i, v := range l.ids {
				if v == id {
					l.ids = append(l.ids[:i], l.ids[i+1:]...)
					break
				}
			}
		})
	}
}
