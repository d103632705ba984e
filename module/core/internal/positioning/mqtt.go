package positioning

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

var _ Source = (*MQTTSource)(nil)

const (
	positionTopic = "/safety/device/%s/position"
	errorTopic    = "/safety/device/%s/error"
)

func PositionTopic(deviceID string) string { return fmt.Sprintf(positionTopic, deviceID) }

func ErrorTopic(deviceID string) string { return fmt.Sprintf(errorTopic, deviceID) }

type positionMessage struct {
	DeviceID  string  `json:"device_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp int64   `json:"timestamp"`
}

type errorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type watcher struct {
	onUpdate func(Fix)
	onError  func(error)
	timeout  time.Duration
	timer    *time.Timer
}

type result struct {
	fix Fix
	err error
}

// MQTTSource reads fixes that a device publishes on its position topic.
// Failures the device reports on its error topic reach every watcher
// and pending one-shot request.
type MQTTSource struct {
	client   mqtt.Client
	deviceID string
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	nextID  WatchID
	watches map[WatchID]*watcher
	waiters map[chan result]struct{}
	last    *Fix
	lastAt  time.Time
}

func NewMQTTSource(client mqtt.Client, deviceID string, logger *zap.Logger) *MQTTSource {
	return &MQTTSource{
		client:   client,
		deviceID: deviceID,
		logger:   logger,
		now:      time.Now,
		watches:  make(map[WatchID]*watcher),
		waiters:  make(map[chan result]struct{}),
	}
}

func (s *MQTTSource) Start() error {
	filters := map[string]byte{
		PositionTopic(s.deviceID): 1,
		ErrorTopic(s.deviceID):    1,
	}
	token := s.client.SubscribeMultiple(filters, s.route)
	token.Wait()
	return token.Error()
}

func (s *MQTTSource) Stop() error {
	token := s.client.Unsubscribe(
		PositionTopic(s.deviceID),
		ErrorTopic(s.deviceID),
	)
	token.Wait()
	return token.Error()
}

func (s *MQTTSource) Available() bool {
	return s.client != nil && s.client.IsConnected()
}

func (s *MQTTSource) Watch(onUpdate func(Fix), onError func(error), opts Options) (WatchID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	w := &watcher{onUpdate: onUpdate, onError: onError, timeout: opts.Timeout}
	if opts.Timeout > 0 {
		w.timer = time.AfterFunc(opts.Timeout, func() { s.watchTimedOut(id) })
	}
	s.watches[id] = w
	return id, nil
}

func (s *MQTTSource) ClearWatch(id WatchID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.watches[id]; ok {
		if w.timer != nil {
			w.timer.Stop()
		}
		delete(s.watches, id)
	}
}

func (s *MQTTSource) CurrentPosition(ctx context.Context, opts Options) (Fix, error) {
	if !s.Available() {
		return Fix{}, ErrUnsupported
	}

	s.mu.Lock()
	if opts.MaximumAge > 0 && s.last != nil && s.now().Sub(s.lastAt) <= opts.MaximumAge {
		fix := *s.last
		s.mu.Unlock()
		return fix, nil
	}
	ch := make(chan result, 1)
	s.waiters[ch] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.waiters, ch)
		s.mu.Unlock()
	}()

	var timeout <-chan time.Time
	if opts.Timeout > 0 {
		timer := time.NewTimer(opts.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case r := <-ch:
		return r.fix, r.err
	case <-timeout:
		return Fix{}, &PositionError{Code: Timeout, Message: "no fix within timeout"}
	case <-ctx.Done():
		return Fix{}, ctx.Err()
	}
}

func (s *MQTTSource) route(c mqtt.Client, msg mqtt.Message) {
	if msg.Topic() == ErrorTopic(s.deviceID) {
		s.handleError(c, msg)
		return
	}
	s.handlePosition(c, msg)
}

func (s *MQTTSource) handlePosition(_ mqtt.Client, msg mqtt.Message) {
	var raw positionMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		s.logger.Warn("invalid position message", zap.String("topic", msg.Topic()), zap.Error(err))
		return
	}
	if err := validatePositionMessage(&raw, s.deviceID); err != nil {
		s.logger.Warn("position validation error", zap.String("topic", msg.Topic()), zap.Error(err))
		return
	}

	fix := Fix{
		Latitude:  raw.Latitude,
		Longitude: raw.Longitude,
		Accuracy:  raw.Accuracy,
		Timestamp: time.UnixMilli(raw.Timestamp),
	}

	s.mu.Lock()
	s.last = &fix
	s.lastAt = s.now()
	updates := make([]func(Fix), 0, len(s.watches))
	for _, w := range s.watches {
		if w.timer != nil {
			w.timer.Reset(w.timeout)
		}
		updates = append(updates, w.onUpdate)
	}
	waiters := s.drainWaiters()
	s.mu.Unlock()

	for _, ch := range waiters {
		ch <- result{fix: fix}
	}
	for _, fn := range updates {
		fn(fix)
	}
}

func (s *MQTTSource) handleError(_ mqtt.Client, msg mqtt.Message) {
	var raw errorMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		s.logger.Warn("invalid error message", zap.String("topic", msg.Topic()), zap.Error(err))
		return
	}
	s.fail(&PositionError{Code: ParseErrorCode(raw.Code), Message: raw.Message})
}

func (s *MQTTSource) watchTimedOut(id WatchID) {
	s.mu.Lock()
	w, ok := s.watches[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	w.timer.Reset(w.timeout)
	onError := w.onError
	s.mu.Unlock()

	onError(&PositionError{Code: Timeout, Message: "no fix within timeout"})
}

func (s *MQTTSource) fail(err error) {
	s.mu.Lock()
	errs := make([]func(error), 0, len(s.watches))
	for _, w := range s.watches {
		errs = append(errs, w.onError)
	}
	waiters := s.drainWaiters()
	s.mu.Unlock()

	for _, ch := range waiters {
		ch <- result{err: err}
	}
	for _, fn := range errs {
		fn(err)
	}
}

// drainWaiters must be called with s.mu held.
func (s *MQTTSource) drainWaiters() []chan result {
	out := make([]chan result, 0, len(s.waiters))
	for ch := range s.waiters {
		out = append(out, ch)
		delete(s.waiters, ch)
	}
	return out
}

func validatePositionMessage(msg *positionMessage, deviceID string) error {
	if msg.DeviceID != "" && msg.DeviceID != deviceID {
		return fmt.Errorf("device_id: expected %s, got %s", deviceID, msg.DeviceID)
	}
	if msg.Latitude < -90 || msg.Latitude > 90 {
		return fmt.Errorf("latitude: must be between -90 and 90")
	}
	if msg.Longitude < -180 || msg.Longitude > 180 {
		return fmt.Errorf("longitude: must be between -180 and 180")
	}
	if msg.Accuracy < 0 {
		return fmt.Errorf("accuracy: must not be negative")
	}
	if msg.Timestamp <= 0 {
		return fmt.Errorf("timestamp: must be positive")
	}
	return nil
}
