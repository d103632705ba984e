package service

import (
	"sync"

	"github.com/nandanugg/safetrip/module/core/domain"
	"github.com/nandanugg/safetrip/module/core/metrics"
)

// AlertManager owns the set of zone ids violated by the latest sample.
type AlertManager struct {
	mu     sync.RWMutex
	active []string
}

func NewAlertManager() *AlertManager {
	return &AlertManager{}
}

// Evaluate replaces the active set with the ids of zones, in order, and
// returns the ids that were not active before.
func (m *AlertManager) Evaluate(zones []domain.DangerZone) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := make(map[string]bool, len(m.active))
	for _, id := range m.active {
		prev[id] = true
	}

	next := make([]string, 0, len(zones))
	seen := make(map[string]bool, len(zones))
	var raised []string
	for _, z := range zones {
		if seen[z.ID] {
			continue
		}
		seen[z.ID] = true
		next = append(next, z.ID)
		if !prev[z.ID] {
			raised = append(raised, z.ID)
		}
	}
	m.active = next
	metrics.ActiveAlerts.Set(float64(len(next)))
	return raised
}

func (m *AlertManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.active = nil
	metrics.ActiveAlerts.Set(0)
}

// Dismiss removes zoneID until the next sample re-evaluates it.
func (m *AlertManager) Dismiss(zoneID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, id := range m.active {
		if id == zoneID {
			m.active = append(m.active[:i:i], m.active[i+1:]...)
			metrics.ActiveAlerts.Set(float64(len(m.active)))
			return true
		}
	}
	return false
}

func (m *AlertManager) Active() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string{}, m.active...)
}
