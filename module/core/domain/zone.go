package domain

import (
	"encoding/json"
	"fmt"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Severity orders risk levels for display. Unknown levels sort first.
func (r RiskLevel) Severity() int {
	switch r {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	case RiskCritical:
		return 4
	default:
		return 0
	}
}

func (r RiskLevel) Valid() bool {
	return r.Severity() > 0
}

// LatLng is a polygon vertex. It is encoded as a [latitude, longitude] pair.
type LatLng struct {
	Lat float64
	Lon float64
}

func (p LatLng) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lat, p.Lon})
}

func (p *LatLng) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("vertex: expected [latitude, longitude], got %d values", len(pair))
	}
	p.Lat, p.Lon = pair[0], pair[1]
	return nil
}

type DangerZone struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	RiskLevel    RiskLevel `json:"risk_level"`
	Polygon      []LatLng  `json:"coordinates"`
	AlertMessage string    `json:"alert_message"`
}
