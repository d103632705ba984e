package geofence

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/nandanugg/safetrip/module/core/domain"
)

//go:embed zones.json
var defaultZones []byte

// Catalog is the immutable registry of danger zones, in load order.
type Catalog struct {
	zones []domain.DangerZone
	byID  map[string]int
}

// LoadCatalog parses a JSON array of zones. Zone ids must be unique and
// risk levels known. Degenerate polygons are accepted; they never match.
func LoadCatalog(data []byte) (*Catalog, error) {
	var zones []domain.DangerZone
	if err := json.Unmarshal(data, &zones); err != nil {
		return nil, fmt.Errorf("decode zones: %w", err)
	}

	c := &Catalog{zones: zones, byID: make(map[string]int, len(zones))}
	for i, z := range zones {
		if z.ID == "" {
			return nil, fmt.Errorf("zone %d: id: required", i)
		}
		if _, dup := c.byID[z.ID]; dup {
			return nil, fmt.Errorf("zone %s: duplicate id", z.ID)
		}
		if !z.RiskLevel.Valid() {
			return nil, fmt.Errorf("zone %s: unknown risk level %q", z.ID, z.RiskLevel)
		}
		c.byID[z.ID] = i
	}
	return c, nil
}

// DefaultCatalog returns the embedded zone set.
func DefaultCatalog() *Catalog {
	c, err := LoadCatalog(defaultZones)
	if err != nil {
		panic(fmt.Sprintf("geofence: embedded zones: %v", err))
	}
	return c
}

// Zones returns a copy of every zone in catalog order.
func (c *Catalog) Zones() []domain.DangerZone {
	out := make([]domain.DangerZone, len(c.zones))
	for i, z := range c.zones {
		out[i] = cloneZone(z)
	}
	return out
}

func (c *Catalog) Zone(id string) (domain.DangerZone, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.DangerZone{}, false
	}
	return cloneZone(c.zones[i]), true
}

func (c *Catalog) Len() int {
	return len(c.zones)
}

func cloneZone(z domain.DangerZone) domain.DangerZone {
	z.Polygon = append([]domain.LatLng(nil), z.Polygon...)
	return z
}
