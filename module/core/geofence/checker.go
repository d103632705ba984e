package geofence

import (
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"github.com/nandanugg/safetrip/module/core/domain"
)

type indexedZone struct {
	zone   domain.DangerZone
	bounds s2.Rect
}

// Checker finds the zones containing a location. It holds no mutable
// state and is safe for concurrent use.
type Checker struct {
	zones []indexedZone
}

func NewChecker(catalog *Catalog) *Checker {
	zones := catalog.Zones()
	c := &Checker{zones: make([]indexedZone, 0, len(zones))}
	for _, z := range zones {
		c.zones = append(c.zones, indexedZone{zone: z, bounds: boundingRect(z.Polygon)})
	}
	return c
}

// Violations returns every zone whose polygon contains loc, preserving
// catalog order. The bounding rectangle only skips zones that cannot
// match; Contains decides the rest.
func (c *Checker) Violations(loc domain.GPSLocation) []domain.DangerZone {
	p := loc.Point()
	ll := s2.LatLngFromDegrees(p.Lat, p.Lon)

	var out []domain.DangerZone
	for _, iz := range c.zones {
		if iz.bounds.IsEmpty() || !iz.bounds.ContainsLatLng(ll) {
			continue
		}
		if Contains(p, iz.zone.Polygon) {
			out = append(out, iz.zone)
		}
	}
	return out
}

// boundingRect is computed in raw latitude/longitude space, matching the
// coordinates Contains works in. Degenerate polygons get an empty rect.
func boundingRect(polygon []domain.LatLng) s2.Rect {
	if len(polygon) < 3 {
		return s2.EmptyRect()
	}
	minLat, maxLat := math.Inf(1), math.Inf(-1)
	minLon, maxLon := math.Inf(1), math.Inf(-1)
	for _, v := range polygon {
		minLat, maxLat = math.Min(minLat, v.Lat), math.Max(maxLat, v.Lat)
		minLon, maxLon = math.Min(minLon, v.Lon), math.Max(maxLon, v.Lon)
	}
	lo := s2.LatLngFromDegrees(minLat, minLon)
	hi := s2.LatLngFromDegrees(maxLat, maxLon)
	return s2.Rect{
		Lat: r1.Interval{Lo: lo.Lat.Radians(), Hi: hi.Lat.Radians()},
		Lng: s1.Interval{Lo: lo.Lng.Radians(), Hi: hi.Lng.Radians()},
	}
}
