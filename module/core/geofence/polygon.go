package geofence

import "github.com/nandanugg/safetrip/module/core/domain"

// Contains reports whether p lies inside polygon using the even-odd
// ray-casting rule, with latitude as the x axis and longitude as the y
// axis. The last vertex closes back to the first. Polygons with fewer
// than three vertices contain nothing.
//
// Boundary points follow the half-open convention of the classic edge
// test: for an axis-aligned box the minimum latitude and minimum
// longitude edges are inclusive and the maximum edges are exclusive.
func Contains(p domain.LatLng, polygon []domain.LatLng) bool {
	n := len(polygon)
	if n < 3 {
		return false
	}

	x, y := p.Lat, p.Lon
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := polygon[i].Lat, polygon[i].Lon
		xj, yj := polygon[j].Lat, polygon[j].Lon
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// Centroid returns the vertex average of polygon. It is used for map
// centering and simulated routes, not for containment.
func Centroid(polygon []domain.LatLng) domain.LatLng {
	if len(polygon) == 0 {
		return domain.LatLng{}
	}
	var c domain.LatLng
	for _, v := range polygon {
		c.Lat += v.Lat
		c.Lon += v.Lon
	}
	n := float64(len(polygon))
	return domain.LatLng{Lat: c.Lat / n, Lon: c.Lon / n}
}
