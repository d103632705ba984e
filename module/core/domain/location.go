package domain

import "time"

// GPSLocation is a single position sample. Timestamp is in milliseconds
// since the Unix epoch.
type GPSLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp int64   `json:"timestamp"`
}

func (l GPSLocation) Point() LatLng {
	return LatLng{Lat: l.Latitude, Lon: l.Longitude}
}

func (l GPSLocation) Time() time.Time {
	return time.UnixMilli(l.Timestamp)
}

// TrackedLocation is an archived sample attributed to a device.
type TrackedLocation struct {
	DeviceID string      `json:"device_id"`
	Location GPSLocation `json:"location"`
}

type HistoryQuery struct {
	DeviceID string
	Start    time.Time
	End      time.Time
}
