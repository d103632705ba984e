package domain

type EmergencyContact struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
	IsPriority   bool   `json:"is_priority"`
}

// SOSAlert records one dispatched emergency request.
type SOSAlert struct {
	ID         string            `json:"id"`
	DeviceID   string            `json:"device_id"`
	Recipients []string          `json:"recipients"`
	Contact    *EmergencyContact `json:"contact,omitempty"`
	Location   *GPSLocation      `json:"location,omitempty"`
	Timestamp  int64             `json:"timestamp"`
}
