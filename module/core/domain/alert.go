package domain

type GeofenceEventType string

const (
	GeofenceEntry GeofenceEventType = "geofence_entry"
	SOSTriggered  GeofenceEventType = "sos_triggered"
)

// GeofenceAlert is emitted when a zone enters the active alert set.
type GeofenceAlert struct {
	DeviceID  string            `json:"device_id"`
	Event     GeofenceEventType `json:"event"`
	ZoneID    string            `json:"zone_id"`
	ZoneName  string            `json:"zone_name"`
	RiskLevel RiskLevel         `json:"risk_level"`
	Message   string            `json:"message"`
	Location  GPSLocation       `json:"location"`
	Timestamp int64             `json:"timestamp"`
}
