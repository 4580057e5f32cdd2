package reading

import "time"

// Reading is one position report from a device.
type Reading struct {
	ID          int64     `json:"id"`
	Timestamp   time.Time `json:"fecha"`
	Coordinates string    `json:"coordenadas"`
	DeviceID    int64     `json:"dispositivo_id"`
}
