package model

import "time"

// Record is one persisted row of the weather_records log. Rows are
// append-only: an id is never reused and a row is never updated or deleted.
type Record struct {
	ID           int64     `json:"id"`
	Pincode      string    `json:"pincode"`
	Location     string    `json:"location"`
	TemperatureC float64   `json:"temperature"`
	Humidity     int       `json:"humidity"`
	Description  string    `json:"description"`
	RecordedAt   time.Time `json:"recorded_at"`
}
