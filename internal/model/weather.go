package model

// Observation is one fetched set of current conditions for a pincode.
// WindSpeed is display-only and never persisted.
type Observation struct {
	Pincode      string  `json:"pincode"`
	Location     string  `json:"location"`
	TemperatureC float64 `json:"temperature"`
	Humidity     int     `json:"humidity"`
	Description  string  `json:"description"`
	WindSpeed    float64 `json:"wind_speed"`
	Cached       bool    `json:"cached"`
}
