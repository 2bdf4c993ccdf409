// internal/models/kpi.go
package models

// StatusCounts is the per-status breakdown of work orders.
type StatusCounts struct {
	Open       int `json:"abiertas"`
	InProgress int `json:"enProgreso"`
	Closed     int `json:"cerradas"`
	Total      int `json:"total"`
}

// MonthlyCost is one month's summed work-order cost.
type MonthlyCost struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// DowntimeEntry is one asset's accumulated downtime hours.
type DowntimeEntry struct {
	AssetID string  `json:"assetId"`
	Name    string  `json:"name"`
	Hours   float64 `json:"hours"`
}
