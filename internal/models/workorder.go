// internal/models/workorder.go
package models

import "time"

// OrderType distinguishes preventive from corrective work.
type OrderType string

const (
	OrderTypePreventive OrderType = "PM"
	OrderTypeCorrective OrderType = "CM"
)

// OrderStatus is the work-order lifecycle state as stored.
type OrderStatus string

const (
	StatusOpen       OrderStatus = "Abierta"
	StatusInProgress OrderStatus = "En Progreso"
	StatusClosed     OrderStatus = "Cerrada"
)

// Asset is one maintainable piece of equipment.
type Asset struct {
	AssetID string `json:"assetId" db:"asset_id"`
	Name    string `json:"name" db:"name"`
	Site    string `json:"site,omitempty" db:"site"`
	Area    string `json:"area,omitempty" db:"area"`
}

// WorkOrder is one maintenance work order as stored.
type WorkOrder struct {
	WOID          string      `json:"woId" db:"wo_id"`
	AssetID       string      `json:"assetId" db:"asset_id"`
	Type          OrderType   `json:"type" db:"type"`
	Status        OrderStatus `json:"status" db:"status"`
	Technician    string      `json:"technician,omitempty" db:"technician"`
	OpenedAt      time.Time   `json:"openedAt" db:"opened_at"`
	ClosedAt      *time.Time  `json:"closedAt,omitempty" db:"closed_at"`
	DueDate       *time.Time  `json:"dueDate,omitempty" db:"due_date"`
	LaborHours    float64     `json:"laborHours" db:"labor_hours"`
	MTTRHours     *float64    `json:"mttrHours,omitempty" db:"mttr_hours"`
	DowntimeHours float64     `json:"downtimeHours" db:"downtime_hours"`
	CostParts     float64     `json:"costParts" db:"cost_parts"`
	CostLabor     float64     `json:"costLabor" db:"cost_labor"`
	CostTotal     float64     `json:"costTotal" db:"cost_total"`
}

// IsClosed reports whether the order reached its final state.
func (w *WorkOrder) IsClosed() bool {
	return w.Status == StatusClosed
}

// EffectiveDate is the date an order counts against in KPI windows:
// the close date when closed, otherwise the open date.
func (w *WorkOrder) EffectiveDate() time.Time {
	if w.ClosedAt != nil {
		return *w.ClosedAt
	}
	return w.OpenedAt
}

// RepairHours is the repair duration used by MTTR: the recorded value
// when present, otherwise the labor hours.
func (w *WorkOrder) RepairHours() float64 {
	if w.MTTRHours != nil {
		return *w.MTTRHours
	}
	return w.LaborHours
}
