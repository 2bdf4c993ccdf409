// internal/models/slots.go
package models

// Slots carries the filters extracted from a single message. An empty
// field means "no filter": a filter is never applied on an empty value.
// When both date bounds are set, DateFrom <= DateTo.
type Slots struct {
	Site       string      `json:"site,omitempty"`
	Area       string      `json:"area,omitempty"`
	Type       OrderType   `json:"type,omitempty"`
	Status     OrderStatus `json:"status,omitempty"`
	DateFrom   string      `json:"dateFrom,omitempty"`
	DateTo     string      `json:"dateTo,omitempty"`
	Technician string      `json:"technician,omitempty"`
}

// HasDateRange reports whether both window bounds are set.
func (s Slots) HasDateRange() bool {
	return s.DateFrom != "" && s.DateTo != ""
}

// IsEmpty reports whether no filter at all was extracted.
func (s Slots) IsEmpty() bool {
	return s == Slots{}
}
