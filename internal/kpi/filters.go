// internal/kpi/filters.go
package kpi

import (
	"fmt"
	"strings"

	"mat-bot/internal/models"
)

// buildWhere maps slots onto WHERE clauses with positional placeholders.
// Clause order is fixed: site, area, status, type, technician, date
// bounds. The date window applies to the effective date, closed_at when
// present and opened_at otherwise.
func buildWhere(slots models.Slots) (string, []interface{}) {
	var clauses []string
	var params []interface{}

	add := func(clause string, value interface{}) {
		params = append(params, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(params)))
	}

	if slots.Site != "" {
		add("work_orders.asset_id IN (SELECT asset_id FROM assets WHERE site = $%d)", slots.Site)
	}
	if slots.Area != "" {
		add("work_orders.asset_id IN (SELECT asset_id FROM assets WHERE area = $%d)", slots.Area)
	}
	if slots.Status != "" {
		add("status = $%d", string(slots.Status))
	}
	if slots.Type != "" {
		add("type = $%d", string(slots.Type))
	}
	if slots.Technician != "" {
		add("LOWER(technician) = LOWER($%d)", slots.Technician)
	}
	if slots.DateFrom != "" {
		add("DATE(COALESCE(closed_at, opened_at)) >= $%d::date", slots.DateFrom)
	}
	if slots.DateTo != "" {
		add("DATE(COALESCE(closed_at, opened_at)) <= $%d::date", slots.DateTo)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), params
}
