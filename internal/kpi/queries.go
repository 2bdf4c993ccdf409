// internal/kpi/queries.go
package kpi

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"mat-bot/internal/models"
)

const (
	dateLayout = "2006-01-02"

	costMonths       = 6
	topDowntimeLimit = 5
)

// MTTR averages repair hours over closed orders, preferring mttr_hours
// and falling back to labor_hours. Returns 0 when nothing matches.
func (s *Store) MTTR(ctx context.Context, slots models.Slots) (float64, error) {
	start := time.Now()

	filtered := slots
	filtered.Status = models.StatusClosed
	where, params := buildWhere(filtered)

	var avg sql.NullFloat64
	query := "SELECT AVG(COALESCE(mttr_hours, labor_hours)) FROM work_orders " + where
	if err := s.db.QueryRowContext(ctx, query, params...).Scan(&avg); err != nil {
		return 0, err
	}

	s.logQuery("mttr", start)
	return round2(avg.Float64), nil
}

// BacklogDays averages how many whole days the non-closed orders have
// been open.
func (s *Store) BacklogDays(ctx context.Context, slots models.Slots) (float64, error) {
	return s.backlogDaysAt(ctx, slots, time.Now().UTC())
}

func (s *Store) backlogDaysAt(ctx context.Context, slots models.Slots, now time.Time) (float64, error) {
	start := time.Now()

	filtered := slots
	filtered.Status = ""
	where, params := buildWhere(filtered)

	query := "SELECT opened_at FROM work_orders "
	if where == "" {
		query += "WHERE status != 'Cerrada'"
	} else {
		query += where + " AND status != 'Cerrada'"
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var days []int
	for rows.Next() {
		var openedAt sql.NullTime
		if err := rows.Scan(&openedAt); err != nil {
			return 0, err
		}
		if !openedAt.Valid {
			continue
		}
		days = append(days, int(now.Sub(openedAt.Time).Hours()/24))
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	s.logQuery("backlog", start)
	if len(days) == 0 {
		return 0, nil
	}
	sum := 0
	for _, d := range days {
		sum += d
	}
	return round2(float64(sum) / float64(len(days))), nil
}

// PMCompliance is the percentage of preventive orders due on or after
// the window start that were closed on or before their due date. The
// window start is the slot date_from when a range is set, otherwise the
// first day of the current month.
func (s *Store) PMCompliance(ctx context.Context, slots models.Slots) (float64, error) {
	return s.pmComplianceAt(ctx, slots, time.Now().UTC())
}

func (s *Store) pmComplianceAt(ctx context.Context, slots models.Slots, ref time.Time) (float64, error) {
	start := time.Now()

	filtered := slots
	filtered.Type = models.OrderTypePreventive
	where, params := buildWhere(filtered)

	rows, err := s.db.QueryContext(ctx, "SELECT due_date, closed_at FROM work_orders "+where, params...)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	type dueRow struct {
		due    sql.NullTime
		closed sql.NullTime
	}
	var all []dueRow
	for rows.Next() {
		var r dueRow
		if err := rows.Scan(&r.due, &r.closed); err != nil {
			return 0, err
		}
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	s.logQuery("pm_compliance", start)
	if len(all) == 0 {
		return 0, nil
	}

	windowStart := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	if slots.HasDateRange() {
		windowStart, err = time.Parse(dateLayout, slots.DateFrom)
		if err != nil {
			return 0, fmt.Errorf("parse date_from: %w", err)
		}
	}
	startDay := windowStart.Format(dateLayout)

	due := 0
	good := 0
	for _, r := range all {
		if !r.due.Valid {
			continue
		}
		dueDay := r.due.Time.UTC().Format(dateLayout)
		if dueDay < startDay {
			continue
		}
		due++
		if r.closed.Valid && r.closed.Time.UTC().Format(dateLayout) <= dueDay {
			good++
		}
	}
	if due == 0 {
		return 0, nil
	}
	return round2(100.0 * float64(good) / float64(due)), nil
}

// MonthlyCosts sums cost_total per opening month, newest first. With an
// explicit window only date_from's month is returned, otherwise the six
// most recent months.
func (s *Store) MonthlyCosts(ctx context.Context, slots models.Slots) ([]models.MonthlyCost, error) {
	start := time.Now()

	where, params := buildWhere(slots)

	var query string
	if slots.HasDateRange() {
		ym := slots.DateFrom
		if len(ym) > 7 {
			ym = ym[:7]
		}
		query = fmt.Sprintf(
			`SELECT to_char(opened_at, 'YYYY-MM') AS ym, SUM(cost_total)
			 FROM work_orders %s
			 GROUP BY ym HAVING to_char(opened_at, 'YYYY-MM') = $%d
			 ORDER BY ym DESC`,
			where, len(params)+1,
		)
		params = append(params, ym)
	} else {
		query = fmt.Sprintf(
			`SELECT to_char(opened_at, 'YYYY-MM') AS ym, SUM(cost_total)
			 FROM work_orders %s
			 GROUP BY ym ORDER BY ym DESC LIMIT %d`,
			where, costMonths,
		)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.MonthlyCost
	for rows.Next() {
		var month string
		var total sql.NullFloat64
		if err := rows.Scan(&month, &total); err != nil {
			return nil, err
		}
		out = append(out, models.MonthlyCost{Month: month, Total: total.Float64})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.logQuery("costs", start)
	return out, nil
}

// TopDowntime returns the five assets with the highest accumulated
// downtime hours.
func (s *Store) TopDowntime(ctx context.Context, slots models.Slots) ([]models.DowntimeEntry, error) {
	start := time.Now()

	where, params := buildWhere(slots)
	query := fmt.Sprintf(
		`SELECT a.asset_id, a.name, SUM(work_orders.downtime_hours) AS dt
		 FROM work_orders
		 JOIN assets a ON a.asset_id = work_orders.asset_id
		 %s
		 GROUP BY a.asset_id, a.name
		 ORDER BY dt DESC NULLS LAST
		 LIMIT %d`,
		where, topDowntimeLimit,
	)

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DowntimeEntry
	for rows.Next() {
		var entry models.DowntimeEntry
		var hours sql.NullFloat64
		if err := rows.Scan(&entry.AssetID, &entry.Name, &hours); err != nil {
			return nil, err
		}
		entry.Hours = hours.Float64
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.logQuery("top_downtime", start)
	return out, nil
}

// StatusCounts counts work orders per status. The three known statuses
// are always present in the result, unknown statuses only bump the
// total.
func (s *Store) StatusCounts(ctx context.Context, slots models.Slots) (models.StatusCounts, error) {
	start := time.Now()

	where, params := buildWhere(slots)
	query := "SELECT status, COUNT(*) FROM work_orders " + where + " GROUP BY status"

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return models.StatusCounts{}, err
	}
	defer rows.Close()

	var counts models.StatusCounts
	for rows.Next() {
		var status sql.NullString
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return models.StatusCounts{}, err
		}
		switch models.OrderStatus(status.String) {
		case models.StatusOpen:
			counts.Open = n
		case models.StatusInProgress:
			counts.InProgress = n
		case models.StatusClosed:
			counts.Closed = n
		}
		counts.Total += n
	}
	if err := rows.Err(); err != nil {
		return models.StatusCounts{}, err
	}

	s.logQuery("status_counts", start)
	return counts, nil
}

// MTBF averages the hours between consecutive closes of corrective
// orders. Returns 0 with fewer than two closes.
func (s *Store) MTBF(ctx context.Context, slots models.Slots) (float64, error) {
	start := time.Now()

	filtered := slots
	filtered.Type = models.OrderTypeCorrective
	filtered.Status = models.StatusClosed
	where, params := buildWhere(filtered)

	query := "SELECT closed_at FROM work_orders " + where + " AND closed_at IS NOT NULL ORDER BY closed_at"
	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var gaps []float64
	var prev time.Time
	first := true
	for rows.Next() {
		var closedAt time.Time
		if err := rows.Scan(&closedAt); err != nil {
			return 0, err
		}
		if !first {
			gaps = append(gaps, closedAt.Sub(prev).Hours())
		}
		prev = closedAt
		first = false
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	s.logQuery("mtbf", start)
	if len(gaps) == 0 {
		return 0, nil
	}
	sum := 0.0
	for _, g := range gaps {
		sum += g
	}
	return round2(sum / float64(len(gaps))), nil
}

// TechCounts is StatusCounts with the technician filter forced to the
// given person.
func (s *Store) TechCounts(ctx context.Context, slots models.Slots, person string) (models.StatusCounts, error) {
	filtered := slots
	filtered.Technician = person
	return s.StatusCounts(ctx, filtered)
}

func (s *Store) logQuery(name string, start time.Time) {
	s.logger.Debug("kpi query executed", map[string]interface{}{
		"kpi":    name,
		"execMs": time.Since(start).Milliseconds(),
	})
}

// round2 rounds to two decimals, ties to even.
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
