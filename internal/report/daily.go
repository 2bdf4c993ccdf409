package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mat-bot/internal/kpi"
	"mat-bot/internal/models"
)

// BuildDaily assembles the scheduled month-to-date digest: MTTR,
// backlog, PM compliance, the status breakdown and the top downtime
// list, in one message. The status line here uses the full count
// including unrecognized states, unlike the standalone breakdown.
func BuildDaily(ctx context.Context, store *kpi.Store, now time.Time) (string, error) {
	from, to := MonthWindow(now)
	slots := models.Slots{DateFrom: from, DateTo: to}

	mttr, err := store.MTTR(ctx, slots)
	if err != nil {
		return "", err
	}
	backlog, err := store.BacklogDays(ctx, slots)
	if err != nil {
		return "", err
	}
	pm, err := store.PMCompliance(ctx, slots)
	if err != nil {
		return "", err
	}
	counts, err := store.StatusCounts(ctx, slots)
	if err != nil {
		return "", err
	}
	top, err := store.TopDowntime(ctx, slots)
	if err != nil {
		return "", err
	}

	topBlock := "Sin paradas registradas en el periodo."
	if len(top) > 0 {
		lines := make([]string, len(top))
		for i, r := range top {
			lines[i] = fmt.Sprintf("- %s · %s: %s h", r.AssetID, r.Name, formatHours(r.Hours))
		}
		topBlock = strings.Join(lines, "\n")
	}

	return fmt.Sprintf(
		"📮 Reporte diario%s\n• 🛠️ MTTR: %s h\n• 📚 Backlog: %s días\n• ✅ Cumplimiento PM: %s%%\n• 📊 Estados: Abiertas %d · En Progreso %d · Cerradas %d · Total %d\n• ⛔ Top downtime:\n%s",
		periodLabel(slots, now),
		formatNumber(mttr),
		formatNumber(backlog),
		formatNumber(pm),
		counts.Open, counts.InProgress, counts.Closed, counts.Total,
		topBlock,
	), nil
}
