// Package report renders KPI results into the Spanish replies the bot
// sends over Telegram. Every string here is user-visible, so formatting
// is deliberately rigid: fixed emoji, fixed separators, fixed number
// rendering.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"mat-bot/internal/models"
)

const dateLayout = "2006-01-02"

var moneyPrinter = message.NewPrinter(language.Spanish)

// MonthWindow returns the month-to-date window for ref as ISO dates:
// the first day of ref's month and ref's own date.
func MonthWindow(ref time.Time) (string, string) {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.Format(dateLayout), ref.Format(dateLayout)
}

// periodLabel renders the window suffix appended to single-value
// replies. The month-to-date window collapses to " (Mes actual)"; any
// other complete window renders as " (from → to)". Note the leading
// space: labels concatenate directly after the closing period.
func periodLabel(slots models.Slots, ref time.Time) string {
	if !slots.HasDateRange() {
		return ""
	}
	from, to := MonthWindow(ref)
	if slots.DateFrom == from && slots.DateTo == to {
		return " (Mes actual)"
	}
	return fmt.Sprintf(" (%s → %s)", slots.DateFrom, slots.DateTo)
}

// rangeTag is the header tag used by the status breakdowns. Unlike
// periodLabel it carries no leading space and never collapses an
// explicit window to "Mes actual".
func rangeTag(slots models.Slots) string {
	if slots.HasDateRange() {
		return fmt.Sprintf("(%s → %s)", slots.DateFrom, slots.DateTo)
	}
	return "(Mes actual)"
}

// formatNumber renders a value rounded to two decimals the way the
// replies expect: at least one decimal digit, no trailing second zero.
// 7.50 renders as "7.5", 5.00 as "5.0", 33.33 stays "33.33".
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if strings.HasSuffix(s, "0") {
		s = s[:len(s)-1]
	}
	return s
}

// formatHours renders downtime hours with exactly one decimal.
func formatHours(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// formatMoney renders an amount with Spanish separators: thousands
// with "." and decimals with ",", e.g. 1234567.8 -> "1.234.567,80".
func formatMoney(v float64) string {
	return moneyPrinter.Sprintf("%.2f", v)
}

func formatMTTR(hours float64, slots models.Slots, ref time.Time) string {
	return fmt.Sprintf("🛠️ MTTR: %s h.%s", formatNumber(hours), periodLabel(slots, ref))
}

func formatMTBF(hours float64, slots models.Slots, ref time.Time) string {
	return fmt.Sprintf("⚙️ MTBF: %s h.%s", formatNumber(hours), periodLabel(slots, ref))
}

func formatBacklog(days float64, slots models.Slots, ref time.Time) string {
	return fmt.Sprintf("📚 Backlog: %s días promedio.%s", formatNumber(days), periodLabel(slots, ref))
}

func formatPMCompliance(pct float64, slots models.Slots, ref time.Time) string {
	return fmt.Sprintf("✅ Cumplimiento PM: %s%%.%s", formatNumber(pct), periodLabel(slots, ref))
}

func formatCosts(rows []models.MonthlyCost, slots models.Slots, ref time.Time) string {
	label := periodLabel(slots, ref)
	if len(rows) == 0 {
		return fmt.Sprintf("💸 Sin costos en el periodo%s.", label)
	}
	parts := make([]string, len(rows))
	for i, r := range rows {
		parts[i] = fmt.Sprintf("%s: $%s", r.Month, formatMoney(r.Total))
	}
	return fmt.Sprintf("💸 Costos mensuales: %s.%s", strings.Join(parts, "; "), label)
}

func formatTopDowntime(rows []models.DowntimeEntry, slots models.Slots, ref time.Time) string {
	label := periodLabel(slots, ref)
	if len(rows) == 0 {
		return fmt.Sprintf("⏱️ Sin paradas registradas en el periodo%s.", label)
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = fmt.Sprintf("%s · %s: %s h", r.AssetID, r.Name, formatHours(r.Hours))
	}
	return fmt.Sprintf("⛔ Top downtime%s:\n- %s", label, strings.Join(lines, "\n- "))
}

// formatStatus totals only the three known states, so rows with an
// unexpected status value are visible in the per-state lines they
// belong to but never inflate the Total line.
func formatStatus(counts models.StatusCounts, slots models.Slots) string {
	total := counts.Open + counts.InProgress + counts.Closed
	return fmt.Sprintf(
		"📊 Estados %s:\n• Abiertas: %d\n• En Progreso: %d\n• Cerradas: %d\n• Total: %d",
		rangeTag(slots), counts.Open, counts.InProgress, counts.Closed, total,
	)
}

func formatTechPerson(person string, counts models.StatusCounts, slots models.Slots) string {
	total := counts.Open + counts.InProgress + counts.Closed
	return fmt.Sprintf(
		"👤 %s %s:\n• Abiertas: %d\n• En Progreso: %d\n• Cerradas: %d\n• Total: %d",
		person, rangeTag(slots), counts.Open, counts.InProgress, counts.Closed, total,
	)
}
