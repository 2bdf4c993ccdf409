package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "mat-bot/internal/common/errors"
	"mat-bot/internal/common/metrics"
	"mat-bot/internal/kpi"
	"mat-bot/internal/models"
	"mat-bot/internal/nlu"
)

// BuilderFunc resolves one KPI intent into its reply text.
type BuilderFunc func(ctx context.Context, store *kpi.Store, slots models.Slots, now time.Time) (string, error)

var builders = map[models.Intent]BuilderFunc{
	models.IntentMTTR:         buildMTTR,
	models.IntentMTBF:         buildMTBF,
	models.IntentBacklog:      buildBacklog,
	models.IntentPMCompliance: buildPMCompliance,
	models.IntentCosts:        buildCosts,
	models.IntentTopDowntime:  buildTopDowntime,
	models.IntentStatusCounts: buildStatusCounts,
	models.IntentTechByPerson: buildTechByPerson,
}

// Execute runs the builder registered for intent and records the query
// duration under the intent label. A KPI intent without a builder is a
// wiring bug and surfaces as an unknown-intent error.
func Execute(ctx context.Context, store *kpi.Store, intent models.Intent, slots models.Slots, now time.Time) (string, error) {
	builder, ok := builders[intent]
	if !ok {
		return "", apperrors.NewUnknownIntentError(string(intent))
	}
	start := time.Now()
	text, err := builder(ctx, store, slots, now)
	metrics.KPIQueryDuration.WithLabelValues(string(intent)).Observe(time.Since(start).Seconds())
	return text, err
}

func buildMTTR(ctx context.Context, store *kpi.Store, slots models.Slots, now time.Time) (string, error) {
	hours, err := store.MTTR(ctx, slots)
	if err != nil {
		return "", err
	}
	return formatMTTR(hours, slots, now), nil
}

func buildMTBF(ctx context.Context, store *kpi.Store, slots models.Slots, now time.Time) (string, error) {
	hours, err := store.MTBF(ctx, slots)
	if err != nil {
		return "", err
	}
	return formatMTBF(hours, slots, now), nil
}

func buildBacklog(ctx context.Context, store *kpi.Store, slots models.Slots, now time.Time) (string, error) {
	days, err := store.BacklogDays(ctx, slots)
	if err != nil {
		return "", err
	}
	return formatBacklog(days, slots, now), nil
}

func buildPMCompliance(ctx context.Context, store *kpi.Store, slots models.Slots, now time.Time) (string, error) {
	pct, err := store.PMCompliance(ctx, slots)
	if err != nil {
		return "", err
	}
	return formatPMCompliance(pct, slots, now), nil
}

func buildCosts(ctx context.Context, store *kpi.Store, slots models.Slots, now time.Time) (string, error) {
	rows, err := store.MonthlyCosts(ctx, slots)
	if err != nil {
		return "", err
	}
	return formatCosts(rows, slots, now), nil
}

func buildTopDowntime(ctx context.Context, store *kpi.Store, slots models.Slots, now time.Time) (string, error) {
	rows, err := store.TopDowntime(ctx, slots)
	if err != nil {
		return "", err
	}
	return formatTopDowntime(rows, slots, now), nil
}

// buildStatusCounts drops any status slot so the breakdown always
// covers every state, even when the question named one.
func buildStatusCounts(ctx context.Context, store *kpi.Store, slots models.Slots, _ time.Time) (string, error) {
	slots.Status = ""
	counts, err := store.StatusCounts(ctx, slots)
	if err != nil {
		return "", err
	}
	return formatStatus(counts, slots), nil
}

// buildTechByPerson asks for the technician when the question named
// none. Like the status breakdown it ignores any status slot.
func buildTechByPerson(ctx context.Context, store *kpi.Store, slots models.Slots, _ time.Time) (string, error) {
	person := slots.Technician
	if person == "" {
		return technicianPrompt(), nil
	}
	slots.Status = ""
	counts, err := store.TechCounts(ctx, slots, person)
	if err != nil {
		return "", err
	}
	return formatTechPerson(person, counts, slots), nil
}

func technicianPrompt() string {
	return fmt.Sprintf("¿De qué técnico quieres ver las órdenes? (%s)", strings.Join(nlu.Technicians(), ", "))
}
