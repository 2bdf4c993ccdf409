// internal/nlu/intent_test.go
package nlu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mat-bot/internal/models"
)

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected models.Intent
	}{
		// Greetings take priority over everything else.
		{"greeting", "hola", models.IntentHelp},
		{"greeting beats kpi keyword", "hola, cuál es el mttr", models.IntentHelp},
		{"slash start", "/start", models.IntentHelp},
		{"ayuda", "necesito ayuda", models.IntentHelp},

		// KPI keywords.
		{"mttr", "mttr este mes", models.IntentMTTR},
		{"mttr long form", "tiempo medio de reparacion", models.IntentMTTR},
		{"mtbf", "mtbf", models.IntentMTBF},
		{"mtbf long form", "tiempo medio entre fallas", models.IntentMTBF},
		{"pm compliance", "cumplimiento pm agosto", models.IntentPMCompliance},
		{"pm compliance spaced", "cumplimiento de pm", models.IntentPMCompliance},
		{"backlog", "backlog", models.IntentBacklog},
		{"atraso", "cuanto atraso tenemos", models.IntentBacklog},
		{"costos", "costos últimos 60 días", models.IntentCosts},
		{"gastos", "gastos mes pasado", models.IntentCosts},
		{"paradas", "paradas de este mes", models.IntentTopDowntime},
		{"downtime", "top downtime últimos 30 días", models.IntentTopDowntime},
		{"tiempo muerto", "tiempo muerto por equipo", models.IntentTopDowntime},
		{"estados", "estados", models.IntentStatusCounts},
		{"conteos", "conteos por estado", models.IntentStatusCounts},

		// Filler phrases are stripped before matching.
		{"filler dime", "dime el mttr", models.IntentMTTR},
		{"filler muestrame", "muestrame los costos", models.IntentCosts},
		{"filler por favor", "por favor backlog", models.IntentBacklog},

		// Order noun without a technician always yields the status
		// summary, even when other patterns would match.
		{"orders override estado", "estado de las ordenes", models.IntentStatusCounts},
		{"orders override accented", "¿cuántas órdenes abiertas hay?", models.IntentStatusCounts},
		{"orders override ots", "ots abiertas", models.IntentStatusCounts},

		// Orders plus a technician is a per-person question.
		{"tech by person", "cuantas ordenes tiene sebastian", models.IntentTechByPerson},
		{"tech by person accented", "¿Cuántas órdenes tiene Sebastián?", models.IntentTechByPerson},
		{"tech by person with status", "¿cuántas órdenes cerradas tiene Andres?", models.IntentTechByPerson},

		// Fallback: technician plus an open/closed/progress word.
		{"tech fallback", "sebastian tiene abiertas?", models.IntentTechByPerson},
		{"tech fallback progreso", "mateo en progreso", models.IntentTechByPerson},

		// Everything else degrades to HELP.
		{"nonsense", "asdf qwerty zxcv", models.IntentHelp},
		{"empty", "", models.IntentHelp},
		{"technician alone", "pablo", models.IntentHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectIntent(tt.text))
		})
	}
}

func TestDetectIntentDiacriticEquivalence(t *testing.T) {
	accented := "¿Cuántas órdenes tiene Sebastián?"
	plain := "cuantas ordenes tiene sebastian"

	assert.Equal(t, DetectIntent(plain), DetectIntent(accented))
	assert.Equal(t,
		ExtractSlots(plain, nil, nil),
		ExtractSlots(accented, nil, nil),
	)
}

func TestIsGreeting(t *testing.T) {
	tests := []struct {
		text     string
		expected bool
	}{
		{"hola", true},
		{"Buenos días!", true},
		{"buenas tardes equipo", true},
		{"/help", true},
		{"que puedes hacer", true},
		{"mttr este mes", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, IsGreeting(tt.text), "text %q", tt.text)
	}
}

func TestIsFarewell(t *testing.T) {
	tests := []struct {
		text     string
		expected bool
	}{
		{"gracias", true},
		{"muchas gracias!", true},
		{"hasta mañana", true},
		{"nos vemos", true},
		{"chao", true},
		{"mttr este mes", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, IsFarewell(tt.text), "text %q", tt.text)
	}
}
