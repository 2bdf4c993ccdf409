// internal/nlu/slots_test.go
package nlu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mat-bot/internal/models"
)

func TestExtractSlotsType(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected models.OrderType
	}{
		{"pm", "ordenes pm abiertas", models.OrderTypePreventive},
		{"cm", "costos de cm", models.OrderTypeCorrective},
		{"both mentions keep cm", "ordenes pm y cm", models.OrderTypeCorrective},
		{"pm inside a word does not count", "rpm del motor", ""},
		{"none", "mttr este mes", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := ExtractSlots(tt.text, nil, nil)
			assert.Equal(t, tt.expected, slots.Type)
		})
	}
}

func TestExtractSlotsStatus(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected models.OrderStatus
	}{
		{"abiertas", "ordenes abiertas", models.StatusOpen},
		{"cerradas", "ordenes cerradas", models.StatusClosed},
		{"en progreso", "ordenes en progreso", models.StatusInProgress},
		{"open beats closed", "abiertas y cerradas", models.StatusOpen},
		{"closed beats progreso", "cerradas en progreso", models.StatusClosed},
		{"none", "mttr este mes", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := ExtractSlots(tt.text, nil, nil)
			assert.Equal(t, tt.expected, slots.Status)
		})
	}
}

func TestExtractSlotsTechnician(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"with order noun", "cuantas ordenes tiene sebastian", "Sebastian"},
		{"accented name", "¿Cuántas órdenes tiene Sebastián?", "Sebastian"},
		{"with abiertas", "abiertas de jose", "Jose"},
		{"with cerradas", "cerradas de pablo", "Pablo"},
		{"roster scan order", "ordenes de esteban y andres", "Andres"},
		{"name alone does not count", "sebastian", ""},
		{"name with progreso does not count", "sebastian en progreso", ""},
		{"unknown name", "cuantas ordenes tiene ricardo", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := ExtractSlots(tt.text, nil, nil)
			assert.Equal(t, tt.expected, slots.Technician)
		})
	}
}

func TestExtractSlotsDates(t *testing.T) {
	ref := time.Date(2025, time.March, 15, 8, 30, 0, 0, time.UTC)

	slots := ExtractSlotsAt("mttr agosto 2024", nil, nil, ref)
	assert.Equal(t, "2024-08-01", slots.DateFrom)
	assert.Equal(t, "2024-08-31", slots.DateTo)

	slots = ExtractSlotsAt("ordenes cerradas ultimos 30 dias", nil, nil, ref)
	assert.Equal(t, "2025-02-13", slots.DateFrom)
	assert.Equal(t, "2025-03-15", slots.DateTo)

	slots = ExtractSlotsAt("mttr", nil, nil, ref)
	assert.Empty(t, slots.DateFrom)
	assert.Empty(t, slots.DateTo)
}

func TestExtractSlotsSiteArea(t *testing.T) {
	sites := []string{"Planta Norte", "Planta Sur", "Norte"}
	areas := []string{"Producción", "Mantenimiento"}

	tests := []struct {
		name         string
		text         string
		expectedSite string
		expectedArea string
	}{
		{"site match keeps stored spelling", "mttr en planta norte", "Planta Norte", ""},
		{"area match is accent insensitive", "backlog de produccion", "", "Producción"},
		{"site and area together", "costos planta sur produccion", "Planta Sur", "Producción"},
		{"no partial word match", "mttr en nortec", "", ""},
		{"list order wins", "planta sur y planta norte", "Planta Norte", ""},
		{"no mention", "mttr este mes", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := ExtractSlots(tt.text, sites, areas)
			assert.Equal(t, tt.expectedSite, slots.Site)
			assert.Equal(t, tt.expectedArea, slots.Area)
		})
	}
}

func TestExtractSlotsNonsenseLeavesEverythingUnset(t *testing.T) {
	slots := ExtractSlots("asdf qwerty zxcv", []string{"Planta Norte"}, []string{"Producción"})
	assert.True(t, slots.IsEmpty())
}
