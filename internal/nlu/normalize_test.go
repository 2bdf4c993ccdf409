// internal/nlu/normalize_test.go
package nlu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercases",
			input:    "MTTR Este Mes",
			expected: "mttr este mes",
		},
		{
			name:     "strips diacritics",
			input:    "¿Cuántas órdenes tiene Sebastián?",
			expected: "¿cuantas ordenes tiene sebastian?",
		},
		{
			name:     "strips tilde n",
			input:    "hasta mañana",
			expected: "hasta manana",
		},
		{
			name:     "collapses whitespace runs",
			input:    "mttr   este \t mes",
			expected: "mttr este mes",
		},
		{
			name:     "trims the ends",
			input:    "  backlog  ",
			expected: "backlog",
		},
		{
			name:     "empty stays empty",
			input:    "",
			expected: "",
		},
		{
			name:     "whitespace only becomes empty",
			input:    " \t\n ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"¿Cuántas órdenes tiene Sebastián?",
		"  MTTR   este mes ",
		"cumplimiento pm agosto",
		"",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}
