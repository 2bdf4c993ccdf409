package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReportTime(t *testing.T) {
	tests := []struct {
		input   string
		hour    int
		minute  int
		wantErr bool
	}{
		{input: "07:00", hour: 7, minute: 0},
		{input: "23:59", hour: 23, minute: 59},
		{input: "0:0", hour: 0, minute: 0},
		{input: "7:5", hour: 7, minute: 5},
		{input: "24:00", wantErr: true},
		{input: "10:60", wantErr: true},
		{input: "-1:30", wantErr: true},
		{input: "0700", wantErr: true},
		{input: "07:00:30", wantErr: true},
		{input: "aa:bb", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			hour, minute, err := ParseReportTime(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hour, hour)
			assert.Equal(t, tt.minute, minute)
		})
	}
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("ops@example.com"))
	assert.True(t, ValidateEmail("mantenimiento.norte@planta.com.co"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail("missing@domain"))
	assert.False(t, ValidateEmail(""))
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("+573001234567"))
	assert.True(t, ValidatePhone("300 123 4567"))
	assert.False(t, ValidatePhone("12345"))
	assert.False(t, ValidatePhone("abc"))
}
