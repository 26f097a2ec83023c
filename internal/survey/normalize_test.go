package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDecision(t *testing.T) {
	tests := []struct {
		name string
		in   Cell
		want Decision
		ok   bool
	}{
		{"medevac full", NewCell("Activate Medevac Immediately"), Medevac, true},
		{"medevac short", NewCell("activate medevac"), Medevac, true},
		{"medevac immediately", NewCell("MEDEVAC IMMEDIATELY please"), Medevac, true},
		{"commercial full", NewCell("Commercial flight next available"), Commercial, true},
		{"commercial next", NewCell("Next commercial flight"), Commercial, true},
		{"remain full", NewCell("Remain in village (for ongoing observation or treatment, if necessary)"), Remain, true},
		{"remain short", NewCell("  remain  "), Remain, true},
		{"unmapped kept verbatim", NewCell("  Transfer by boat "), Decision("Transfer by boat"), true},
		{"blank", NewCell("   "), "", false},
		{"empty", NewCell(""), "", false},
		{"missing", Cell{}, "", false},
		{"na token", NewCell("N/A"), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeDecision(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecision_Known(t *testing.T) {
	for _, d := range KnownDecisions {
		assert.True(t, d.Known(), string(d))
	}
	assert.False(t, Decision("Transfer by boat").Known())
}

func TestNewCell_MissingTokens(t *testing.T) {
	for _, tok := range []string{"", "NA", "N/A", "n/a", "NaN", "null", "None", "#N/A"} {
		assert.False(t, NewCell(tok).Valid, "%q", tok)
	}
	assert.True(t, NewCell("0").Valid)
	assert.True(t, NewCell(" ").Valid)
	assert.True(t, NewCell(" ").Blank())
}
