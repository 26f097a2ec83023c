package agreement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpret(t *testing.T) {
	tests := []struct {
		kappa *float64
		want  Strength
	}{
		{nil, StrengthUndefined},
		{ptr(-0.1), StrengthPoor},
		{ptr(0), StrengthSlight},
		{ptr(0.2), StrengthSlight},
		{ptr(0.25), StrengthFair},
		{ptr(0.5), StrengthModerate},
		{ptr(0.61), StrengthSubstantial},
		{ptr(0.81), StrengthAlmostPerfect},
		{ptr(1), StrengthAlmostPerfect},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Interpret(tt.kappa))
	}
}
