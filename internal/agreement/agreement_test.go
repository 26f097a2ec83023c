package agreement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/medevac-irr/internal/survey"
	"github.com/banshee-data/medevac-irr/internal/vignette"
)

const tol = 1e-12

func rec(physician string, q int, d survey.Decision) survey.LongRecord {
	v := vignette.Default().Resolve(q)
	return survey.LongRecord{
		PhysicianID:   physician,
		QuestionID:    q,
		Decision:      d,
		QuestionType:  v.QuestionType,
		VignetteClass: v.VignetteClass,
	}
}

func votes(q int, ds ...survey.Decision) []survey.LongRecord {
	out := make([]survey.LongRecord, len(ds))
	for i, d := range ds {
		out[i] = rec(string(rune('a'+i)), q, d)
	}
	return out
}

func TestPercentageAgreement_OneAgreeingPairOfThree(t *testing.T) {
	records := votes(1, survey.Medevac, survey.Medevac, survey.Remain)

	pa, ok := QuestionPercentageAgreement(records, 1)
	require.True(t, ok)
	assert.InDelta(t, 1.0/3.0, pa, tol)
}

func TestPercentageAgreement_Undefined(t *testing.T) {
	tests := []struct {
		name    string
		records []survey.LongRecord
	}{
		{"no records", nil},
		{"single physician", []survey.LongRecord{rec("a", 1, survey.Medevac), rec("a", 2, survey.Remain)}},
		{"disjoint coverage", []survey.LongRecord{rec("a", 1, survey.Medevac), rec("b", 2, survey.Medevac)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pa, ok := PercentageAgreement(tt.records)
			assert.False(t, ok)
			assert.Zero(t, pa)
		})
	}

	_, ok := QuestionPercentageAgreement(votes(1, survey.Medevac, survey.Medevac), 2)
	assert.False(t, ok, "question with no records")
}

func TestPercentageAgreement_PoolsPairsAcrossQuestions(t *testing.T) {
	records := append(
		votes(1, survey.Medevac, survey.Medevac, survey.Remain),
		votes(2, survey.Commercial, survey.Commercial)...,
	)
	// 1 of 3 pairs on q1 plus 1 of 1 on q2: pooled 2/4, not the mean of 1/3 and 1.
	pa, ok := PercentageAgreement(records)
	require.True(t, ok)
	assert.InDelta(t, 0.5, pa, tol)
}

func TestPercentageAgreement_BlankPhysicianExcludedFromPairs(t *testing.T) {
	records := []survey.LongRecord{
		rec("a", 5, survey.Commercial),
		rec("b", 5, survey.Commercial),
		rec("c", 1, survey.Remain), // no answer for question 5
	}
	pa, ok := QuestionPercentageAgreement(records, 5)
	require.True(t, ok)
	assert.Equal(t, 1.0, pa)

	metrics := QuestionLevelMetrics(records)
	require.Len(t, metrics, 2)
	assert.Equal(t, 5, metrics[1].QuestionID)
	assert.Equal(t, 2, metrics[1].NPhysicians)
}

func TestPercentageAgreement_InUnitInterval(t *testing.T) {
	sets := [][]survey.LongRecord{
		votes(1, survey.Medevac, survey.Commercial, survey.Remain),
		votes(1, survey.Medevac, survey.Medevac, survey.Medevac, survey.Medevac),
		votes(3, survey.Remain, survey.Commercial, survey.Remain, survey.Commercial, "Boat"),
	}
	for _, s := range sets {
		pa, ok := PercentageAgreement(s)
		require.True(t, ok)
		assert.GreaterOrEqual(t, pa, 0.0)
		assert.LessOrEqual(t, pa, 1.0)
	}
}

func TestPercentageAgreement_DuplicatePhysicianFirstWins(t *testing.T) {
	records := []survey.LongRecord{
		rec("a", 1, survey.Medevac),
		rec("a", 1, survey.Remain),
		rec("b", 1, survey.Medevac),
	}
	pa, ok := PercentageAgreement(records)
	require.True(t, ok)
	assert.Equal(t, 1.0, pa)
}

func TestFleissKappa(t *testing.T) {
	tests := []struct {
		name  string
		votes []survey.Decision
		want  float64
	}{
		// k=2: P_bar = 1, P_e = 5/9
		{"two categories", []survey.Decision{survey.Medevac, survey.Medevac, survey.Remain}, 1.0},
		// k=3 uniform: P_bar = 1/2, P_e = 1/3
		{"three categories uniform", []survey.Decision{survey.Medevac, survey.Commercial, survey.Remain}, 0.25},
		// k=3: P_j = 1/2, 1/4, 1/4 so P_e = 0.375
		{"three categories skewed", []survey.Decision{survey.Medevac, survey.Medevac, survey.Commercial, survey.Remain}, 0.2},
		// k=4 uniform: P_bar = 1/3, P_e = 1/4
		{"unmapped category counted", []survey.Decision{survey.Medevac, survey.Commercial, survey.Remain, "Boat"}, 1.0 / 9.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, ok := FleissKappa(votes(7, tt.votes...), 7)
			require.True(t, ok)
			assert.InDelta(t, tt.want, k, tol)
			assert.LessOrEqual(t, k, 1.0+tol)
		})
	}
}

func TestFleissKappa_Undefined(t *testing.T) {
	tests := []struct {
		name    string
		records []survey.LongRecord
		q       int
	}{
		{"all raters agree", votes(1, survey.Medevac, survey.Medevac, survey.Medevac), 1},
		{"single rater", votes(1, survey.Medevac), 1},
		{"question absent", votes(1, survey.Medevac, survey.Remain), 2},
		{"no records", nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := FleissKappa(tt.records, tt.q)
			assert.False(t, ok)
		})
	}
}

func TestFleissKappa_IgnoresOtherQuestions(t *testing.T) {
	records := append(
		votes(1, survey.Medevac, survey.Commercial, survey.Remain),
		votes(2, survey.Medevac, survey.Medevac, survey.Medevac)...,
	)
	k, ok := FleissKappa(records, 1)
	require.True(t, ok)
	assert.InDelta(t, 0.25, k, tol)
}
