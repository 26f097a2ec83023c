package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/medevac-irr/internal/survey"
)

func TestSurveyBuilder_Layout(t *testing.T) {
	t.Parallel()

	b := NewSurveyBuilder(2, 1).WithoutConfidence(2).
		AddPhysician("7", map[int]Answer{1: {"Remain", "3"}, 2: {"Activate medevac", ""}})

	assert.Equal(t, []string{survey.DefaultIDColumn, DecisionHeader(1), ConfidenceHeader, DecisionHeader(2)}, b.Headers())
	assert.Equal(t, [][]string{{"7", "Remain", "3", "Activate medevac"}}, b.Records())

	tbl := b.Table()
	require.Equal(t, 1, tbl.NumRows())
	assert.Equal(t, 4, tbl.NumColumns())
}

func TestSurveyBuilder_WithoutIDColumn(t *testing.T) {
	t.Parallel()

	b := NewSurveyBuilder(1).WithoutIDColumn().AddPhysician("ignored", map[int]Answer{1: {"Remain", "5"}})
	assert.Equal(t, []string{DecisionHeader(1), ConfidenceHeader}, b.Headers())
	assert.Equal(t, [][]string{{"Remain", "5"}}, b.Records())
}

func TestSurveyBuilder_CSV(t *testing.T) {
	t.Parallel()

	out := ThreeRaterFixture().CSV()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], survey.DefaultIDColumn+","))

	tbl, err := survey.ReadCSV(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.NumRows())
}
