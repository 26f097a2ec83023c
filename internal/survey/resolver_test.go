package survey_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/medevac-irr/internal/survey"
	"github.com/banshee-data/medevac-irr/internal/testutil"
)

func TestParseQuestionHeader(t *testing.T) {
	tests := []struct {
		header string
		want   int
		ok     bool
	}{
		{"Question 1: A 54 year old man...", 1, true},
		{"Question 20: Final case", 20, true},
		{"Question  7 : spaced", 7, true},
		{"Vignette Question 3: prefixed", 3, true},
		{"Question 3", 0, false},
		{"Question A: not a number", 0, false},
		{"How confident are you of this decision?", 0, false},
		{"Record ID", 0, false},
		{"question 4: lower case", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, ok := survey.ParseQuestionHeader(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveColumns_Basic(t *testing.T) {
	tbl := testutil.NewSurveyBuilder(1, 2).WithoutConfidence(2).
		AddPhysician("1", map[int]testutil.Answer{1: {"Remain", "4"}, 2: {"Remain", ""}}).
		Table()

	m := survey.ResolveColumns(tbl)
	assert.Equal(t, map[int]int{1: 1, 2: 3}, m.Decision)
	assert.Equal(t, map[int]int{1: 2}, m.Confidence)
	assert.Equal(t, []int{1, 2}, m.QuestionIDs())

	_, ok := m.ConfidenceColumn(2)
	assert.False(t, ok)
}

func TestResolveColumns_DuplicatePrefersMoreData(t *testing.T) {
	headers := []string{
		"Question 1: legacy",
		testutil.ConfidenceHeader,
		"Question 1: current",
		testutil.ConfidenceHeader,
	}
	rows := [][]string{
		{"", "", "Remain", "5"},
		{"Remain", "3", "Activate medevac", "6"},
	}
	m := survey.ResolveColumns(survey.NewTable(headers, rows))
	assert.Equal(t, 2, m.Decision[1])
	assert.Equal(t, 3, m.Confidence[1])
}

func TestResolveColumns_DuplicateTieKeepsFirst(t *testing.T) {
	headers := []string{"Question 4: a", "Question 4: b"}
	rows := [][]string{{"Remain", "Remain"}, {"", ""}}
	m := survey.ResolveColumns(survey.NewTable(headers, rows))
	assert.Equal(t, 0, m.Decision[4])
	assert.Empty(t, m.Confidence)
}

func TestResolveColumns_ConfidenceMustBeAdjacent(t *testing.T) {
	headers := []string{"Question 2: x", "Comments", testutil.ConfidenceHeader}
	m := survey.ResolveColumns(survey.NewTable(headers, [][]string{{"Remain", "ok", "7"}}))
	assert.Equal(t, map[int]int{2: 0}, m.Decision)
	assert.Empty(t, m.Confidence)
}

func TestResolveColumns_NoDecisionColumns(t *testing.T) {
	tbl := survey.NewTable([]string{"Record ID", "Comments"}, [][]string{{"1", "hi"}})
	m := survey.ResolveColumns(tbl)
	assert.Empty(t, m.Decision)
	assert.Empty(t, m.Confidence)
	assert.Empty(t, survey.Reshape(tbl, m, nil))

	assert.Empty(t, survey.ResolveColumns(nil).Decision)
}

func TestResolveColumns_Idempotent(t *testing.T) {
	tbl := testutil.ThreeRaterFixture().Table()
	first := survey.ResolveColumns(tbl)
	second := survey.ResolveColumns(tbl)
	require.Equal(t, first, second)
}

func TestPositionalResolver_SatisfiesInterface(t *testing.T) {
	var r survey.ColumnResolver = survey.PositionalResolver{}
	m := r.Resolve(testutil.ThreeRaterFixture().Table())
	assert.Equal(t, []int{1, 5, 16}, m.QuestionIDs())
}
