package agreement

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/medevac-irr/internal/monitoring"
	"github.com/banshee-data/medevac-irr/internal/survey"
	"github.com/banshee-data/medevac-irr/internal/testutil"
	"github.com/banshee-data/medevac-irr/internal/vignette"
)

func ptr(v float64) *float64 { return &v }

func fixtureRecords(t *testing.T) []survey.LongRecord {
	t.Helper()
	tbl := testutil.ThreeRaterFixture().Table()
	return survey.Reshape(tbl, survey.ResolveColumns(tbl), vignette.Default())
}

func TestQuestionLevelMetrics_Fixture(t *testing.T) {
	metrics := QuestionLevelMetrics(fixtureRecords(t))
	require.Len(t, metrics, 3)

	q1 := metrics[0]
	assert.Equal(t, 1, q1.QuestionID)
	assert.Equal(t, vignette.ClearMedevac, q1.QuestionType)
	assert.Equal(t, 3, q1.NPhysicians)
	require.NotNil(t, q1.PercentageAgreement)
	assert.InDelta(t, 1.0/3.0, *q1.PercentageAgreement, tol)
	require.NotNil(t, q1.FleissKappa)
	assert.InDelta(t, 1.0, *q1.FleissKappa, tol)
	assert.Equal(t, 2, q1.DecisionMedevac)
	assert.Equal(t, 0, q1.DecisionCommercial)
	assert.Equal(t, 1, q1.DecisionRemain)

	q5 := metrics[1]
	assert.Equal(t, 5, q5.QuestionID)
	assert.Equal(t, 2, q5.NPhysicians, "blank answer from physician 103 is excluded")

	for _, m := range metrics {
		assert.LessOrEqual(t, m.DecisionMedevac+m.DecisionCommercial+m.DecisionRemain+m.DecisionOther, m.NPhysicians)
	}
}

func TestQuestionLevelMetrics_CountsUnmappedDecisions(t *testing.T) {
	var logged []string
	prev := monitoring.Logf
	monitoring.SetLogger(func(format string, v ...interface{}) {
		logged = append(logged, fmt.Sprintf(format, v...))
	})
	t.Cleanup(func() { monitoring.SetLogger(prev) })

	records := votes(2, survey.Medevac, survey.Remain, "Call a colleague")
	metrics := QuestionLevelMetrics(records)
	require.Len(t, metrics, 1)

	m := metrics[0]
	assert.Equal(t, 1, m.DecisionMedevac)
	assert.Equal(t, 1, m.DecisionRemain)
	assert.Equal(t, 1, m.DecisionOther)
	require.Len(t, logged, 1)
	assert.Contains(t, logged[0], "question 2")
}

func TestQuestionLevelMetrics_BlankIDDoesNotMergePhysicians(t *testing.T) {
	tbl := testutil.NewSurveyBuilder(1).
		AddPhysician("", map[int]testutil.Answer{1: {"Activate Medevac", ""}}).
		AddPhysician("0", map[int]testutil.Answer{1: {"Remain in village", ""}}).
		AddPhysician("2", map[int]testutil.Answer{1: {"Remain", ""}}).
		Table()
	metrics := QuestionLevelMetrics(survey.Reshape(tbl, survey.ResolveColumns(tbl), vignette.Default()))
	require.Len(t, metrics, 1)

	m := metrics[0]
	assert.Equal(t, 3, m.NPhysicians)
	require.NotNil(t, m.PercentageAgreement)
	assert.InDelta(t, 1.0/3.0, *m.PercentageAgreement, tol)
	assert.Equal(t, m.NPhysicians, m.DecisionMedevac+m.DecisionCommercial+m.DecisionRemain+m.DecisionOther)
}

func TestQuestionLevelMetrics_SinglePhysicianUndefined(t *testing.T) {
	metrics := QuestionLevelMetrics([]survey.LongRecord{rec("a", 4, survey.Commercial)})
	require.Len(t, metrics, 1)
	assert.Nil(t, metrics[0].PercentageAgreement)
	assert.Nil(t, metrics[0].FleissKappa)
	assert.Equal(t, 1, metrics[0].NPhysicians)
}

func TestAgreementByClass_SkipsUndefined(t *testing.T) {
	// Q1 and Q4 are both class A vignettes. Q1: 3 of 6 pairs agree.
	// Q4 has a single rater so both of its metrics are undefined.
	records := append(
		votes(1, survey.Medevac, survey.Medevac, survey.Medevac, survey.Remain),
		rec("z", 4, survey.Medevac),
	)
	classes := AgreementByClass(records)
	require.Len(t, classes, 1)

	got := classes[0]
	assert.Equal(t, vignette.ClassA, got.VignetteClass)
	assert.Equal(t, 2, got.NQuestions)
	require.NotNil(t, got.MeanPercentageAgreement)
	assert.InDelta(t, 0.5, *got.MeanPercentageAgreement, tol)
	require.NotNil(t, got.MeanFleissKappa)
	assert.InDelta(t, 1.0, *got.MeanFleissKappa, tol)
}

func TestAgreementByClass_AllUndefined(t *testing.T) {
	records := []survey.LongRecord{
		rec("a", 1, survey.Medevac),
		rec("b", 2, survey.Medevac),
	}
	classes := AgreementByClass(records)
	require.Len(t, classes, 1)
	assert.Equal(t, 2, classes[0].NQuestions)
	assert.Nil(t, classes[0].MeanPercentageAgreement)
	assert.Nil(t, classes[0].MeanFleissKappa)
}

func TestAgreementByClass_OrderedByClassName(t *testing.T) {
	records := append(votes(5, survey.Commercial, survey.Commercial), votes(1, survey.Medevac, survey.Remain)...)
	records = append(records, survey.LongRecord{
		PhysicianID:   "a",
		QuestionID:    99,
		Decision:      survey.Remain,
		QuestionType:  vignette.Unknown,
		VignetteClass: vignette.Unknown,
	})

	var names []string
	for _, c := range AgreementByClass(records) {
		names = append(names, c.VignetteClass)
	}
	want := []string{vignette.ClassA, vignette.ClassB, vignette.Unknown}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("class order mismatch (-want +got):\n%s", diff)
	}
}

func TestMean(t *testing.T) {
	assert.Nil(t, Mean(nil))
	assert.Equal(t, ptr(2.0), Mean([]float64{1, 2, 3}))
	assert.Equal(t, ptr(0.5), Mean([]float64{0.5}))
}
