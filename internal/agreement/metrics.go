package agreement

import (
	"sort"

	"github.com/banshee-data/medevac-irr/internal/monitoring"
	"github.com/banshee-data/medevac-irr/internal/survey"
)

// QuestionMetrics is the agreement summary for one vignette.
//
// Decision tallies cover the three named categories only. DecisionOther
// counts answers that normalisation left as free text; they appear in no
// named tally.
type QuestionMetrics struct {
	QuestionID          int      `json:"question"`
	QuestionType        string   `json:"question_type"`
	VignetteClass       string   `json:"vignette_class"`
	NPhysicians         int      `json:"n_physicians"`
	PercentageAgreement *float64 `json:"percentage_agreement"`
	FleissKappa         *float64 `json:"fleiss_kappa"`
	DecisionMedevac     int      `json:"decision_medevac"`
	DecisionCommercial  int      `json:"decision_commercial"`
	DecisionRemain      int      `json:"decision_remain"`
	DecisionOther       int      `json:"decision_other"`
}

// ClassMetrics averages per-question agreement within a vignette class.
type ClassMetrics struct {
	VignetteClass           string   `json:"vignette_class"`
	NQuestions              int      `json:"n_questions"`
	MeanPercentageAgreement *float64 `json:"mean_percentage_agreement"`
	MeanFleissKappa         *float64 `json:"mean_fleiss_kappa"`
}

// QuestionLevelMetrics returns one row per question present in records,
// ordered by question id. Type and class come from the question's first
// record.
func QuestionLevelMetrics(records []survey.LongRecord) []QuestionMetrics {
	byQ := groupByQuestion(records)
	out := make([]QuestionMetrics, 0, len(byQ))
	for _, q := range sortedKeys(byQ) {
		qr := byQ[q]
		m := QuestionMetrics{
			QuestionID:          q,
			QuestionType:        qr[0].QuestionType,
			VignetteClass:       qr[0].VignetteClass,
			NPhysicians:         distinctPhysicians(qr),
			PercentageAgreement: optional(PercentageAgreement(qr)),
			FleissKappa:         optional(FleissKappa(qr, q)),
		}
		for _, r := range qr {
			switch r.Decision {
			case survey.Medevac:
				m.DecisionMedevac++
			case survey.Commercial:
				m.DecisionCommercial++
			case survey.Remain:
				m.DecisionRemain++
			default:
				m.DecisionOther++
			}
		}
		if m.DecisionOther > 0 {
			monitoring.Logf("question %d: %d unmapped decision(s) excluded from category tallies", q, m.DecisionOther)
		}
		out = append(out, m)
	}
	return out
}

// AgreementByClass groups records by vignette class and averages the
// per-question percentage agreement and Fleiss' Kappa of each class.
// Undefined per-question values are skipped; a class without any defined
// value has a nil mean.
func AgreementByClass(records []survey.LongRecord) []ClassMetrics {
	byClass := make(map[string][]survey.LongRecord)
	for _, r := range records {
		byClass[r.VignetteClass] = append(byClass[r.VignetteClass], r)
	}
	classes := make([]string, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Strings(classes)

	out := make([]ClassMetrics, 0, len(classes))
	for _, c := range classes {
		byQ := groupByQuestion(byClass[c])
		var pas, kappas []float64
		for _, q := range sortedKeys(byQ) {
			if pa, ok := PercentageAgreement(byQ[q]); ok {
				pas = append(pas, pa)
			}
			if k, ok := FleissKappa(byQ[q], q); ok {
				kappas = append(kappas, k)
			}
		}
		out = append(out, ClassMetrics{
			VignetteClass:           c,
			NQuestions:              len(byQ),
			MeanPercentageAgreement: Mean(pas),
			MeanFleissKappa:         Mean(kappas),
		})
	}
	return out
}

// Mean averages xs, returning nil for an empty slice.
func Mean(xs []float64) *float64 {
	if len(xs) == 0 {
		return nil
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	m := sum / float64(len(xs))
	return &m
}

func optional(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}

func groupByQuestion(records []survey.LongRecord) map[int][]survey.LongRecord {
	byQ := make(map[int][]survey.LongRecord)
	for _, r := range records {
		byQ[r.QuestionID] = append(byQ[r.QuestionID], r)
	}
	return byQ
}

func sortedKeys(m map[int][]survey.LongRecord) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func sortedDecisions(counts map[survey.Decision]int) []survey.Decision {
	out := make([]survey.Decision, 0, len(counts))
	for d := range counts {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
