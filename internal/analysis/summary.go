package analysis

import (
	"sort"

	"github.com/banshee-data/medevac-irr/internal/agreement"
	"github.com/banshee-data/medevac-irr/internal/confidence"
	"github.com/banshee-data/medevac-irr/internal/survey"
)

// Summary is the headline view of a run.
type Summary struct {
	Physicians int `json:"n_physicians"`
	Questions  int `json:"n_questions"`
	Records    int `json:"n_records"`

	// Means over questions with a defined value.
	MeanPercentageAgreement *float64 `json:"mean_percentage_agreement"`
	MeanFleissKappa         *float64 `json:"mean_fleiss_kappa"`

	Confidence confidence.Summary `json:"confidence"`
	Decisions  []DecisionShare    `json:"decisions"`
}

// DecisionShare is one row of the decision distribution.
type DecisionShare struct {
	Decision survey.Decision `json:"decision"`
	Count    int             `json:"count"`
	Share    float64         `json:"share"`
}

// Summarize derives the Summary of a Result's records and question table.
func Summarize(r *Result) Summary {
	physicians := make(map[string]struct{})
	questions := make(map[int]struct{})
	for _, rec := range r.Records {
		physicians[rec.PhysicianID] = struct{}{}
		questions[rec.QuestionID] = struct{}{}
	}

	var pas, kappas []float64
	for _, q := range r.Questions {
		if q.PercentageAgreement != nil {
			pas = append(pas, *q.PercentageAgreement)
		}
		if q.FleissKappa != nil {
			kappas = append(kappas, *q.FleissKappa)
		}
	}

	return Summary{
		Physicians:              len(physicians),
		Questions:               len(questions),
		Records:                 len(r.Records),
		MeanPercentageAgreement: agreement.Mean(pas),
		MeanFleissKappa:         agreement.Mean(kappas),
		Confidence:              confidence.Overall(r.Records),
		Decisions:               DecisionDistribution(r.Records),
	}
}

// DecisionDistribution counts records per decision, most frequent first and
// ties by name. Unmapped decisions are listed under their raw text.
func DecisionDistribution(records []survey.LongRecord) []DecisionShare {
	if len(records) == 0 {
		return nil
	}
	counts := make(map[survey.Decision]int)
	for _, r := range records {
		counts[r.Decision]++
	}
	out := make([]DecisionShare, 0, len(counts))
	for d, n := range counts {
		out = append(out, DecisionShare{
			Decision: d,
			Count:    n,
			Share:    float64(n) / float64(len(records)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Decision < out[j].Decision
	})
	return out
}
