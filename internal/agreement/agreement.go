package agreement

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/medevac-irr/internal/survey"
)

// PercentageAgreement is the fraction of agreeing physician pairs, pooled
// over every question present in records. A pair is comparable only when
// both physicians answered the same question. The result is undefined
// (false) with fewer than two physicians or no comparable pairs.
func PercentageAgreement(records []survey.LongRecord) (float64, bool) {
	if distinctPhysicians(records) < 2 {
		return 0, false
	}
	var agree, total int
	for _, b := range ballots(records) {
		a, n := b.agreeingPairs()
		agree += a
		total += n
	}
	if total == 0 {
		return 0, false
	}
	return float64(agree) / float64(total), true
}

// QuestionPercentageAgreement restricts PercentageAgreement to one question.
func QuestionPercentageAgreement(records []survey.LongRecord, question int) (float64, bool) {
	return PercentageAgreement(filterQuestion(records, question))
}

// FleissKappa computes Fleiss' Kappa for one question from a raters ×
// categories indicator matrix, with categories limited to the decisions
// observed for that question. Each physician contributes one rating.
//
// P_j is the share of ratings in category j, P_i = Σ_j n_ij² / (k-1),
// P_e = Σ_j P_j² and κ = (mean(P_i) - P_e) / (1 - P_e). The result is
// undefined with fewer than two raters or categories, or when P_e == 1.
func FleissKappa(records []survey.LongRecord, question int) (float64, bool) {
	bs := ballots(filterQuestion(records, question))
	if len(bs) == 0 {
		return 0, false
	}
	b := bs[0]

	categories := sortedDecisions(b.tally())
	n, k := len(b.physicians), len(categories)
	if n < 2 || k < 2 {
		return 0, false
	}
	index := make(map[survey.Decision]int, k)
	for j, c := range categories {
		index[c] = j
	}

	ratings := mat.NewDense(n, k, nil)
	for i, p := range b.physicians {
		ratings.Set(i, index[b.decisions[p]], 1)
	}

	pj := make([]float64, k)
	for j := 0; j < k; j++ {
		pj[j] = mat.Sum(ratings.ColView(j)) / float64(n)
	}

	pi := make([]float64, n)
	for i := 0; i < n; i++ {
		row := ratings.RawRowView(i)
		pi[i] = floats.Dot(row, row) / float64(k-1)
	}

	pBar := floats.Sum(pi) / float64(n)
	pe := floats.Dot(pj, pj)
	if pe == 1 {
		return 0, false
	}
	return (pBar - pe) / (1 - pe), true
}
