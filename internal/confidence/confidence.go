// Package confidence summarises physicians' self-rated confidence by
// decision category and by vignette class.
package confidence

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/medevac-irr/internal/survey"
)

// OverallGroup is the group label of the Overall summary.
const OverallGroup = "Overall"

// Summary describes the confidence ratings of one group. MeanConfidence
// needs at least one rating and StdConfidence (sample, n-1) at least two;
// otherwise they are nil.
type Summary struct {
	Group          string   `json:"group"`
	MeanConfidence *float64 `json:"mean_confidence"`
	StdConfidence  *float64 `json:"std_confidence"`
	N              int      `json:"n"`
}

// ByDecision summarises confidence per decision, ordered by decision.
func ByDecision(records []survey.LongRecord) []Summary {
	return groupBy(records, func(r survey.LongRecord) string { return string(r.Decision) })
}

// ByVignetteClass summarises confidence per vignette class, ordered by class.
func ByVignetteClass(records []survey.LongRecord) []Summary {
	return groupBy(records, func(r survey.LongRecord) string { return r.VignetteClass })
}

// Overall summarises every rated record.
func Overall(records []survey.LongRecord) Summary {
	return Summarize(OverallGroup, ratings(records))
}

// Summarize computes a Summary over xs.
func Summarize(group string, xs []float64) Summary {
	s := Summary{Group: group, N: len(xs)}
	if len(xs) == 0 {
		return s
	}
	mean, std := stat.MeanStdDev(xs, nil)
	s.MeanConfidence = &mean
	if len(xs) >= 2 {
		s.StdConfidence = &std
	}
	return s
}

// groupBy buckets records by key. Unrated records still create their group,
// so a group with no ratings is reported with N == 0.
func groupBy(records []survey.LongRecord, key func(survey.LongRecord) string) []Summary {
	groups := make(map[string][]float64)
	for _, r := range records {
		k := key(r)
		xs := groups[k]
		if r.Confidence != nil {
			xs = append(xs, *r.Confidence)
		}
		groups[k] = xs
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Summary, 0, len(keys))
	for _, k := range keys {
		out = append(out, Summarize(k, groups[k]))
	}
	return out
}

func ratings(records []survey.LongRecord) []float64 {
	var xs []float64
	for _, r := range records {
		if r.Confidence != nil {
			xs = append(xs, *r.Confidence)
		}
	}
	return xs
}
