package survey

import (
	"sort"
	"strconv"
	"strings"
)

// DemographicColumns are the respondent background prompts of the export.
var DemographicColumns = []string{
	"Record ID",
	"What is your current degree?",
	"What year did you complete your clinical training?",
	"Where do you currently work?  (choice=Maniilaq)",
	"Where do you currently work?  (choice=ANMC)",
	"How many years have you been at Maniilaq (use 0 if less than one year)?",
	"Have you worked at another site within the ATHS?",
	"Have you been employed clinically (not just during training) in another rural setting?",
}

const sampleValues = 3

// ColumnProfile summarises one column of the raw table.
type ColumnProfile struct {
	Index   int      `json:"index"`
	Header  string   `json:"header"`
	Present bool     `json:"present"`
	Values  []string `json:"values,omitempty"`
}

// Profile describes the shape of a raw export before reshaping.
type Profile struct {
	Rows         int             `json:"rows"`
	Columns      int             `json:"columns"`
	Headers      []string        `json:"headers"`
	Demographics []ColumnProfile `json:"demographics"`
	Questions    []ColumnProfile `json:"questions"`
	Confidence   []ColumnProfile `json:"confidence"`
}

// ProfileTable inspects t without interpreting any answers.
func ProfileTable(t *Table) Profile {
	p := Profile{
		Rows:    t.NumRows(),
		Columns: t.NumColumns(),
	}
	if t == nil {
		return p
	}
	p.Headers = append([]string(nil), t.Headers...)

	for _, name := range DemographicColumns {
		col := t.ColumnIndex(name)
		cp := ColumnProfile{Index: col, Header: name, Present: col >= 0}
		if cp.Present {
			cp.Values = t.DistinctValues(col, sampleValues)
		}
		p.Demographics = append(p.Demographics, cp)
	}

	for col, h := range t.Headers {
		switch {
		case strings.Contains(h, "Question") && strings.Contains(h, ":"):
			p.Questions = append(p.Questions, ColumnProfile{
				Index: col, Header: h, Present: true, Values: t.DistinctValues(col, 0),
			})
		case strings.Contains(strings.ToLower(h), "confident"):
			vals := t.DistinctValues(col, 0)
			sortRatings(vals)
			p.Confidence = append(p.Confidence, ColumnProfile{
				Index: col, Header: h, Present: true, Values: vals,
			})
		}
	}
	return p
}

// sortRatings orders numeric ratings numerically, then any text.
func sortRatings(vals []string) {
	sort.SliceStable(vals, func(i, j int) bool {
		a, errA := strconv.ParseFloat(strings.TrimSpace(vals[i]), 64)
		b, errB := strconv.ParseFloat(strings.TrimSpace(vals[j]), 64)
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		}
		return vals[i] < vals[j]
	})
}
