// Package testutil provides shared test fixtures.
//
// SurveyBuilder assembles wide survey exports in the same column layout as
// the real export so tests across packages exercise identical headers.
package testutil

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"

	"github.com/banshee-data/medevac-irr/internal/survey"
)

// ConfidenceHeader is the header used for every confidence column.
const ConfidenceHeader = "How confident are you of this decision? (1 = not at all, 10 = completely)"

// DecisionHeader returns the decision column header for question q.
func DecisionHeader(q int) string {
	return fmt.Sprintf("Question %d: What is your disposition decision for this patient?", q)
}

// Answer is one physician's raw response to a vignette. Empty strings are
// exported as blank cells.
type Answer struct {
	Decision   string
	Confidence string
}

// SurveyBuilder builds a wide survey export.
type SurveyBuilder struct {
	questions    []int
	noConfidence map[int]bool
	idColumn     bool
	rows         []map[int]Answer
	ids          []string
}

// NewSurveyBuilder starts an export with a "Record ID" column and a
// decision/confidence column pair for each question.
func NewSurveyBuilder(questions ...int) *SurveyBuilder {
	qs := append([]int(nil), questions...)
	sort.Ints(qs)
	return &SurveyBuilder{questions: qs, noConfidence: map[int]bool{}, idColumn: true}
}

// WithoutIDColumn drops the record identifier column.
func (b *SurveyBuilder) WithoutIDColumn() *SurveyBuilder {
	b.idColumn = false
	return b
}

// WithoutConfidence omits the confidence column that follows question q.
func (b *SurveyBuilder) WithoutConfidence(q int) *SurveyBuilder {
	b.noConfidence[q] = true
	return b
}

// AddPhysician appends one physician row.
func (b *SurveyBuilder) AddPhysician(id string, answers map[int]Answer) *SurveyBuilder {
	b.ids = append(b.ids, id)
	b.rows = append(b.rows, answers)
	return b
}

// Headers returns the export header row.
func (b *SurveyBuilder) Headers() []string {
	var h []string
	if b.idColumn {
		h = append(h, survey.DefaultIDColumn)
	}
	for _, q := range b.questions {
		h = append(h, DecisionHeader(q))
		if !b.noConfidence[q] {
			h = append(h, ConfidenceHeader)
		}
	}
	return h
}

// Records returns the data rows as raw strings.
func (b *SurveyBuilder) Records() [][]string {
	out := make([][]string, 0, len(b.rows))
	for i, answers := range b.rows {
		var rec []string
		if b.idColumn {
			rec = append(rec, b.ids[i])
		}
		for _, q := range b.questions {
			a := answers[q]
			rec = append(rec, a.Decision)
			if !b.noConfidence[q] {
				rec = append(rec, a.Confidence)
			}
		}
		out = append(out, rec)
	}
	return out
}

// Table builds the in-memory raw table.
func (b *SurveyBuilder) Table() *survey.Table {
	return survey.NewTable(b.Headers(), b.Records())
}

// CSV renders the export as CSV text.
func (b *SurveyBuilder) CSV() string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(b.Headers())
	_ = w.WriteAll(b.Records())
	return buf.String()
}

// ThreeRaterFixture is a small export with three physicians over
// questions 1, 5 and 16. Question 1 holds one agreeing pair out of three.
func ThreeRaterFixture() *SurveyBuilder {
	return NewSurveyBuilder(1, 5, 16).
		AddPhysician("101", map[int]Answer{
			1:  {"Activate Medevac Immediately", "9"},
			5:  {"Commercial flight next available", "7"},
			16: {"Remain in village (for ongoing observation or treatment, if necessary)", "5"},
		}).
		AddPhysician("102", map[int]Answer{
			1:  {"activate medevac", "8"},
			5:  {"Commercial flight", "N/A"},
			16: {"Activate Medevac Immediately", "6"},
		}).
		AddPhysician("103", map[int]Answer{
			1:  {"Remain in village", "4"},
			5:  {"", ""},
			16: {"Activate medevac", "3"},
		})
}
