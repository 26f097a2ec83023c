// Package vignette holds the static classification of the survey's clinical
// vignettes. The table is compiled in and never derived from survey data.
package vignette

import (
	"fmt"
	"sort"
)

// MaxQuestionID is the highest vignette number presented in the survey.
const MaxQuestionID = 20

// Unknown labels a question id that has no classification entry.
const Unknown = "Unknown"

// Question types used by the analysis plan.
const (
	ClearMedevac       = "Clear Medevac"
	ClearNotMedevac    = "Clear Not Medevac"
	ClearCommercial    = "Clear Commercial"
	ClearRemain        = "Clear Remain"
	ClearNotRemain     = "Clear Not Remain"
	AnyOption          = "Any Option"
	PhysiologyConflict = "Conflict Between Physiology/Logistics"
)

// Vignette classes, A (clear-cut) through D (conflicting).
const (
	ClassA = "A"
	ClassB = "B"
	ClassC = "C"
	ClassD = "D"
)

// Vignette describes one clinical scenario.
type Vignette struct {
	QuestionID    int    `json:"question" yaml:"question"`
	QuestionType  string `json:"question_type" yaml:"question_type"`
	VignetteClass string `json:"vignette_class" yaml:"vignette_class"`
}

// Table is an immutable lookup of vignettes by question id.
type Table struct {
	byID map[int]Vignette
}

// NewTable builds a Table, rejecting duplicate and non-positive ids.
func NewTable(vs []Vignette) (*Table, error) {
	byID := make(map[int]Vignette, len(vs))
	for _, v := range vs {
		if v.QuestionID <= 0 {
			return nil, fmt.Errorf("invalid question id %d", v.QuestionID)
		}
		if _, dup := byID[v.QuestionID]; dup {
			return nil, fmt.Errorf("duplicate question id %d", v.QuestionID)
		}
		byID[v.QuestionID] = v
	}
	return &Table{byID: byID}, nil
}

// MustNewTable is NewTable for static tables; it panics on invalid input.
func MustNewTable(vs []Vignette) *Table {
	t, err := NewTable(vs)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the vignette for id and whether it exists.
func (t *Table) Lookup(id int) (Vignette, bool) {
	if t == nil {
		return Vignette{}, false
	}
	v, ok := t.byID[id]
	return v, ok
}

// Resolve returns the vignette for id, or an Unknown/Unknown entry.
func (t *Table) Resolve(id int) Vignette {
	if v, ok := t.Lookup(id); ok {
		return v
	}
	return Vignette{QuestionID: id, QuestionType: Unknown, VignetteClass: Unknown}
}

// All returns the entries ordered by question id.
func (t *Table) All() []Vignette {
	if t == nil {
		return nil
	}
	out := make([]Vignette, 0, len(t.byID))
	for _, v := range t.byID {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out
}

// Len reports the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byID)
}

var defaultTable = MustNewTable([]Vignette{
	{1, ClearMedevac, ClassA},
	{2, ClearNotMedevac, ClassA},
	{3, AnyOption, ClassC},
	{4, ClearMedevac, ClassA},
	{5, ClearNotMedevac, ClassB},
	{6, ClearNotMedevac, ClassB},
	{7, ClearNotRemain, ClassB},
	{8, ClearRemain, ClassA},
	{9, ClearCommercial, ClassA},
	{10, ClearNotRemain, ClassB},
	{11, ClearRemain, ClassA},
	{12, AnyOption, ClassC},
	{13, ClearMedevac, ClassA},
	{14, ClearNotMedevac, ClassB},
	{15, ClearCommercial, ClassA},
	{16, PhysiologyConflict, ClassD},
	{17, PhysiologyConflict, ClassD},
	{18, PhysiologyConflict, ClassD},
	{19, ClearMedevac, ClassA},
	{20, AnyOption, ClassC},
})

// Default returns the classification from the study's analysis plan.
// The returned table is shared and read-only.
func Default() *Table {
	return defaultTable
}
