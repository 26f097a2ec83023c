package survey

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/banshee-data/medevac-irr/internal/monitoring"
	"github.com/banshee-data/medevac-irr/internal/vignette"
)

// DefaultIDColumn is the record identifier column of the survey export.
const DefaultIDColumn = "Record ID"

// LongRecord is one physician's judgement of one vignette.
type LongRecord struct {
	PhysicianID   string   `json:"physician_id"`
	QuestionID    int      `json:"question"`
	Decision      Decision `json:"decision"`
	Confidence    *float64 `json:"confidence"`
	QuestionType  string   `json:"question_type"`
	VignetteClass string   `json:"vignette_class"`
}

// Reshaper converts wide physician rows into LongRecords.
type Reshaper struct {
	Vignettes *vignette.Table
	// IDColumn names the record identifier column. Empty means DefaultIDColumn.
	IDColumn string
}

// Reshape emits records in input row order, then ascending question id.
// Pairs with a missing or blank decision are skipped; unreadable confidence
// values become nil.
func (r Reshaper) Reshape(t *Table, cols ColumnMap) []LongRecord {
	if t == nil {
		return nil
	}
	idName := r.IDColumn
	if idName == "" {
		idName = DefaultIDColumn
	}
	idCol := t.ColumnIndex(idName)
	ids := physicianIDs(t, idCol)

	var out []LongRecord
	for row := 0; row < t.NumRows(); row++ {
		physician := ids[row]
		for q := 1; q <= vignette.MaxQuestionID; q++ {
			col, ok := cols.Decision[q]
			if !ok {
				continue
			}
			decision, ok := NormalizeDecision(t.Cell(row, col))
			if !ok {
				continue
			}

			var conf *float64
			if cc, ok := cols.ConfidenceColumn(q); ok {
				conf = ParseConfidence(t.Cell(row, cc))
			}

			v := r.Vignettes.Resolve(q)
			out = append(out, LongRecord{
				PhysicianID:   physician,
				QuestionID:    q,
				Decision:      decision,
				Confidence:    conf,
				QuestionType:  v.QuestionType,
				VignetteClass: v.VignetteClass,
			})
		}
	}
	return out
}

// Reshape runs a Reshaper over vignettes with the default id column.
func Reshape(t *Table, cols ColumnMap, vignettes *vignette.Table) []LongRecord {
	return Reshaper{Vignettes: vignettes}.Reshape(t, cols)
}

// physicianIDs returns one identifier per row: the trimmed id cell, or the
// 0-based row index when the cell is missing or the column is absent. A row
// index that equals a declared id is renamed so two physicians never share
// an identifier.
func physicianIDs(t *Table, idCol int) []string {
	declared := make(map[string]bool)
	ids := make([]string, t.NumRows())
	for row := range ids {
		if idCol < 0 {
			continue
		}
		if c := t.Cell(row, idCol); !c.Blank() {
			ids[row] = strings.TrimSpace(c.Value)
			declared[ids[row]] = true
		}
	}
	for row := range ids {
		if ids[row] != "" {
			continue
		}
		id := strconv.Itoa(row)
		if declared[id] {
			renamed := "row:" + id
			for n := 2; declared[renamed]; n++ {
				renamed = fmt.Sprintf("row:%s#%d", id, n)
			}
			monitoring.Logf("row %d has no %s and its row index collides with a declared id; using %q", row, DefaultIDColumn, renamed)
			id = renamed
		}
		declared[id] = true
		ids[row] = id
	}
	return ids
}

// ParseConfidence reads a confidence rating. Missing, unparsable and
// non-finite values are nil.
func ParseConfidence(c Cell) *float64 {
	if c.Blank() {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(c.Value), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
