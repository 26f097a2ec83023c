package survey

import (
	"sort"
	"strconv"
	"strings"
)

const (
	// DecisionMarker precedes the vignette number in a decision header.
	DecisionMarker = "Question "
	// ConfidenceMarker identifies a confidence rating header.
	ConfidenceMarker = "How confident are you of this decision"
)

// ColumnMap maps question ids to column positions in a Table.
type ColumnMap struct {
	Decision   map[int]int
	Confidence map[int]int
}

// QuestionIDs returns the resolved question ids in ascending order.
func (m ColumnMap) QuestionIDs() []int {
	ids := make([]int, 0, len(m.Decision))
	for id := range m.Decision {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ConfidenceColumn returns the confidence column for id, if any.
func (m ColumnMap) ConfidenceColumn(id int) (int, bool) {
	col, ok := m.Confidence[id]
	return col, ok
}

// ColumnResolver discovers which columns hold each vignette's decision and
// confidence rating.
type ColumnResolver interface {
	Resolve(t *Table) ColumnMap
}

// PositionalResolver finds decision columns by header pattern and takes the
// confidence column to be the one immediately after each decision column.
type PositionalResolver struct{}

// Resolve implements ColumnResolver.
func (PositionalResolver) Resolve(t *Table) ColumnMap {
	m := ColumnMap{Decision: map[int]int{}, Confidence: map[int]int{}}
	if t == nil {
		return m
	}

	for col, h := range t.Headers {
		id, ok := ParseQuestionHeader(h)
		if !ok {
			continue
		}
		cur, seen := m.Decision[id]
		if !seen || t.NonMissingCount(col) > t.NonMissingCount(cur) {
			m.Decision[id] = col
		}
	}

	for id, col := range m.Decision {
		next := col + 1
		if next < len(t.Headers) && strings.Contains(t.Headers[next], ConfidenceMarker) {
			m.Confidence[id] = next
		}
	}
	return m
}

// ResolveColumns applies the PositionalResolver.
func ResolveColumns(t *Table) ColumnMap {
	return PositionalResolver{}.Resolve(t)
}

// ParseQuestionHeader extracts the vignette number from a header of the form
// "...Question <n>: ...". Headers without the pattern or with a
// non-integer number report false.
func ParseQuestionHeader(h string) (int, bool) {
	start := strings.Index(h, DecisionMarker)
	if start < 0 {
		return 0, false
	}
	rest := h[start+len(DecisionMarker):]
	end := strings.Index(rest, ":")
	if end < 0 {
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimSpace(rest[:end]))
	if err != nil {
		return 0, false
	}
	return id, true
}
