package survey

import "strings"

// Decision is a disposition choice. Besides the three named categories it
// may hold an unmapped free-text answer, kept verbatim for audit.
type Decision string

const (
	Medevac    Decision = "Medevac"
	Commercial Decision = "Commercial"
	Remain     Decision = "Remain"
)

// KnownDecisions lists the named categories in reporting order.
var KnownDecisions = []Decision{Medevac, Commercial, Remain}

// Known reports whether d is one of the named categories.
func (d Decision) Known() bool {
	switch d {
	case Medevac, Commercial, Remain:
		return true
	}
	return false
}

// decisionPhrases is checked in order; the first phrase contained in the
// lower-cased answer wins.
var decisionPhrases = []struct {
	phrase   string
	decision Decision
}{
	{"activate medevac immediately", Medevac},
	{"activate medevac", Medevac},
	{"medevac immediately", Medevac},
	{"commercial flight next available", Commercial},
	{"commercial flight", Commercial},
	{"next commercial flight", Commercial},
	{"remain in village (for ongoing observation or treatment, if necessary)", Remain},
	{"remain in village", Remain},
	{"remain", Remain},
}

// NormalizeDecision maps a raw answer to a named category. Unmatched answers
// are returned trimmed but otherwise unchanged. Missing or blank cells
// report false.
func NormalizeDecision(c Cell) (Decision, bool) {
	if c.Blank() {
		return "", false
	}
	value := strings.TrimSpace(c.Value)
	lower := strings.ToLower(value)
	for _, p := range decisionPhrases {
		if strings.Contains(lower, p.phrase) {
			return p.decision, true
		}
	}
	return Decision(value), true
}
