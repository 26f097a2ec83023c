// Package agreement computes interrater agreement over reshaped survey
// records: pairwise percentage agreement and Fleiss' Kappa, per question and
// per vignette class.
package agreement

import (
	"sort"

	"github.com/banshee-data/medevac-irr/internal/survey"
)

// ballot holds one question's decisions, one per physician.
type ballot struct {
	question   int
	physicians []string // first-seen order
	decisions  map[string]survey.Decision
}

func (b *ballot) add(physician string, d survey.Decision) {
	if _, dup := b.decisions[physician]; dup {
		return
	}
	b.physicians = append(b.physicians, physician)
	b.decisions[physician] = d
}

// agreeingPairs counts unordered physician pairs and those that agree.
func (b *ballot) agreeingPairs() (agree, total int) {
	for i := 0; i < len(b.physicians); i++ {
		di := b.decisions[b.physicians[i]]
		for j := i + 1; j < len(b.physicians); j++ {
			total++
			if di == b.decisions[b.physicians[j]] {
				agree++
			}
		}
	}
	return agree, total
}

// tally counts decisions by value.
func (b *ballot) tally() map[survey.Decision]int {
	counts := make(map[survey.Decision]int)
	for _, p := range b.physicians {
		counts[b.decisions[p]]++
	}
	return counts
}

// ballots groups records by question, ordered by question id. The first
// record of a physician for a question wins.
func ballots(records []survey.LongRecord) []*ballot {
	byQ := make(map[int]*ballot)
	for _, r := range records {
		b, ok := byQ[r.QuestionID]
		if !ok {
			b = &ballot{question: r.QuestionID, decisions: make(map[string]survey.Decision)}
			byQ[r.QuestionID] = b
		}
		b.add(r.PhysicianID, r.Decision)
	}
	out := make([]*ballot, 0, len(byQ))
	for _, b := range byQ {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].question < out[j].question })
	return out
}

func filterQuestion(records []survey.LongRecord, question int) []survey.LongRecord {
	var out []survey.LongRecord
	for _, r := range records {
		if r.QuestionID == question {
			out = append(out, r)
		}
	}
	return out
}

func distinctPhysicians(records []survey.LongRecord) int {
	seen := make(map[string]struct{})
	for _, r := range records {
		seen[r.PhysicianID] = struct{}{}
	}
	return len(seen)
}
