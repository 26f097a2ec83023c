// Package analysis runs the interrater pipeline end to end: column
// resolution, reshaping, agreement metrics and confidence summaries.
package analysis

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/medevac-irr/internal/agreement"
	"github.com/banshee-data/medevac-irr/internal/confidence"
	"github.com/banshee-data/medevac-irr/internal/monitoring"
	"github.com/banshee-data/medevac-irr/internal/survey"
	"github.com/banshee-data/medevac-irr/internal/timeutil"
	"github.com/banshee-data/medevac-irr/internal/vignette"
)

// Pipeline holds the collaborators of a run. The zero value is usable:
// nil fields fall back to the positional resolver, the compiled-in vignette
// table, the "Record ID" column, the real clock and random UUIDs.
type Pipeline struct {
	Resolver  survey.ColumnResolver
	Vignettes *vignette.Table
	IDColumn  string
	Clock     timeutil.Clock
	NewRunID  func() string
}

// Result is everything one run produces. It is immutable once returned.
type Result struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
	Source    string    `json:"source"`
	RawRows   int       `json:"raw_rows"`

	Columns survey.ColumnMap    `json:"-"`
	Records []survey.LongRecord `json:"-"`

	OverallPercentageAgreement *float64 `json:"overall_percentage_agreement"`

	Questions            []agreement.QuestionMetrics `json:"-"`
	Classes              []agreement.ClassMetrics    `json:"-"`
	ConfidenceByDecision []confidence.Summary        `json:"-"`
	ConfidenceByClass    []confidence.Summary        `json:"-"`

	Summary Summary `json:"summary"`
}

// Run analyses table. source labels the run, typically the input path.
// Only an absent or empty table is an error; every data-quality problem
// inside the table degrades to excluded records or undefined metrics.
func (p Pipeline) Run(table *survey.Table, source string) (*Result, error) {
	if table == nil {
		return nil, survey.ErrNoTable
	}
	if table.NumRows() == 0 {
		return nil, fmt.Errorf("%s: %w", source, survey.ErrNoRows)
	}

	p = p.withDefaults()

	cols := p.Resolver.Resolve(table)
	if len(cols.Decision) == 0 {
		monitoring.Logf("no decision columns found in %s", source)
	}
	monitoring.Debugf("resolved %d decision and %d confidence columns", len(cols.Decision), len(cols.Confidence))

	records := survey.Reshaper{Vignettes: p.Vignettes, IDColumn: p.IDColumn}.Reshape(table, cols)
	monitoring.Debugf("reshaped %d rows into %d records", table.NumRows(), len(records))

	pa, ok := agreement.PercentageAgreement(records)
	var overall *float64
	if ok {
		overall = &pa
	}

	res := &Result{
		RunID:                      p.NewRunID(),
		CreatedAt:                  p.Clock.Now(),
		Source:                     source,
		RawRows:                    table.NumRows(),
		Columns:                    cols,
		Records:                    records,
		OverallPercentageAgreement: overall,
		Questions:                  agreement.QuestionLevelMetrics(records),
		Classes:                    agreement.AgreementByClass(records),
		ConfidenceByDecision:       confidence.ByDecision(records),
		ConfidenceByClass:          confidence.ByVignetteClass(records),
	}
	res.Summary = Summarize(res)
	return res, nil
}

// Reshape runs only the loading half of the pipeline, for `irr process`.
func (p Pipeline) Reshape(table *survey.Table) ([]survey.LongRecord, error) {
	if table == nil {
		return nil, survey.ErrNoTable
	}
	if table.NumRows() == 0 {
		return nil, survey.ErrNoRows
	}
	p = p.withDefaults()
	return survey.Reshaper{Vignettes: p.Vignettes, IDColumn: p.IDColumn}.Reshape(table, p.Resolver.Resolve(table)), nil
}

func (p Pipeline) withDefaults() Pipeline {
	if p.Resolver == nil {
		p.Resolver = survey.PositionalResolver{}
	}
	if p.Vignettes == nil {
		p.Vignettes = vignette.Default()
	}
	if p.Clock == nil {
		p.Clock = timeutil.RealClock{}
	}
	if p.NewRunID == nil {
		p.NewRunID = func() string { return uuid.New().String() }
	}
	return p
}
