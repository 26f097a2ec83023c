package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/medevac-irr/internal/agreement"
	"github.com/banshee-data/medevac-irr/internal/analysis"
	"github.com/banshee-data/medevac-irr/internal/confidence"
	"github.com/banshee-data/medevac-irr/internal/survey"
	"github.com/banshee-data/medevac-irr/internal/version"
)

// ErrRunNotFound is returned when no run has the requested id.
var ErrRunNotFound = errors.New("run not found")

// createdAtLayout is fixed width so created_at sorts correctly as text.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Confidence groupings stored in confidence_summaries.dimension.
const (
	GroupOverall       = "overall"
	GroupDecision      = "decision"
	GroupVignetteClass = "vignette_class"
)

// Run is the archived header of one analysis run.
type Run struct {
	RunID                      string           `json:"run_id"`
	CreatedAt                  time.Time        `json:"created_at"`
	Source                     string           `json:"source"`
	RawRows                    int              `json:"raw_rows"`
	OverallPercentageAgreement *float64         `json:"overall_percentage_agreement"`
	Summary                    analysis.Summary `json:"summary"`
	AppVersion                 string           `json:"app_version"`
}

// SaveResult archives res in a single transaction.
func (db *DB) SaveResult(ctx context.Context, res *analysis.Result) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	s := res.Summary
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO analysis_runs (
			run_id, created_at, source, raw_rows, n_physicians, n_questions,
			n_records, overall_percentage_agreement, mean_percentage_agreement,
			mean_fleiss_kappa, app_version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID, res.CreatedAt.UTC().Format(createdAtLayout), res.Source, res.RawRows,
		s.Physicians, s.Questions, s.Records, nullable(res.OverallPercentageAgreement),
		nullable(s.MeanPercentageAgreement), nullable(s.MeanFleissKappa), version.Version,
	); err != nil {
		return fmt.Errorf("failed to insert run %s: %w", res.RunID, err)
	}

	if err := insertEach(ctx, tx, `
		INSERT INTO long_records (
			run_id, seq, physician_id, question, decision, confidence,
			question_type, vignette_class
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, len(res.Records), func(i int) []any {
		r := res.Records[i]
		return []any{res.RunID, i, r.PhysicianID, r.QuestionID, string(r.Decision),
			nullable(r.Confidence), r.QuestionType, r.VignetteClass}
	}); err != nil {
		return fmt.Errorf("failed to insert long records: %w", err)
	}

	if err := insertEach(ctx, tx, `
		INSERT INTO question_metrics (
			run_id, question, question_type, vignette_class, n_physicians,
			percentage_agreement, fleiss_kappa, decision_medevac,
			decision_commercial, decision_remain, decision_other
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, len(res.Questions), func(i int) []any {
		q := res.Questions[i]
		return []any{res.RunID, q.QuestionID, q.QuestionType, q.VignetteClass, q.NPhysicians,
			nullable(q.PercentageAgreement), nullable(q.FleissKappa), q.DecisionMedevac,
			q.DecisionCommercial, q.DecisionRemain, q.DecisionOther}
	}); err != nil {
		return fmt.Errorf("failed to insert question metrics: %w", err)
	}

	if err := insertEach(ctx, tx, `
		INSERT INTO class_metrics (
			run_id, vignette_class, n_questions, mean_percentage_agreement,
			mean_fleiss_kappa
		) VALUES (?, ?, ?, ?, ?)`, len(res.Classes), func(i int) []any {
		c := res.Classes[i]
		return []any{res.RunID, c.VignetteClass, c.NQuestions,
			nullable(c.MeanPercentageAgreement), nullable(c.MeanFleissKappa)}
	}); err != nil {
		return fmt.Errorf("failed to insert class metrics: %w", err)
	}

	type grouped struct {
		grouping string
		summary  confidence.Summary
	}
	var conf []grouped
	conf = append(conf, grouped{GroupOverall, s.Confidence})
	for _, c := range res.ConfidenceByDecision {
		conf = append(conf, grouped{GroupDecision, c})
	}
	for _, c := range res.ConfidenceByClass {
		conf = append(conf, grouped{GroupVignetteClass, c})
	}
	if err := insertEach(ctx, tx, `
		INSERT INTO confidence_summaries (
			run_id, dimension, group_name, mean_confidence, std_confidence, n
		) VALUES (?, ?, ?, ?, ?, ?)`, len(conf), func(i int) []any {
		c := conf[i]
		return []any{res.RunID, c.grouping, c.summary.Group,
			nullable(c.summary.MeanConfidence), nullable(c.summary.StdConfidence), c.summary.N}
	}); err != nil {
		return fmt.Errorf("failed to insert confidence summaries: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", res.RunID, err)
	}
	return nil
}

func insertEach(ctx context.Context, tx *sql.Tx, query string, n int, args func(i int) []any) error {
	if n == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return err
		}
	}
	return nil
}

const runColumns = `
	run_id, created_at, source, raw_rows, n_physicians, n_questions, n_records,
	overall_percentage_agreement, mean_percentage_agreement, mean_fleiss_kappa,
	app_version`

// ListRuns returns archived runs, newest first.
func (db *DB) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+runColumns+`
		FROM analysis_runs ORDER BY created_at DESC, run_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// GetRun returns one run with its confidence summary and decision
// distribution filled in.
func (db *DB) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := db.QueryRowContext(ctx, `SELECT `+runColumns+`
		FROM analysis_runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}

	overall, err := db.ConfidenceSummaries(ctx, runID, GroupOverall)
	if err != nil {
		return nil, err
	}
	if len(overall) == 1 {
		r.Summary.Confidence = overall[0]
	}
	if r.Summary.Decisions, err = db.decisionDistribution(ctx, runID, r.Summary.Records); err != nil {
		return nil, err
	}
	return r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		r         Run
		createdAt string
		overall   sql.NullFloat64
		meanPA    sql.NullFloat64
		meanKappa sql.NullFloat64
	)
	if err := s.Scan(&r.RunID, &createdAt, &r.Source, &r.RawRows,
		&r.Summary.Physicians, &r.Summary.Questions, &r.Summary.Records,
		&overall, &meanPA, &meanKappa, &r.AppVersion); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("run %s: invalid created_at %q: %w", r.RunID, createdAt, err)
	}
	r.CreatedAt = t
	r.OverallPercentageAgreement = floatPtr(overall)
	r.Summary.MeanPercentageAgreement = floatPtr(meanPA)
	r.Summary.MeanFleissKappa = floatPtr(meanKappa)
	return &r, nil
}

func (db *DB) decisionDistribution(ctx context.Context, runID string, total int) ([]analysis.DecisionShare, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT decision, COUNT(*) AS n FROM long_records
		WHERE run_id = ? GROUP BY decision ORDER BY n DESC, decision`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query decision distribution: %w", err)
	}
	defer rows.Close()

	var out []analysis.DecisionShare
	for rows.Next() {
		var d analysis.DecisionShare
		if err := rows.Scan(&d.Decision, &d.Count); err != nil {
			return nil, fmt.Errorf("failed to scan decision count: %w", err)
		}
		if total > 0 {
			d.Share = float64(d.Count) / float64(total)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// QuestionMetrics returns the per-question table of a run, by question id.
func (db *DB) QuestionMetrics(ctx context.Context, runID string) ([]agreement.QuestionMetrics, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT question, question_type, vignette_class, n_physicians,
			percentage_agreement, fleiss_kappa, decision_medevac,
			decision_commercial, decision_remain, decision_other
		FROM question_metrics WHERE run_id = ? ORDER BY question`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query question metrics: %w", err)
	}
	defer rows.Close()

	var out []agreement.QuestionMetrics
	for rows.Next() {
		var (
			m         agreement.QuestionMetrics
			pa, kappa sql.NullFloat64
		)
		if err := rows.Scan(&m.QuestionID, &m.QuestionType, &m.VignetteClass, &m.NPhysicians,
			&pa, &kappa, &m.DecisionMedevac, &m.DecisionCommercial, &m.DecisionRemain,
			&m.DecisionOther); err != nil {
			return nil, fmt.Errorf("failed to scan question metrics: %w", err)
		}
		m.PercentageAgreement = floatPtr(pa)
		m.FleissKappa = floatPtr(kappa)
		out = append(out, m)
	}
	return out, rows.Err()
}

// ClassMetrics returns the per-class table of a run, by class.
func (db *DB) ClassMetrics(ctx context.Context, runID string) ([]agreement.ClassMetrics, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT vignette_class, n_questions, mean_percentage_agreement, mean_fleiss_kappa
		FROM class_metrics WHERE run_id = ? ORDER BY vignette_class`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query class metrics: %w", err)
	}
	defer rows.Close()

	var out []agreement.ClassMetrics
	for rows.Next() {
		var (
			m         agreement.ClassMetrics
			pa, kappa sql.NullFloat64
		)
		if err := rows.Scan(&m.VignetteClass, &m.NQuestions, &pa, &kappa); err != nil {
			return nil, fmt.Errorf("failed to scan class metrics: %w", err)
		}
		m.MeanPercentageAgreement = floatPtr(pa)
		m.MeanFleissKappa = floatPtr(kappa)
		out = append(out, m)
	}
	return out, rows.Err()
}

// ConfidenceSummaries returns the summaries of one grouping, by group name.
func (db *DB) ConfidenceSummaries(ctx context.Context, runID, grouping string) ([]confidence.Summary, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT group_name, mean_confidence, std_confidence, n
		FROM confidence_summaries WHERE run_id = ? AND dimension = ?
		ORDER BY group_name`, runID, grouping)
	if err != nil {
		return nil, fmt.Errorf("failed to query confidence summaries: %w", err)
	}
	defer rows.Close()

	var out []confidence.Summary
	for rows.Next() {
		var (
			s         confidence.Summary
			mean, std sql.NullFloat64
		)
		if err := rows.Scan(&s.Group, &mean, &std, &s.N); err != nil {
			return nil, fmt.Errorf("failed to scan confidence summary: %w", err)
		}
		s.MeanConfidence = floatPtr(mean)
		s.StdConfidence = floatPtr(std)
		out = append(out, s)
	}
	return out, rows.Err()
}

// LongRecords returns a run's records in their original order.
func (db *DB) LongRecords(ctx context.Context, runID string) ([]survey.LongRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT physician_id, question, decision, confidence, question_type, vignette_class
		FROM long_records WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query long records: %w", err)
	}
	defer rows.Close()

	var out []survey.LongRecord
	for rows.Next() {
		var (
			r    survey.LongRecord
			conf sql.NullFloat64
		)
		if err := rows.Scan(&r.PhysicianID, &r.QuestionID, &r.Decision, &conf,
			&r.QuestionType, &r.VignetteClass); err != nil {
			return nil, fmt.Errorf("failed to scan long record: %w", err)
		}
		r.Confidence = floatPtr(conf)
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadResult reassembles an archived run. The column map is not archived
// and is left empty.
func (db *DB) LoadResult(ctx context.Context, runID string) (*analysis.Result, error) {
	run, err := db.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	res := &analysis.Result{
		RunID:                      run.RunID,
		CreatedAt:                  run.CreatedAt,
		Source:                     run.Source,
		RawRows:                    run.RawRows,
		OverallPercentageAgreement: run.OverallPercentageAgreement,
		Summary:                    run.Summary,
	}
	if res.Records, err = db.LongRecords(ctx, runID); err != nil {
		return nil, err
	}
	if res.Questions, err = db.QuestionMetrics(ctx, runID); err != nil {
		return nil, err
	}
	if res.Classes, err = db.ClassMetrics(ctx, runID); err != nil {
		return nil, err
	}
	if res.ConfidenceByDecision, err = db.ConfidenceSummaries(ctx, runID, GroupDecision); err != nil {
		return nil, err
	}
	if res.ConfidenceByClass, err = db.ConfidenceSummaries(ctx, runID, GroupVignetteClass); err != nil {
		return nil, err
	}
	return res, nil
}

// DeleteRun removes a run and, through ON DELETE CASCADE, its tables.
func (db *DB) DeleteRun(ctx context.Context, runID string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM analysis_runs WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run %s: %w", runID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete run %s: %w", runID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

func nullable(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
