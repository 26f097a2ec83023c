// Package report renders analysis results: CSV tables, the console report,
// an HTML chart page and a PNG kappa plot.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/banshee-data/medevac-irr/internal/agreement"
	"github.com/banshee-data/medevac-irr/internal/confidence"
	"github.com/banshee-data/medevac-irr/internal/survey"
)

// formatFloat renders an optional metric. Undefined is an empty cell.
func formatFloat(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'g', -1, 64)
}

func writeCSV(w io.Writer, header []string, n int, row func(i int) []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i := 0; i < n; i++ {
		if err := cw.Write(row(i)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLongRecordsCSV writes the cleaned long-format records.
func WriteLongRecordsCSV(w io.Writer, records []survey.LongRecord) error {
	header := []string{"physician_id", "question", "decision", "confidence", "question_type", "vignette_class"}
	return writeCSV(w, header, len(records), func(i int) []string {
		r := records[i]
		return []string{
			r.PhysicianID,
			strconv.Itoa(r.QuestionID),
			string(r.Decision),
			formatFloat(r.Confidence),
			r.QuestionType,
			r.VignetteClass,
		}
	})
}

// WriteQuestionMetricsCSV writes one row per question.
func WriteQuestionMetricsCSV(w io.Writer, metrics []agreement.QuestionMetrics) error {
	header := []string{
		"question", "question_type", "vignette_class", "n_physicians",
		"percentage_agreement", "fleiss_kappa", "decision_medevac",
		"decision_commercial", "decision_remain", "decision_other",
	}
	return writeCSV(w, header, len(metrics), func(i int) []string {
		m := metrics[i]
		return []string{
			strconv.Itoa(m.QuestionID),
			m.QuestionType,
			m.VignetteClass,
			strconv.Itoa(m.NPhysicians),
			formatFloat(m.PercentageAgreement),
			formatFloat(m.FleissKappa),
			strconv.Itoa(m.DecisionMedevac),
			strconv.Itoa(m.DecisionCommercial),
			strconv.Itoa(m.DecisionRemain),
			strconv.Itoa(m.DecisionOther),
		}
	})
}

// WriteClassMetricsCSV writes one row per vignette class.
func WriteClassMetricsCSV(w io.Writer, metrics []agreement.ClassMetrics) error {
	header := []string{"vignette_class", "n_questions", "mean_percentage_agreement", "mean_fleiss_kappa"}
	return writeCSV(w, header, len(metrics), func(i int) []string {
		m := metrics[i]
		return []string{
			m.VignetteClass,
			strconv.Itoa(m.NQuestions),
			formatFloat(m.MeanPercentageAgreement),
			formatFloat(m.MeanFleissKappa),
		}
	})
}

// WriteConfidenceCSV writes confidence summaries. groupColumn names the
// first column, "decision" or "vignette_class".
func WriteConfidenceCSV(w io.Writer, groupColumn string, summaries []confidence.Summary) error {
	header := []string{groupColumn, "mean_confidence", "std_confidence", "n"}
	return writeCSV(w, header, len(summaries), func(i int) []string {
		s := summaries[i]
		return []string{s.Group, formatFloat(s.MeanConfidence), formatFloat(s.StdConfidence), strconv.Itoa(s.N)}
	})
}
