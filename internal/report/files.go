package report

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/banshee-data/medevac-irr/internal/analysis"
	"github.com/banshee-data/medevac-irr/internal/fsutil"
	"github.com/banshee-data/medevac-irr/internal/monitoring"
	"github.com/banshee-data/medevac-irr/internal/survey"
)

// Output file names.
const (
	LongRecordsFile          = "cleaned_data_long.csv"
	QuestionMetricsFile      = "question_level_metrics.csv"
	ClassMetricsFile         = "class_level_metrics.csv"
	ConfidenceByDecisionFile = "confidence_by_decision.csv"
	ConfidenceByClassFile    = "confidence_by_class.csv"
	ProcessedFile            = "survey_data_processed.csv"
	ChartsFile               = "agreement_charts.html"
	KappaPlotFile            = "question_kappa.png"
)

// Writer writes report products into Dir.
type Writer struct {
	FS  fsutil.FileSystem
	Dir string

	// Resolve maps a product name to its path. Nil joins name onto Dir;
	// the CLI installs security.OutputPath.
	Resolve func(dir, name string) (string, error)

	// AssetsHost is passed to the chart page.
	AssetsHost string
}

// NewWriter returns a Writer on the real filesystem.
func NewWriter(dir string) *Writer {
	return &Writer{FS: fsutil.OSFileSystem{}, Dir: dir}
}

func (w *Writer) path(name string) (string, error) {
	if w.Resolve == nil {
		return filepath.Join(w.Dir, name), nil
	}
	return w.Resolve(w.Dir, name)
}

// write creates name and streams render into it. It returns the path.
func (w *Writer) write(name string, render func(io.Writer) error) (string, error) {
	if err := w.FS.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	p, err := w.path(name)
	if err != nil {
		return "", err
	}
	f, err := w.FS.Create(p)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", name, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", name, err)
	}
	return p, nil
}

// WriteTables writes the five CSV products of an analysis run and returns
// their paths in write order.
func (w *Writer) WriteTables(res *analysis.Result) ([]string, error) {
	products := []struct {
		name   string
		render func(io.Writer) error
	}{
		{LongRecordsFile, func(out io.Writer) error { return WriteLongRecordsCSV(out, res.Records) }},
		{QuestionMetricsFile, func(out io.Writer) error { return WriteQuestionMetricsCSV(out, res.Questions) }},
		{ClassMetricsFile, func(out io.Writer) error { return WriteClassMetricsCSV(out, res.Classes) }},
		{ConfidenceByDecisionFile, func(out io.Writer) error {
			return WriteConfidenceCSV(out, "decision", res.ConfidenceByDecision)
		}},
		{ConfidenceByClassFile, func(out io.Writer) error {
			return WriteConfidenceCSV(out, "vignette_class", res.ConfidenceByClass)
		}},
	}
	paths := make([]string, 0, len(products))
	for _, p := range products {
		path, err := w.write(p.name, p.render)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteProcessed writes the long records alone, as `irr process` does.
func (w *Writer) WriteProcessed(records []survey.LongRecord) (string, error) {
	return w.write(ProcessedFile, func(out io.Writer) error { return WriteLongRecordsCSV(out, records) })
}

// WriteCharts writes the HTML chart page.
func (w *Writer) WriteCharts(res *analysis.Result) (string, error) {
	return w.write(ChartsFile, func(out io.Writer) error { return RenderCharts(out, res, w.AssetsHost) })
}

// WritePlot writes the kappa PNG. When no kappa is defined it logs and
// returns an empty path without creating a file.
func (w *Writer) WritePlot(res *analysis.Result) (string, error) {
	if _, err := KappaPlot(res.Questions); errors.Is(err, ErrNothingToPlot) {
		monitoring.Logf("skipping %s: %v", KappaPlotFile, err)
		return "", nil
	}
	return w.write(KappaPlotFile, func(out io.Writer) error { return WriteKappaPNG(out, res.Questions) })
}
