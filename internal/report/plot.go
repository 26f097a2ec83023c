package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/medevac-irr/internal/agreement"
)

// ErrNothingToPlot is returned when no question has a defined kappa.
var ErrNothingToPlot = errors.New("no defined Fleiss' kappa to plot")

const (
	plotWidth  = 10 * vg.Inch
	plotHeight = 4 * vg.Inch
)

// KappaPlot builds a bar chart of Fleiss' kappa per question. Questions
// with an undefined kappa are left out rather than drawn as zero.
func KappaPlot(metrics []agreement.QuestionMetrics) (*plot.Plot, error) {
	var (
		values plotter.Values
		labels []string
	)
	for _, m := range metrics {
		if m.FleissKappa == nil {
			continue
		}
		values = append(values, *m.FleissKappa)
		labels = append(labels, "Q"+strconv.Itoa(m.QuestionID))
	}
	if len(values) == 0 {
		return nil, ErrNothingToPlot
	}

	p := plot.New()
	p.Title.Text = "Fleiss' kappa by question"
	p.Y.Label.Text = "kappa"
	p.Y.Max = 1

	bars, err := plotter.NewBarChart(values, vg.Points(14))
	if err != nil {
		return nil, fmt.Errorf("failed to create bar chart: %w", err)
	}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars, plotter.NewGrid())
	p.NominalX(labels...)
	return p, nil
}

// WriteKappaPNG renders KappaPlot as PNG to w.
func WriteKappaPNG(w io.Writer, metrics []agreement.QuestionMetrics) error {
	p, err := KappaPlot(metrics)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(plotWidth, plotHeight, "png")
	if err != nil {
		return fmt.Errorf("failed to create png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	return nil
}
