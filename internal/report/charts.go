package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/medevac-irr/internal/analysis"
	"github.com/banshee-data/medevac-irr/internal/confidence"
)

// missingBar is the ECharts placeholder for a missing data point.
const missingBar = "-"

func barValue(p *float64) opts.BarData {
	if p == nil {
		return opts.BarData{Value: missingBar}
	}
	return opts.BarData{Value: *p}
}

// ChartsPage builds the agreement dashboard for res. assetsHost overrides
// where the ECharts scripts load from; empty keeps the go-echarts default.
func ChartsPage(res *analysis.Result, assetsHost string) *components.Page {
	subtitle := fmt.Sprintf("run %s · %s", res.RunID, res.CreatedAt.Format(time.RFC3339))
	init := opts.Initialization{Width: "100%", Height: "480px", AssetsHost: assetsHost}

	page := components.NewPage()
	if assetsHost != "" {
		page.SetAssetsHost(assetsHost)
	}
	page.PageTitle = "Interrater agreement"
	page.AddCharts(
		questionChart(res, init, subtitle),
		classChart(res, init, subtitle),
		confidenceChart("Confidence by decision", res.ConfidenceByDecision, init, subtitle),
		confidenceChart("Confidence by vignette class", res.ConfidenceByClass, init, subtitle),
	)
	return page
}

// RenderCharts writes the dashboard HTML to w.
func RenderCharts(w io.Writer, res *analysis.Result, assetsHost string) error {
	if err := ChartsPage(res, assetsHost).Render(w); err != nil {
		return fmt.Errorf("failed to render charts: %w", err)
	}
	return nil
}

func questionChart(res *analysis.Result, init opts.Initialization, subtitle string) *charts.Bar {
	x := make([]string, 0, len(res.Questions))
	pa := make([]opts.BarData, 0, len(res.Questions))
	kappa := make([]opts.BarData, 0, len(res.Questions))
	for _, q := range res.Questions {
		x = append(x, fmt.Sprintf("Q%d (%s)", q.QuestionID, q.VignetteClass))
		pa = append(pa, barValue(q.PercentageAgreement))
		kappa = append(kappa, barValue(q.FleissKappa))
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(init),
		charts.WithTitleOpts(opts.Title{Title: "Agreement by question", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "agreement", Max: 1}),
	)
	bar.SetXAxis(x).
		AddSeries("percentage agreement", pa).
		AddSeries("Fleiss' kappa", kappa)
	return bar
}

func classChart(res *analysis.Result, init opts.Initialization, subtitle string) *charts.Bar {
	x := make([]string, 0, len(res.Classes))
	pa := make([]opts.BarData, 0, len(res.Classes))
	kappa := make([]opts.BarData, 0, len(res.Classes))
	for _, c := range res.Classes {
		x = append(x, fmt.Sprintf("%s (%d)", c.VignetteClass, c.NQuestions))
		pa = append(pa, barValue(c.MeanPercentageAgreement))
		kappa = append(kappa, barValue(c.MeanFleissKappa))
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(init),
		charts.WithTitleOpts(opts.Title{Title: "Agreement by vignette class", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
	)
	bar.SetXAxis(x).
		AddSeries("mean percentage agreement", pa,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"})).
		AddSeries("mean Fleiss' kappa", kappa,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))
	return bar
}

func confidenceChart(title string, summaries []confidence.Summary, init opts.Initialization, subtitle string) *charts.Bar {
	x := make([]string, 0, len(summaries))
	means := make([]opts.BarData, 0, len(summaries))
	for _, s := range summaries {
		x = append(x, fmt.Sprintf("%s (n=%d)", s.Group, s.N))
		means = append(means, barValue(s.MeanConfidence))
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(init),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "confidence (1-10)", Min: 0, Max: 10}),
	)
	bar.SetXAxis(x).
		AddSeries("mean confidence", means,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))
	return bar
}
