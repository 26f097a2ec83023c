package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/medevac-irr/internal/analysis"
	"github.com/banshee-data/medevac-irr/internal/config"
	"github.com/banshee-data/medevac-irr/internal/db"
	"github.com/banshee-data/medevac-irr/internal/monitoring"
	"github.com/banshee-data/medevac-irr/internal/report"
	"github.com/banshee-data/medevac-irr/internal/security"
	"github.com/banshee-data/medevac-irr/internal/survey"
)

func newAnalyzeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute agreement and confidence metrics and write the report",
		Long: `Loads the survey export, computes per-question and per-class agreement,
summarises confidence, prints the report and writes the CSV products to the
output directory. With --db the run is also archived.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			return runAnalyze(cmd, opts, cfg)
		},
	}
	cmd.Flags().BoolVar(&opts.charts, "charts", true, "Write the HTML chart page")
	cmd.Flags().BoolVar(&opts.plot, "plot", false, "Write the question kappa PNG")
	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *options, cfg *config.RunConfig) error {
	pipeline, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	input := cfg.GetInputFile()
	table, err := survey.LoadFile(input)
	if err != nil {
		return err
	}
	res, err := pipeline.Run(table, input)
	if err != nil {
		return err
	}

	console := newConsole(cmd, opts)
	console.PrintResult(res)

	w := newWriter(cfg)
	paths, err := w.WriteTables(res)
	if err != nil {
		return err
	}
	if cfg.GetCharts() {
		p, err := w.WriteCharts(res)
		if err != nil {
			return err
		}
		paths = append(paths, p)
	}
	if cfg.GetPlot() {
		p, err := w.WritePlot(res)
		if err != nil {
			return err
		}
		if p != "" {
			paths = append(paths, p)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Results saved:")
	for _, p := range paths {
		fmt.Fprintf(out, "  %s\n", p)
	}

	if path := cfg.GetDBPath(); path != "" {
		archive, err := db.NewDB(path)
		if err != nil {
			return err
		}
		defer archive.Close()
		if err := archive.SaveResult(cmd.Context(), res); err != nil {
			return err
		}
		fmt.Fprintf(out, "Archived run %s in %s\n", res.RunID, path)
	}
	monitoring.Logf("analysis %s complete: %d records, %d questions", res.RunID, len(res.Records), res.Summary.Questions)
	return nil
}

func newProcessCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Reshape the export to long format without computing metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			pipeline, err := newPipeline(cfg)
			if err != nil {
				return err
			}
			table, err := survey.LoadFile(cfg.GetInputFile())
			if err != nil {
				return err
			}
			records, err := pipeline.Reshape(table)
			if err != nil {
				return err
			}
			path, err := newWriter(cfg).WriteProcessed(records)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Processed %d physicians into %d records: %s\n", table.NumRows(), len(records), path)
			return nil
		},
	}
}

func newExploreCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "explore",
		Short: "Describe the columns of the raw export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			table, err := survey.LoadFile(cfg.GetInputFile())
			if err != nil {
				return err
			}
			newConsole(cmd, opts).PrintProfile(survey.ProfileTable(table))
			return nil
		},
	}
}

func newPipeline(cfg *config.RunConfig) (analysis.Pipeline, error) {
	vignettes, err := cfg.VignetteTable()
	if err != nil {
		return analysis.Pipeline{}, err
	}
	return analysis.Pipeline{Vignettes: vignettes, IDColumn: cfg.GetIDColumn()}, nil
}

func newWriter(cfg *config.RunConfig) *report.Writer {
	w := report.NewWriter(cfg.GetOutputDir())
	w.Resolve = security.OutputPath
	return w
}

func newConsole(cmd *cobra.Command, opts *options) *report.Console {
	c := report.NewConsole(cmd.OutOrStdout())
	if opts.plain {
		c.Styles = report.PlainStyles()
	}
	return c
}
