package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/banshee-data/medevac-irr/internal/config"
	"github.com/banshee-data/medevac-irr/internal/db"
	"github.com/banshee-data/medevac-irr/internal/report"
	"github.com/banshee-data/medevac-irr/internal/security"
)

var errNoArchive = errors.New("no run archive configured: pass --db or set db_path")

func newRunsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect archived analysis runs",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List archived runs, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withArchive(cmd, opts, func(_ *config.RunConfig, archive *db.DB) error {
					runs, err := archive.ListRuns(cmd.Context())
					if err != nil {
						return err
					}
					printRuns(cmd, runs)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "show <run-id>",
			Short: "Print the report of an archived run",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withArchive(cmd, opts, func(_ *config.RunConfig, archive *db.DB) error {
					res, err := archive.LoadResult(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					newConsole(cmd, opts).PrintResult(res)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "export <run-id>",
			Short: "Write the CSV products of an archived run under the output directory",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withArchive(cmd, opts, func(cfg *config.RunConfig, archive *db.DB) error {
					res, err := archive.LoadResult(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					w := report.NewWriter(filepath.Join(cfg.GetOutputDir(), security.SanitizeFilename(res.RunID)))
					w.Resolve = security.OutputPath
					paths, err := w.WriteTables(res)
					if err != nil {
						return err
					}
					for _, p := range paths {
						fmt.Fprintln(cmd.OutOrStdout(), p)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "delete <run-id>",
			Short: "Remove an archived run",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withArchive(cmd, opts, func(_ *config.RunConfig, archive *db.DB) error {
					if err := archive.DeleteRun(cmd.Context(), args[0]); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
					return nil
				})
			},
		},
	)
	return cmd
}

// withArchive opens the configured archive, migrating it if needed, and
// closes it after fn returns.
func withArchive(cmd *cobra.Command, opts *options, fn func(*config.RunConfig, *db.DB) error) error {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}
	path := cfg.GetDBPath()
	if path == "" {
		return errNoArchive
	}
	archive, err := db.NewDB(path)
	if err != nil {
		return err
	}
	defer archive.Close()
	return fn(cfg, archive)
}

func printRuns(cmd *cobra.Command, runs []db.Run) {
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No archived runs")
		return
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.RunID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Source,
			strconv.Itoa(r.Summary.Physicians),
			strconv.Itoa(r.Summary.Questions),
			report.Percent(r.OverallPercentageAgreement),
			report.Metric(r.Summary.MeanFleissKappa, 3),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("run_id", "created_at", "source", "physicians", "questions", "pct_agree", "mean_kappa").
		Rows(rows...)
	fmt.Fprintln(out, t.String())
}
