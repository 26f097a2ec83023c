// Command irr measures how consistently physicians triage the medevac
// survey vignettes and archives the results.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/banshee-data/medevac-irr/internal/config"
	"github.com/banshee-data/medevac-irr/internal/monitoring"
	"github.com/banshee-data/medevac-irr/internal/version"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	configPath string
	dataDir    string
	inputFile  string
	outputDir  string
	dbPath     string
	idColumn   string
	listen     string
	charts     bool
	plot       bool
	plain      bool
	verbose    bool

	logger *zap.Logger
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "irr",
		Short: "Interrater reliability for medevac triage vignettes",
		Long: `irr loads the physician survey export, reshapes it to one record per
physician and vignette, and reports percentage agreement, Fleiss' Kappa and
decision confidence per question, per vignette class and overall.

Results are written as CSV under the output directory and can be archived in
a sqlite database that 'irr serve' exposes over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := monitoring.NewZapLogger(opts.verbose)
			if err != nil {
				return err
			}
			opts.logger = l
			monitoring.UseZap(l)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}
	root.SetOut(out)

	f := root.PersistentFlags()
	f.StringVarP(&opts.configPath, "config", "c", "", "Path to a .json or .yaml run config")
	f.StringVar(&opts.dataDir, "data-dir", config.DefaultDataDir, "Directory holding survey_results.csv")
	f.StringVarP(&opts.inputFile, "input", "i", "", "Survey export to read (overrides --data-dir)")
	f.StringVarP(&opts.outputDir, "output-dir", "o", config.DefaultOutputDir, "Directory for report files")
	f.StringVar(&opts.dbPath, "db", "", "Sqlite run archive (empty disables archiving)")
	f.StringVar(&opts.idColumn, "id-column", "", "Physician identifier column (default \"Record ID\")")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	f.BoolVar(&opts.plain, "plain", false, "Disable colours in console output")

	root.AddCommand(
		newAnalyzeCmd(opts),
		newProcessCmd(opts),
		newExploreCmd(opts),
		newRunsCmd(opts),
		newServeCmd(opts),
		newMigrateCmd(opts),
		newVersionCmd(),
	)
	return root
}

// loadConfig reads --config when given and applies the flags the user set
// explicitly on top of it.
func (o *options) loadConfig(cmd *cobra.Command) (*config.RunConfig, error) {
	cfg := &config.RunConfig{}
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.SetDataDir(o.dataDir)
	}
	if flags.Changed("input") {
		cfg.SetInputFile(o.inputFile)
	}
	if flags.Changed("output-dir") {
		cfg.SetOutputDir(o.outputDir)
	}
	if flags.Changed("db") {
		cfg.SetDBPath(o.dbPath)
	}
	if flags.Changed("id-column") {
		cfg.SetIDColumn(o.idColumn)
	}
	if flags.Lookup("charts") != nil && flags.Changed("charts") {
		cfg.SetCharts(o.charts)
	}
	if flags.Lookup("plot") != nil && flags.Changed("plot") {
		cfg.SetPlot(o.plot)
	}
	if flags.Lookup("listen") != nil && flags.Changed("listen") {
		cfg.SetListenAddr(o.listen)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Current())
		},
	}
}
