package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/banshee-data/medevac-irr/internal/db"
)

func newMigrateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the run archive schema",
		Long: `Applies or rolls back the embedded schema migrations on the archive
given by --db. Normal commands migrate automatically; these actions exist for
inspection and recovery.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSchema(cmd, opts, func(d *db.DB) error {
					if err := d.MigrateUp(); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "All migrations applied")
					return printSchemaVersion(cmd, d)
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back one migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSchema(cmd, opts, func(d *db.DB) error {
					if err := d.MigrateDown(); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Rolled back one migration")
					return printSchemaVersion(cmd, d)
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSchema(cmd, opts, func(d *db.DB) error {
					return printSchemaVersion(cmd, d)
				})
			},
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Set the schema version without running migrations (recovery only)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version number %q: %w", args[0], err)
				}
				return withSchema(cmd, opts, func(d *db.DB) error {
					if err := d.MigrateForce(v); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Schema version forced to %d\n", v)
					return nil
				})
			},
		},
	)
	return cmd
}

// withSchema opens the archive without migrating it.
func withSchema(cmd *cobra.Command, opts *options, fn func(*db.DB) error) error {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}
	path := cfg.GetDBPath()
	if path == "" {
		return errNoArchive
	}
	d, err := db.Open(path)
	if err != nil {
		return err
	}
	defer d.Close()
	return fn(d)
}

func printSchemaVersion(cmd *cobra.Command, d *db.DB) error {
	v, dirty, err := d.MigrateVersion()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Current version: %d (dirty: %v)\n", v, dirty)
	return nil
}
