package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nextstep/gift/internal/database"
)

func newMigrateCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run schema migrations",
	}

	withMigrator := func(fn func(cmd *cobra.Command, mg *database.Migrator, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			mg, err := database.NewMigrator(e.db.DB, e.db.Dialect(), e.logger)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := mg.Close(); cerr != nil {
					e.logger.Warn("close migrator", "err", cerr)
				}
			}()
			return fn(cmd, mg, args)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, mg *database.Migrator, _ []string) error {
				if err := mg.Up(cmd.Context()); err != nil {
					return err
				}
				return printVersion(cmd, mg)
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, mg *database.Migrator, _ []string) error {
				if err := mg.Down(cmd.Context()); err != nil {
					return err
				}
				return printVersion(cmd, mg)
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, mg *database.Migrator, _ []string) error {
				return printVersion(cmd, mg)
			}),
		},
		&cobra.Command{
			Use:   "force VERSION",
			Short: "Record VERSION as applied and clear the dirty flag",
			Args:  cobra.ExactArgs(1),
			RunE: withMigrator(func(cmd *cobra.Command, mg *database.Migrator, args []string) error {
				version, err := parseVersion(args[0])
				if err != nil {
					return err
				}
				if err := mg.Force(version); err != nil {
					return err
				}
				return printVersion(cmd, mg)
			}),
		},
	)
	return cmd
}

// parseVersion accepts a migration version or -1, which clears the recorded
// version.
func parseVersion(arg string) (int, error) {
	version, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", arg, err)
	}
	if version < -1 {
		return 0, fmt.Errorf("invalid version %d: must be -1 or a migration number", version)
	}
	return version, nil
}

func printVersion(cmd *cobra.Command, mg *database.Migrator) error {
	version, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if dirty {
		fmt.Fprintf(out, "schema version %d (dirty)\n", version)
		return nil
	}
	fmt.Fprintf(out, "schema version %d\n", version)
	return nil
}
