package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/database"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(func(mgr *database.Manager) error {
				if err := mgr.Migrate(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			return withDatabase(func(mgr *database.Manager) error {
				if err := mgr.Rollback(steps); err != nil {
					return unsupported(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
				return nil
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied migration version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(func(mgr *database.Manager) error {
				version, dirty, err := mgr.Version()
				if err != nil {
					return unsupported(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version: %d, dirty: %v\n", version, dirty)
				return nil
			})
		},
	})

	return cmd
}

func withDatabase(fn func(*database.Manager) error) error {
	_, mgr, err := openDatabase()
	if err != nil {
		return err
	}
	defer mgr.Close()
	return fn(mgr)
}

func unsupported(err error) error {
	if errors.Is(err, database.ErrMigrationsUnsupported) {
		return fmt.Errorf("%w: sqlite schemas are managed by \"migrate up\" only", err)
	}
	return err
}
