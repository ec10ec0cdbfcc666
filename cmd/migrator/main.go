package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/UnknownOlympus/plutus/internal/config"
	"github.com/UnknownOlympus/plutus/internal/repository"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose"
	"github.com/spf13/cobra"
)

const defaultMigrationsDir = "migrations"

func newRootCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:          "migrator",
		Short:        "Manage the Plutus database schema",
		Long:         "Applies, rolls back and reports goose migrations against the configured PostgreSQL database.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&dir, "dir", "d", defaultMigrationsDir, "directory with migration files")

	cmd.AddCommand(newUpCmd(&dir))
	cmd.AddCommand(newDownCmd(&dir))
	cmd.AddCommand(newStatusCmd(&dir))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newUpCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), func(db *sql.DB) error {
				if err := goose.Up(db, *dir); err != nil {
					return fmt.Errorf("failed to apply migrations: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied successfully")
				return nil
			})
		},
	}
}

func newDownCmd(dir *string) *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), func(db *sql.DB) error {
				for range steps {
					if err := goose.Down(db, *dir); err != nil {
						return fmt.Errorf("failed to roll back migration: %w", err)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rolled back %d migration(s)\n", steps)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "number of migrations to roll back")
	return cmd
}

func newStatusCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the state of every migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), func(db *sql.DB) error {
				return goose.Status(db, *dir)
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), func(db *sql.DB) error {
				current, err := goose.GetDBVersion(db)
				if err != nil {
					return fmt.Errorf("failed to read schema version: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Schema version: %d\n", current)
				return nil
			})
		},
	}
}

// withDB opens the configured pool for the duration of run.
func withDB(ctx context.Context, run func(db *sql.DB) error) error {
	cfg := config.MustLoad()

	dbpool, err := repository.NewDatabase(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("failed to connect to DB: %w", err)
	}
	defer dbpool.Close()

	dtb := stdlib.OpenDBFromPool(dbpool)
	defer dtb.Close()

	if err = goose.SetDialect("postgres"); err != nil {
		return err
	}
	return run(dtb)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
