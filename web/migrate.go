package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/projectboard/internal/infrastructure/database/sqlstore"
	"github.com/devilmonastery/projectboard/internal/pkg/logger"
	"github.com/devilmonastery/projectboard/migrations"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migrations",
	}

	// withConn opens the database without migrating it
	withConn := func(cmd *cobra.Command, fn func(conn *sqlstore.Connection) error) error {
		log := logger.WithCommand(slog.Default(), "migrate")
		conn, err := connect(cmd.Context(), opts.cfg, log)
		if err != nil {
			return err
		}
		defer conn.Close()
		return fn(conn)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConn(cmd, func(conn *sqlstore.Connection) error {
				if err := conn.RunMigrations(migrations.FS); err != nil {
					return err
				}
				return printVersion(cmd, conn)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("steps must be a positive number, got %q", args[0])
				}
				steps = n
			}
			return withConn(cmd, func(conn *sqlstore.Connection) error {
				if err := conn.MigrateDown(migrations.FS, steps); err != nil {
					return err
				}
				return printVersion(cmd, conn)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied migration version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConn(cmd, func(conn *sqlstore.Connection) error {
				return printVersion(cmd, conn)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force <version>",
		Short: "Force the migration version (use to fix dirty migration state)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil || v < -1 {
				return fmt.Errorf("invalid migration version %q", args[0])
			}
			return withConn(cmd, func(conn *sqlstore.Connection) error {
				slog.Info("Force setting migration version", "version", v)
				if err := conn.ForceMigrationVersion(migrations.FS, v); err != nil {
					return err
				}
				return printVersion(cmd, conn)
			})
		},
	})

	return cmd
}

func printVersion(cmd *cobra.Command, conn *sqlstore.Connection) error {
	v, dirty, err := conn.MigrationVersion(migrations.FS)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	out := cmd.OutOrStdout()
	if dirty {
		fmt.Fprintf(out, "version %d (dirty)\n", v)
	} else {
		fmt.Fprintf(out, "version %d\n", v)
	}
	return nil
}
