package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/beblocky/dashboard/internal/bootstrap"
	"github.com/beblocky/dashboard/internal/migrate"
)

func migrateCmd(cmdCtx *commandContext) *cobra.Command {
	var (
		timeout time.Duration
		status  bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), cmdCtx, timeout, func(ctx context.Context, db *sql.DB) error {
				if status {
					pending, err := migrate.Pending(ctx, db)
					if err != nil {
						return fmt.Errorf("list pending migrations: %w", err)
					}
					return printPending(cmdCtx, pending)
				}

				cmdCtx.Logger.Info("running database migrations")
				if err := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); err != nil {
					return err
				}
				cmdCtx.Logger.Info("migrations completed successfully")
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", defaultCommandTimeout, "Maximum duration for the migration run")
	cmd.Flags().BoolVar(&status, "status", false, "List pending migrations without applying them")
	return cmd
}

func printPending(cmdCtx *commandContext, pending []string) error {
	if len(pending) == 0 {
		return writef(cmdCtx.Out, "schema is up to date\n")
	}
	for _, v := range pending {
		if err := writef(cmdCtx.Out, "pending  %s\n", v); err != nil {
			return err
		}
	}
	return nil
}

func withDatabase(
	parent context.Context,
	cmdCtx *commandContext,
	timeout time.Duration,
	f func(context.Context, *sql.DB) error,
) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", cerr)
		}
	}()

	return f(ctx, db)
}
