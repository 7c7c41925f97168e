package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/beblocky/dashboard/config"
	"github.com/beblocky/dashboard/internal/bootstrap"
)

type commandContext struct {
	Logger *slog.Logger
	Config config.AppConfig
	Out    io.Writer
}

const defaultCommandTimeout = 5 * time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&commandContext{Out: os.Stdout}).ExecuteContext(ctx); err != nil {
		if werr := writef(os.Stderr, "error: %s\n", err); werr != nil {
			slog.Error("print error failed", "error", werr)
		}
		stop()
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func newRootCmd(cmdCtx *commandContext) *cobra.Command {
	root := &cobra.Command{
		Use:   "beblocky-admin",
		Short: "Operate the Beblocky dashboard session gate",
		Long: `beblocky-admin runs maintenance tasks against the dashboard's user store
and session infrastructure, and lets operators replay gate and resolver
decisions for a given path or token.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := bootstrap.LoadConfig()
			if err != nil {
				return err
			}
			cmdCtx.Config = cfg
			cmdCtx.Logger = bootstrap.InitLogger(cfg.Observability.LogLevel)
			if cmdCtx.Out == nil {
				cmdCtx.Out = cmd.OutOrStdout()
			}
			return nil
		},
	}

	root.AddCommand(
		migrateCmd(cmdCtx),
		gateCmd(cmdCtx),
		resolveCmd(cmdCtx),
		userCmd(cmdCtx),
	)
	return root
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
