package main

import (
	"context"
	"database/sql"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/beblocky/dashboard/internal/bootstrap"
	domainauth "github.com/beblocky/dashboard/internal/domain/auth"
	"github.com/beblocky/dashboard/internal/domain/dashboard"
	obserrors "github.com/beblocky/dashboard/internal/observability/errors"
	"github.com/beblocky/dashboard/internal/service"
)

type tokenResolver interface {
	Resolve(ctx context.Context, token string) (*domainauth.Principal, error)
}

func resolveCmd(cmdCtx *commandContext) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "resolve <token>",
		Short: "Resolve a session token and print the principal and dashboard view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), cmdCtx, timeout, func(ctx context.Context, db *sql.DB) error {
				var redisClient redis.UniversalClient
				if bootstrap.NeedsRedis(cmdCtx.Config.Auth) {
					client, err := bootstrap.ConnectRedis(bootstrap.DatabaseConfig{
						RedisConfig: cmdCtx.Config.Redis,
						Logger:      cmdCtx.Logger,
					})
					if err != nil {
						return fmt.Errorf("connect redis: %w", err)
					}
					defer func() {
						if cerr := client.Close(); cerr != nil {
							cmdCtx.Logger.Warn("redis close failed", "error", cerr)
						}
					}()
					redisClient = client
				}

				authCfg := bootstrap.AuthConfig{
					Auth:        cmdCtx.Config.Auth,
					RedisClient: redisClient,
					DB:          db,
					Logger:      cmdCtx.Logger,
				}
				identity, err := bootstrap.BuildIdentityProvider(authCfg)
				if err != nil {
					return err
				}
				resolver := service.NewSessionResolver(service.SessionResolverOptions{
					Identity: identity,
					Users:    bootstrap.BuildUserStore(authCfg),
					Logger:   cmdCtx.Logger,
				})
				return printResolution(ctx, cmdCtx, resolver, args[0])
			})
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Maximum duration for the lookup")
	return cmd
}

// printResolution reports the outcome label for failures and returns the
// underlying error, so scripts see a non-zero exit.
func printResolution(ctx context.Context, cmdCtx *commandContext, r tokenResolver, token string) error {
	tw := tabwriter.NewWriter(cmdCtx.Out, 0, 0, 2, ' ', 0)

	p, err := r.Resolve(ctx, token)
	if err != nil {
		if werr := writef(tw, "outcome:\t%s\nretryable:\t%t\n", obserrors.Outcome(err), domainauth.IsRetryable(err)); werr != nil {
			return werr
		}
		if ferr := tw.Flush(); ferr != nil {
			return ferr
		}
		return fmt.Errorf("resolve token: %w", err)
	}

	view, routeErr := dashboard.Route(p.Role)
	viewLabel := string(view)
	if routeErr != nil {
		viewLabel = "none (" + obserrors.Outcome(routeErr) + ")"
	}

	if werr := writef(tw, "outcome:\t%s\nuser_id:\t%s\nemail:\t%s\nname:\t%s\nrole:\t%s\nview:\t%s\n",
		obserrors.OutcomeOK, p.ID, p.Email, p.Name, p.Role, viewLabel); werr != nil {
		return werr
	}
	return tw.Flush()
}
