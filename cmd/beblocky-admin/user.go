package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/beblocky/dashboard/internal/data"
)

func userCmd(cmdCtx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage dashboard user profiles",
	}
	cmd.AddCommand(userUpsertCmd(cmdCtx), userDeleteCmd(cmdCtx))
	return cmd
}

func userUpsertCmd(cmdCtx *commandContext) *cobra.Command {
	var (
		req     data.UpsertUserRequest
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:     "upsert",
		Short:   "Create or update a user profile",
		Example: `  beblocky-admin user upsert --id dev-user --email dev@beblocky.local --role admin`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := req.Validate(); err != nil {
				return err
			}
			return withDatabase(cmd.Context(), cmdCtx, timeout, func(ctx context.Context, db *sql.DB) error {
				p, err := data.NewUserRepo(db).Upsert(ctx, req)
				if err != nil {
					return err
				}
				return writef(cmdCtx.Out, "saved %s (%s) as %s\n", p.ID, p.Email, p.Role)
			})
		},
	}

	cmd.Flags().StringVar(&req.ID, "id", "", "Identity provider subject (required)")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&req.Role, "role", "", "One of admin, teacher, parent, student, organization (required)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Maximum duration for the write")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func userDeleteCmd(cmdCtx *commandContext) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), cmdCtx, timeout, func(ctx context.Context, db *sql.DB) error {
				deleted, err := data.NewUserRepo(db).Delete(ctx, args[0])
				if err != nil {
					return fmt.Errorf("delete user: %w", err)
				}
				if !deleted {
					return writef(cmdCtx.Out, "no user %s\n", args[0])
				}
				return writef(cmdCtx.Out, "deleted %s\n", args[0])
			})
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Maximum duration for the delete")
	return cmd
}
