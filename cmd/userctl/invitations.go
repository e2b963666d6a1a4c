package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/useradmin/internal/store/postgres"
)

func newExpireInvitationsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "expire-invitations",
		Short: "Mark overdue pending invitations as expired",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			svc, _, closeFn, err := a.service(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := svc.ExpireInvitations(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d invitations expired\n", n)
			return nil
		},
	}
}

// newMigrateCmd applies the embedded schema regardless of DB_AUTO_MIGRATE.
func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables and indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return withCode(exitUsage, err)
			}

			dbCfg := cfg.Database
			dbCfg.AutoMigrate = true
			pool, err := postgres.Connect(cmd.Context(), dbCfg)
			if err != nil {
				return err
			}
			pool.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}
