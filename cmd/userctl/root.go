package main

import (
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/useradmin/internal/logging"
)

func newRootCmd(a *app) *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	root := &cobra.Command{
		Use:           "userctl",
		Short:         "User administration tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Output belongs to stdout; logs go to stderr.
			logging.SetupWriter(cmd.ErrOrStderr(), logLevel, logFormat)
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text, json")

	root.AddCommand(
		newImportCmd(a),
		newExportCmd(a),
		newTemplateCmd(),
		newValidateDocCmd(),
		newExpireInvitationsCmd(a),
		newMigrateCmd(a),
	)
	return root
}
