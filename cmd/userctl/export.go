package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/useradmin/internal/core"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		out     string
		filters core.UserFilters
		status  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export users as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			svc, _, closeFn, err := a.service(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			filters.Status = core.UserStatus(status)
			users, err := svc.ListUsers(ctx, filters)
			if err != nil {
				return err
			}

			return writeTo(cmd, out, func(w io.Writer) error {
				return core.WriteUsersCSV(w, users)
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&filters.Search, "search", "", "Match name or email")
	cmd.Flags().StringVar(&filters.Role, "role", "", "Filter by role")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status: active, inactive, suspended")
	cmd.Flags().StringVar(&filters.Department, "department", "", "Filter by department")
	cmd.Flags().StringVar(&filters.Team, "team", "", "Filter by team")

	return cmd
}

func newTemplateCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write the sample import CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeTo(cmd, out, core.WriteTemplateCSV)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

// writeTo runs write against path, or stdout when path is empty.
func writeTo(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}

	f, err := os.Create(path)
	if err != nil {
		return withCode(exitUsage, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
