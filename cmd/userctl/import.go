package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/useradmin/internal/core"
)

type importFlags struct {
	strict          bool
	dryRun          bool
	rolePermissions bool
	asJSON          bool
	actor           string
}

func newImportCmd(a *app) *cobra.Command {
	var f importFlags

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Bulk import users from a CSV file (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			svc, cfg, closeFn, err := a.service(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			in, err := openInput(cmd, args[0])
			if err != nil {
				return withCode(exitUsage, err)
			}
			defer in.Close()

			opts := core.ImportOptions{
				Strict:               cfg.Import.Strict,
				DryRun:               f.dryRun,
				ApplyRolePermissions: cfg.Import.RolePermissions,
			}
			if cmd.Flags().Changed("strict") {
				opts.Strict = f.strict
			}
			if cmd.Flags().Changed("role-permissions") {
				opts.ApplyRolePermissions = f.rolePermissions
			}

			ctx = core.ContextWithActor(ctx, f.actor)
			ctx = core.ContextWithUserAgent(ctx, "userctl")

			result, err := svc.ImportCSV(ctx, in, opts)
			if err != nil && result.SuccessCount == 0 && len(result.Errors) == 0 {
				code := exitFailure
				if errors.Is(err, core.ErrInvalidInput) {
					code = exitValidation
				}
				return withCode(code, errors.New(core.FormatUserError(err)))
			}

			if werr := writeImportResult(cmd.OutOrStdout(), result, f.asJSON); werr != nil {
				return werr
			}
			if err != nil {
				return err
			}
			if len(result.Errors) > 0 {
				return withCode(exitRowErrors, fmt.Errorf("%d rows were not imported", len(result.Errors)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&f.strict, "strict", false, "Reject malformed emails and CPF/CNPJ check-digit failures (default from IMPORT_STRICT)")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Check every row without creating users")
	cmd.Flags().BoolVar(&f.rolePermissions, "role-permissions", false, "Seed users with their role's default permissions (default from IMPORT_ROLE_PERMISSIONS)")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().StringVar(&f.actor, "actor", "cli", "Actor recorded in activity logs")

	return cmd
}

func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	return os.Open(path)
}

func writeImportResult(w io.Writer, result core.ImportResult, asJSON bool) error {
	if result.Errors == nil {
		result.Errors = []core.ImportError{}
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	verb := "imported"
	if result.DryRun {
		verb = "would be imported"
	}
	fmt.Fprintf(w, "%d %s, %d errors, %d skipped without email\n",
		result.SuccessCount, verb, len(result.Errors), result.Dropped)

	if len(result.Errors) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tEMAIL\tERROR")
	for _, e := range result.Errors {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", e.Row, e.Email, e.Error)
	}
	return tw.Flush()
}
