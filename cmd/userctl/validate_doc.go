package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/useradmin/internal/document"
)

func newValidateDocCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-doc VALUE...",
		Short: "Check CPF/CNPJ check digits",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VALUE\tKIND\tVALID\tFORMATTED")

			invalid := 0
			for _, v := range args {
				kind := document.Kind(v)
				if kind == "" {
					kind = "-"
				}
				ok := document.IsValid(v)
				if !ok {
					invalid++
				}
				fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", v, kind, ok, document.Format(v))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if invalid > 0 {
				return withCode(exitValidation, fmt.Errorf("%d of %d documents are invalid", invalid, len(args)))
			}
			return nil
		},
	}
}
