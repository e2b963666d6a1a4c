// Package templates renders the HTMX fragments returned by the web layer.
//
// The components are written against the templ runtime by hand and every
// dynamic value goes through templ.EscapeString.
package templates

// TODO: move ErrorAlert and ImportSummary markup into fragments.templ and
// commit the `templ generate` output in place of this file; the exported
// function signatures stay the same so callers and fragments_test.go do
// not change.

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/useradmin/internal/core"
)

// ErrorAlert renders a dismissible error box with the support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="alert alert-error" role="alert" data-code="%s"><p class="alert-message">%s</p>`,
			templ.EscapeString(code), templ.EscapeString(message))
		if err != nil {
			return err
		}
		if action != "" {
			if _, err := fmt.Fprintf(w, `<p class="alert-action">%s</p>`, templ.EscapeString(action)); err != nil {
				return err
			}
		}
		_, err = fmt.Fprintf(w, `<p class="alert-code">Code: %s</p></div>`, templ.EscapeString(code))
		return err
	})
}

// ImportSummary renders the outcome of a bulk import: the counts and one
// table row per rejected line.
func ImportSummary(result core.ImportResult) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		verb := "imported"
		if result.DryRun {
			verb = "would be imported"
		}

		if _, err := fmt.Fprintf(w,
			`<div class="import-summary"><p class="import-counts">%d %s, %d errors</p>`,
			result.SuccessCount, verb, len(result.Errors)); err != nil {
			return err
		}

		if len(result.Errors) > 0 {
			if _, err := io.WriteString(w,
				`<table class="import-errors"><thead><tr><th>Row</th><th>Email</th><th>Error</th></tr></thead><tbody>`); err != nil {
				return err
			}
			for _, e := range result.Errors {
				if _, err := fmt.Fprintf(w, `<tr><td>%s</td><td>%s</td><td>%s</td></tr>`,
					strconv.Itoa(e.Row), templ.EscapeString(e.Email), templ.EscapeString(e.Error)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</tbody></table>`); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, `</div>`)
		return err
	})
}
