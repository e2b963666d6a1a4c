package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// Download names offered for exports and the template.
const (
	ExportFileName   = "usuarios.csv"
	TemplateFileName = "template_usuarios.csv"
)

// ExportColumns is the header written by WriteUsersCSV.
var ExportColumns = []string{
	ColumnFullName, ColumnEmail, ColumnPhone, ColumnRole,
	ColumnDepartment, ColumnTeam, ColumnPosition, "status", "created_at",
}

// TemplateColumns is the header of the downloadable import template.
var TemplateColumns = []string{
	ColumnEmail, ColumnFullName, ColumnPhone, ColumnRole,
	ColumnDepartment, ColumnTeam, ColumnPosition,
}

var templateSample = []string{
	"exemplo@empresa.com", "João Silva", "11999999999", "COLLABORATOR",
	"TI", "Desenvolvimento", "Desenvolvedor",
}

// WriteUsersCSV writes users in the dialect ParseUsers reads: values with
// a comma, quote or line break are quoted and inner quotes doubled.
// created_at is written as YYYY-MM-DD.
func WriteUsersCSV(w io.Writer, users []User) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(ExportColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, u := range users {
		record := []string{
			u.FullName,
			u.Email,
			u.Phone,
			u.Role,
			u.Department,
			u.Team,
			u.Position,
			string(u.Status),
			formatDate(u.CreatedAt),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTemplateCSV writes the import template: the header and one sample row.
func WriteTemplateCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll([][]string{TemplateColumns, templateSample}); err != nil {
		return fmt.Errorf("write template: %w", err)
	}
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
