package postgres

import (
	"fmt"
	"strings"
)

// WhereBuilder assembles a parameterized WHERE clause. Empty filter
// values are skipped so callers can pass optional filters straight through.
type WhereBuilder struct {
	conditions []string
	args       []any
	argIndex   int
}

// NewWhereBuilder returns an empty builder whose first placeholder is $1.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{argIndex: 1}
}

// Add appends "column = $n" when value is non-empty.
func (wb *WhereBuilder) Add(column, value string) {
	if value == "" {
		return
	}
	wb.conditions = append(wb.conditions, fmt.Sprintf("%s = $%d", column, wb.argIndex))
	wb.args = append(wb.args, value)
	wb.argIndex++
}

// AddUUID appends "column = $n" for a non-empty id. Malformed ids bind as
// NULL and therefore match nothing.
func (wb *WhereBuilder) AddUUID(column, id string) {
	if id == "" {
		return
	}
	wb.conditions = append(wb.conditions, fmt.Sprintf("%s = $%d", column, wb.argIndex))
	wb.args = append(wb.args, toPgUUID(id))
	wb.argIndex++
}

// AddSearch appends a case-insensitive substring match over columns,
// OR-ed together and sharing one placeholder.
func (wb *WhereBuilder) AddSearch(query string, columns ...string) {
	if query == "" || len(columns) == 0 {
		return
	}

	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = fmt.Sprintf("%s ILIKE $%d", quoteIdentifier(col), wb.argIndex)
	}
	wb.conditions = append(wb.conditions, "("+strings.Join(parts, " OR ")+")")
	wb.args = append(wb.args, "%"+escapeLike(query)+"%")
	wb.argIndex++
}

// NextArgIndex returns the placeholder number the next argument will use.
func (wb *WhereBuilder) NextArgIndex() int {
	return wb.argIndex
}

// Build returns the clause with a leading " WHERE " and its arguments, or
// "" and nil when no condition was added.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// escapeLike makes % and _ in user input match literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
