package core

// csv_import.go implements the bulk user import pipeline.
//
// ParseUsers tokenizes CSV text into CandidateUsers. ImportAll then walks
// the rows strictly in order; for each row it checks required fields,
// looks up the email and only then creates the account. Rows are never
// processed concurrently: the lookup and the create are separate store
// calls, and running rows side by side would let two rows with the same
// email both pass the lookup.
//
// Every row ImportAll processes yields exactly one outcome, a success
// or an ImportError. Row numbers are 1-based and count only rows that
// survived dropBlankEmails, so they match file lines only when no blank
// email rows precede them.

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/JonMunkholm/useradmin/internal/document"
)

// Column names recognized in import files. Other columns are ignored.
const (
	ColumnEmail      = "email"
	ColumnFullName   = "full_name"
	ColumnPhone      = "phone"
	ColumnRole       = "role"
	ColumnDepartment = "department"
	ColumnTeam       = "team"
	ColumnPosition   = "position"
	ColumnCPFCNPJ    = "cpf_cnpj"
)

var importColumns = []string{
	ColumnEmail, ColumnFullName, ColumnPhone, ColumnRole,
	ColumnDepartment, ColumnTeam, ColumnPosition, ColumnCPFCNPJ,
}

// Per-row error messages reported in ImportError.Error.
const (
	MsgMissingRequired = "missing required fields"
	MsgUserExists      = "user already exists"
	MsgInvalidEmail    = "invalid email"
	MsgInvalidDocument = "invalid cpf_cnpj"
	MsgUnknownError    = "unknown error"
)

// MissingEmailPlaceholder stands in for the email of rows that have none.
const MissingEmailPlaceholder = "N/A"

// CandidateUser is one parsed import row. Columns absent from the file or
// from a short row are empty.
type CandidateUser struct {
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Phone      string `json:"phone,omitempty"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	Team       string `json:"team,omitempty"`
	Position   string `json:"position,omitempty"`
	CPFCNPJ    string `json:"cpf_cnpj,omitempty"`
}

// ImportError explains why one row did not become an account.
type ImportError struct {
	Row   int    `json:"row"`
	Email string `json:"email"`
	Error string `json:"error"`
}

// ImportResult accounts for one import run.
type ImportResult struct {
	SuccessCount int           `json:"success"`
	Errors       []ImportError `json:"errors"`
	// Dropped counts rows removed by the blank-email filter before numbering.
	Dropped int  `json:"dropped"`
	DryRun  bool `json:"dry_run,omitempty"`
}

// ImportOptions tunes ImportAll.
type ImportOptions struct {
	// ApplyRolePermissions seeds each user with the default permissions of
	// its system role instead of an empty list.
	ApplyRolePermissions bool `json:"role_permissions"`

	// Strict rejects rows with a malformed email or a cpf_cnpj whose check
	// digits do not match, before the store is queried.
	Strict bool `json:"strict"`

	// DryRun performs every check, including the duplicate lookup, but
	// creates nothing. Rows that would be created count as successes.
	DryRun bool `json:"dry_run"`
}

// ImportStore is what ImportAll needs from its collaborator.
// FindUserByEmail must return ErrUserNotFound when no account matches.
// CreateUser must be the single creation entry point so that each
// created row produces one activity log entry.
type ImportStore interface {
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, data CreateUserData) (*User, error)
}

// ParseUsers reads CSV text into a header and the candidate users that
// carry an email. It fails with ErrInvalidInput when the input is empty,
// not valid UTF-8, not tokenizable, or names a known column twice.
func ParseUsers(r io.Reader) ([]string, []CandidateUser, error) {
	header, rows, err := parseRows(r)
	if err != nil {
		return nil, nil, err
	}
	kept, _ := dropBlankEmails(rows)
	return header, kept, nil
}

// parseRows tokenizes r and zips every data record against the header.
func parseRows(r io.Reader) ([]string, []CandidateUser, error) {
	cr := csv.NewReader(WrapForImport(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: invalid csv: %v", ErrInvalidInput, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: empty file, no header line", ErrInvalidInput)
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}
	if dup := duplicateColumn(header); dup != "" {
		return nil, nil, fmt.Errorf("%w: invalid csv: duplicate column %q", ErrInvalidInput, dup)
	}

	rows := make([]CandidateUser, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, zipRow(header, rec))
	}
	return header, rows, nil
}

// duplicateColumn returns the first known column that appears more than
// once in header. Unknown columns may repeat.
func duplicateColumn(header []string) string {
	seen := make(map[string]bool, len(header))
	for _, name := range header {
		if !slices.Contains(importColumns, name) {
			continue
		}
		if seen[name] {
			return name
		}
		seen[name] = true
	}
	return ""
}

// zipRow pairs header names with record values by position. Values past
// the header are ignored; header names past the record stay empty.
func zipRow(header, rec []string) CandidateUser {
	var c CandidateUser
	for i, name := range header {
		if i >= len(rec) {
			break
		}
		v := strings.TrimSpace(rec[i])
		switch name {
		case ColumnEmail:
			c.Email = v
		case ColumnFullName:
			c.FullName = v
		case ColumnPhone:
			c.Phone = v
		case ColumnRole:
			c.Role = v
		case ColumnDepartment:
			c.Department = v
		case ColumnTeam:
			c.Team = v
		case ColumnPosition:
			c.Position = v
		case ColumnCPFCNPJ:
			c.CPFCNPJ = v
		}
	}
	return c
}

// dropBlankEmails removes rows without an email and reports how many were
// removed. They are never numbered or reported as errors, which is why
// ImportError.Row counts surviving rows rather than file lines.
func dropBlankEmails(rows []CandidateUser) ([]CandidateUser, int) {
	kept := make([]CandidateUser, 0, len(rows))
	for _, row := range rows {
		if row.Email != "" {
			kept = append(kept, row)
		}
	}
	return kept, len(rows) - len(kept)
}

// ImportAll processes rows in order and returns the accounting.
//
// Row failures never abort the batch. If ctx is cancelled, ImportAll stops
// before the next row's store calls and returns the outcomes gathered so
// far together with the context error. A row whose store call fails
// because ctx ended is left out of the result.
func ImportAll(ctx context.Context, rows []CandidateUser, store ImportStore, opts ImportOptions) (ImportResult, error) {
	result := ImportResult{Errors: []ImportError{}, DryRun: opts.DryRun}

	// Dry runs create nothing, so emails that would have been created by
	// earlier rows are tracked here.
	var planned map[string]struct{}
	if opts.DryRun {
		planned = make(map[string]struct{})
	}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		msg, err := importRow(ctx, row, store, opts, planned)
		if err != nil {
			return result, err
		}
		if msg != "" {
			email := row.Email
			if email == "" {
				email = MissingEmailPlaceholder
			}
			result.Errors = append(result.Errors, ImportError{Row: i + 1, Email: email, Error: msg})
			continue
		}
		result.SuccessCount++
	}

	return result, nil
}

// importRow runs one row through validation, the duplicate lookup and
// creation. It returns "" on success or the row's error message. The
// error is non-nil only when a store call failed because ctx ended.
func importRow(ctx context.Context, row CandidateUser, store ImportStore, opts ImportOptions, planned map[string]struct{}) (string, error) {
	if row.Email == "" || row.FullName == "" || row.Role == "" {
		return MsgMissingRequired, nil
	}

	if opts.Strict {
		if !IsValidEmail(row.Email) {
			return MsgInvalidEmail, nil
		}
		if row.CPFCNPJ != "" && !document.IsValid(row.CPFCNPJ) {
			return MsgInvalidDocument, nil
		}
	}

	if _, ok := planned[row.Email]; ok {
		return MsgUserExists, nil
	}

	existing, err := store.FindUserByEmail(ctx, row.Email)
	switch {
	case err == nil && existing != nil:
		return MsgUserExists, nil
	case err != nil && !errors.Is(err, ErrUserNotFound):
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return storeMessage(err), nil
	}

	if opts.DryRun {
		planned[row.Email] = struct{}{}
		return "", nil
	}

	if _, err := store.CreateUser(ctx, row.createData(opts)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return storeMessage(err), nil
	}
	return "", nil
}

// createData builds the creation payload with import defaults.
func (c CandidateUser) createData(opts ImportOptions) CreateUserData {
	perms := []string{}
	if opts.ApplyRolePermissions {
		perms = RolePermissions(c.Role)
	}
	return CreateUserData{
		Email:       c.Email,
		FullName:    c.FullName,
		Phone:       c.Phone,
		Role:        c.Role,
		Department:  c.Department,
		Team:        c.Team,
		Position:    c.Position,
		CPFCNPJ:     c.CPFCNPJ,
		Status:      StatusActive,
		Permissions: perms,
	}
}

// storeMessage turns a store failure into the row's error text.
func storeMessage(err error) string {
	if errors.Is(err, ErrUserExists) {
		return MsgUserExists
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return MsgUnknownError
}
