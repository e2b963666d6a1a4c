package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/useradmin/internal/core"
)

const userColumns = `id, email, full_name, phone, role, department, team, position,
	birth_date, cpf_cnpj, status, permissions, avatar_url, last_login, created_at, updated_at`

func scanUser(row scanner) (*core.User, error) {
	var (
		id         pgtype.UUID
		u          core.User
		status     string
		phone      pgtype.Text
		department pgtype.Text
		team       pgtype.Text
		position   pgtype.Text
		birthDate  pgtype.Date
		cpfCNPJ    pgtype.Text
		avatarURL  pgtype.Text
		lastLogin  pgtype.Timestamptz
	)

	err := row.Scan(
		&id, &u.Email, &u.FullName, &phone, &u.Role, &department, &team, &position,
		&birthDate, &cpfCNPJ, &status, &u.Permissions, &avatarURL, &lastLogin,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.ID = uuidToString(id)
	u.Status = core.UserStatus(status)
	u.Phone = phone.String
	u.Department = department.String
	u.Team = team.String
	u.Position = position.String
	u.BirthDate = dateToPtr(birthDate)
	u.CPFCNPJ = cpfCNPJ.String
	u.AvatarURL = avatarURL.String
	u.LastLogin = timestampToPtr(lastLogin)
	u.Permissions = nonNil(u.Permissions)
	return &u, nil
}

// userRow maps a single-row result, turning pgx.ErrNoRows into
// core.ErrUserNotFound.
func userRow(row pgx.Row) (*core.User, error) {
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrUserNotFound
	}
	return u, err
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*core.User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return userRow(row)
}

func (s *Store) GetUser(ctx context.Context, id string) (*core.User, error) {
	pgID := toPgUUID(id)
	if !pgID.Valid {
		return nil, core.ErrUserNotFound
	}
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, pgID)
	return userRow(row)
}

func (s *Store) ListUsers(ctx context.Context, f core.UserFilters) ([]core.User, error) {
	wb := NewWhereBuilder()
	wb.AddSearch(f.Search, "full_name", "email")
	wb.Add("role", f.Role)
	wb.Add("status", string(f.Status))
	wb.Add("department", f.Department)
	wb.Add("team", f.Team)
	where, args := wb.Build()

	rows, err := s.db.Query(ctx,
		`SELECT `+userColumns+` FROM users`+where+` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []core.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *Store) InsertUser(ctx context.Context, u core.User) (*core.User, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO users (email, full_name, phone, role, department, team, position,
			birth_date, cpf_cnpj, status, permissions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+userColumns,
		u.Email, u.FullName, toPgText(u.Phone), u.Role,
		toPgText(u.Department), toPgText(u.Team), toPgText(u.Position),
		toPgDate(u.BirthDate), toPgText(u.CPFCNPJ), string(u.Status), nonNil(u.Permissions),
	)

	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, core.ErrUserExists
		}
		return nil, err
	}
	return created, nil
}

func (s *Store) UpdateUser(ctx context.Context, d core.UpdateUserData) (*core.User, error) {
	pgID := toPgUUID(d.ID)
	if !pgID.Valid {
		return nil, core.ErrUserNotFound
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	setText := func(column string, v *string) {
		if v != nil {
			set(column, toPgText(*v))
		}
	}

	if d.Email != nil {
		set("email", *d.Email)
	}
	if d.FullName != nil {
		set("full_name", *d.FullName)
	}
	if d.Role != nil {
		set("role", *d.Role)
	}
	setText("phone", d.Phone)
	setText("department", d.Department)
	setText("team", d.Team)
	setText("position", d.Position)
	setText("cpf_cnpj", d.CPFCNPJ)
	if d.BirthDate != nil {
		set("birth_date", toPgDate(d.BirthDate))
	}
	if d.Status != nil {
		set("status", string(*d.Status))
	}
	if d.Permissions != nil {
		set("permissions", nonNil(*d.Permissions))
	}
	if len(sets) == 0 {
		return nil, core.ErrNoChanges
	}

	args = append(args, pgID)
	query := fmt.Sprintf(`UPDATE users SET %s, updated_at = now() WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), userColumns)

	u, err := userRow(s.db.QueryRow(ctx, query, args...))
	if err != nil && isUniqueViolation(err) {
		return nil, core.ErrUserExists
	}
	return u, err
}

func (s *Store) UpdateUserStatus(ctx context.Context, id string, status core.UserStatus) (*core.User, error) {
	pgID := toPgUUID(id)
	if !pgID.Valid {
		return nil, core.ErrUserNotFound
	}
	row := s.db.QueryRow(ctx,
		`UPDATE users SET status = $1, updated_at = now() WHERE id = $2 RETURNING `+userColumns,
		string(status), pgID)
	return userRow(row)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	pgID := toPgUUID(id)
	if !pgID.Valid {
		return core.ErrUserNotFound
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, pgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrUserNotFound
	}
	return nil
}
