package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/useradmin/internal/core"
)

const roleColumns = `id, name, description, permissions, created_at, updated_at`

func scanRole(row scanner) (*core.Role, error) {
	var (
		id   pgtype.UUID
		desc pgtype.Text
		r    core.Role
	)
	if err := row.Scan(&id, &r.Name, &desc, &r.Permissions, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.ID = uuidToString(id)
	r.Description = desc.String
	r.Permissions = nonNil(r.Permissions)
	return &r, nil
}

// roleWrite maps the result of an INSERT or UPDATE ... RETURNING.
func roleWrite(row pgx.Row) (*core.Role, error) {
	r, err := scanRole(row)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, core.ErrRoleNotFound
	case isUniqueViolation(err):
		return nil, core.ErrRoleExists
	}
	return r, err
}

func (s *Store) ListRoles(ctx context.Context) ([]core.Role, error) {
	rows, err := s.db.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	roles := []core.Role{}
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, *r)
	}
	return roles, rows.Err()
}

func (s *Store) InsertRole(ctx context.Context, d core.RoleData) (*core.Role, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO roles (name, description, permissions)
		VALUES ($1, $2, $3)
		RETURNING `+roleColumns,
		d.Name, toPgText(d.Description), nonNil(d.Permissions),
	)
	return roleWrite(row)
}

func (s *Store) UpdateRole(ctx context.Context, id string, d core.RoleData) (*core.Role, error) {
	pgID := toPgUUID(id)
	if !pgID.Valid {
		return nil, core.ErrRoleNotFound
	}
	row := s.db.QueryRow(ctx, `
		UPDATE roles SET name = $1, description = $2, permissions = $3, updated_at = now()
		WHERE id = $4
		RETURNING `+roleColumns,
		d.Name, toPgText(d.Description), nonNil(d.Permissions), pgID,
	)
	return roleWrite(row)
}

func (s *Store) DeleteRole(ctx context.Context, id string) error {
	pgID := toPgUUID(id)
	if !pgID.Valid {
		return core.ErrRoleNotFound
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM roles WHERE id = $1`, pgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrRoleNotFound
	}
	return nil
}
