package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/useradmin/internal/core"
)

const invitationColumns = `id, email, role, invited_by, token, expires_at, status, created_at`

func scanInvitation(row scanner) (*core.Invitation, error) {
	var (
		id     pgtype.UUID
		status string
		inv    core.Invitation
	)
	err := row.Scan(&id, &inv.Email, &inv.Role, &inv.InvitedBy, &inv.Token,
		&inv.ExpiresAt, &status, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	inv.ID = uuidToString(id)
	inv.Status = core.InvitationStatus(status)
	return &inv, nil
}

func (s *Store) InsertInvitation(ctx context.Context, inv core.Invitation) (*core.Invitation, error) {
	createdAt := pgtype.Timestamptz{Time: inv.CreatedAt, Valid: !inv.CreatedAt.IsZero()}

	row := s.db.QueryRow(ctx, `
		INSERT INTO invitations (email, role, invited_by, token, expires_at, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()))
		RETURNING `+invitationColumns,
		inv.Email, inv.Role, inv.InvitedBy, inv.Token, inv.ExpiresAt, string(inv.Status), createdAt,
	)

	created, err := scanInvitation(row)
	if err != nil {
		return nil, fmt.Errorf("insert invitation: %w", err)
	}
	return created, nil
}

func (s *Store) ListInvitations(ctx context.Context) ([]core.Invitation, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+invitationColumns+` FROM invitations ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	invs := []core.Invitation{}
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		invs = append(invs, *inv)
	}
	return invs, rows.Err()
}

func (s *Store) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE invitations SET status = 'expired' WHERE status = 'pending' AND expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
