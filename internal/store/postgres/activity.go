package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/useradmin/internal/core"
)

func (s *Store) InsertActivity(ctx context.Context, entry core.ActivityLog) error {
	details := entry.Details
	if details == nil {
		details = map[string]any{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshal activity details: %w", err)
	}

	createdAt := pgtype.Timestamptz{Time: entry.CreatedAt, Valid: !entry.CreatedAt.IsZero()}

	_, err = s.db.Exec(ctx, `
		INSERT INTO user_activity_logs (user_id, action, details, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))`,
		toPgUUID(entry.UserID), string(entry.Action), raw,
		toPgText(entry.IPAddress), toPgText(entry.UserAgent), createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (s *Store) ListActivity(ctx context.Context, f core.ActivityFilter) ([]core.ActivityLog, error) {
	wb := NewWhereBuilder()
	wb.AddUUID("user_id", f.UserID)
	where, args := wb.Build()

	query := `SELECT id, user_id, action, details, ip_address, user_agent, created_at
		FROM user_activity_logs` + where + ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", wb.NextArgIndex())
		args = append(args, f.Limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	logs := []core.ActivityLog{}
	for rows.Next() {
		var (
			id, userID pgtype.UUID
			action     string
			raw        []byte
			ip, ua     pgtype.Text
			entry      core.ActivityLog
		)
		if err := rows.Scan(&id, &userID, &action, &raw, &ip, &ua, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &entry.Details); err != nil {
				return nil, fmt.Errorf("decode activity details: %w", err)
			}
		}
		entry.ID = uuidToString(id)
		entry.UserID = uuidToString(userID)
		entry.Action = core.ActivityAction(action)
		entry.IPAddress = ip.String
		entry.UserAgent = ua.String
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
