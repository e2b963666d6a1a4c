package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
)

//go:embed schema.sql
var schemaSQL string

// Migrate creates any missing tables and indexes. It is idempotent.
// The schema runs as one simple-protocol Exec so every statement applies.
func Migrate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	slog.Info("database schema applied")
	return nil
}
