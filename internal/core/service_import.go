package core

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/useradmin/internal/logging"
)

// requiredColumns must appear in the header for any row to succeed.
var requiredColumns = []string{ColumnEmail, ColumnFullName, ColumnRole}

// ImportCSV runs one bulk import of CSV text.
//
// The call waits for an import slot, parses r, drops blank-email rows and
// runs ImportAll against the Service itself, so every created row goes
// through CreateUser and logs one user_created entry.
//
// Returns ErrTooManyImports if no slot frees up in time, an error wrapping
// ErrInvalidInput when r cannot be read as CSV text, and the context error
// (together with the partial result) when ctx ends mid-batch.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader, opts ImportOptions) (ImportResult, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return ImportResult{}, err
	}
	defer s.limiter.Release()

	if s.importTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.importTimeout)
		defer cancel()
	}

	logger := logging.WithFields(ctx,
		"import_id", uuid.NewString(),
		"strict", opts.Strict,
		"dry_run", opts.DryRun,
		"serial", s.limiter.Serial(),
	)

	header, rows, err := parseRows(r)
	if err != nil {
		logger.Warn("import rejected", "error", err)
		return ImportResult{}, err
	}
	if missing := missingColumns(header); len(missing) > 0 {
		logger.Warn("import header missing columns", "missing", missing)
	}

	kept, dropped := dropBlankEmails(rows)
	logger.Info("import started", "rows", len(kept), "dropped", dropped)

	start := time.Now()
	result, err := ImportAll(ctx, kept, s, opts)
	result.Dropped = dropped

	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "import finished",
		"success", result.SuccessCount,
		"errors", len(result.Errors),
		"duration_ms", time.Since(start).Milliseconds(),
		"interrupted", err != nil,
	)

	return result, err
}

func missingColumns(header []string) []string {
	var missing []string
	for _, col := range requiredColumns {
		if !slices.Contains(header, col) {
			missing = append(missing, col)
		}
	}
	return missing
}
