package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/useradmin/internal/core"
	"github.com/JonMunkholm/useradmin/internal/logging"
	"github.com/JonMunkholm/useradmin/internal/web/templates"
)

// handleImportUsers runs a bulk import of the multipart "file" field.
//
// The strict, dry_run and role_permissions form fields override the
// configured defaults. Row failures are part of a 200 response; only
// failures of the batch as a whole are errors.
func (s *Server) handleImportUsers(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			respondError(w, r, errFileTooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, r, errNoFile, http.StatusBadRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, errNoFile, http.StatusBadRequest)
		return
	}
	defer file.Close()

	opts := core.ImportOptions{
		Strict:               formBool(r, "strict", s.cfg.Import.Strict),
		DryRun:               formBool(r, "dry_run", false),
		ApplyRolePermissions: formBool(r, "role_permissions", s.cfg.Import.RolePermissions),
	}

	logging.FromContext(r.Context()).Info("import upload received",
		"filename", header.Filename,
		"size", header.Size,
	)

	ctx := WithRequestMetadata(r.Context(), r)
	result, err := s.service.ImportCSV(ctx, file, opts)
	if err != nil {
		if !errors.Is(err, context.DeadlineExceeded) {
			respondError(w, r, err, 0)
			return
		}
		// The batch ran out of time; report what was done so far.
		logging.FromContext(r.Context()).Warn("import interrupted", "error", err, "success", result.SuccessCount)
		writeImportResult(w, r, http.StatusGatewayTimeout, result)
		return
	}

	writeImportResult(w, r, http.StatusOK, result)
}

func writeImportResult(w http.ResponseWriter, r *http.Request, status int, result core.ImportResult) {
	if result.Errors == nil {
		result.Errors = []core.ImportError{}
	}
	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_ = templates.ImportSummary(result).Render(r.Context(), w)
		return
	}
	writeJSON(w, status, result)
}

// formBool reads a boolean form field, falling back to def when the field
// is absent or unparsable.
func formBool(r *http.Request, name string, def bool) bool {
	v := r.FormValue(name)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
