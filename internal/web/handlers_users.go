package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/useradmin/internal/core"
	"github.com/JonMunkholm/useradmin/internal/logging"
)

// handleListUsers returns users matching the search, role, status,
// department and team query parameters.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	users, err := s.service.ListUsers(r.Context(), core.UserFilters{
		Search:     q.Get("search"),
		Role:       q.Get("role"),
		Status:     core.UserStatus(q.Get("status")),
		Department: q.Get("department"),
		Team:       q.Get("team"),
	})
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	if users == nil {
		users = []core.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.service.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var data core.CreateUserData
	if !decodeBody(w, r, &data) {
		return
	}

	user, err := s.service.CreateUser(WithRequestMetadata(r.Context(), r), data)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// handleUpdateUser applies a partial update. The id comes from the path;
// any id in the body is ignored.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var data core.UpdateUserData
	if !decodeBody(w, r, &data) {
		return
	}
	data.ID = chi.URLParam(r, "id")

	user, err := s.service.UpdateUser(WithRequestMetadata(r.Context(), r), data)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type statusRequest struct {
	Status core.UserStatus `json:"status"`
}

func (s *Server) handleUpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := s.service.UpdateUserStatus(WithRequestMetadata(r.Context(), r), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteUser(WithRequestMetadata(r.Context(), r), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err, 0)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUserActivity(w http.ResponseWriter, r *http.Request) {
	logs, err := s.service.ActivityLogs(r.Context(), chi.URLParam(r, "id"), parseIntParam(r, "limit", 0))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, nonNilLogs(logs))
}

func (s *Server) handleRecentActivity(w http.ResponseWriter, r *http.Request) {
	logs, err := s.service.RecentActivity(r.Context(), parseIntParam(r, "limit", 0))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, nonNilLogs(logs))
}

// handleExportUsers streams the filtered user list as a CSV download.
func (s *Server) handleExportUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	users, err := s.service.ListUsers(r.Context(), core.UserFilters{
		Search:     q.Get("search"),
		Role:       q.Get("role"),
		Status:     core.UserStatus(q.Get("status")),
		Department: q.Get("department"),
		Team:       q.Get("team"),
	})
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+core.ExportFileName+`"`)
	if err := core.WriteUsersCSV(w, users); err != nil {
		// The status line is already out.
		logging.FromContext(r.Context()).Error("csv export failed", "error", err)
	}
}

// handleImportTemplate serves the sample CSV for bulk imports.
func (s *Server) handleImportTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+core.TemplateFileName+`"`)
	if err := core.WriteTemplateCSV(w); err != nil {
		logging.FromContext(r.Context()).Error("csv template failed", "error", err)
	}
}

// decodeBody reads a JSON body into v. On failure it writes a 400 and
// returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, r, errInvalidBody, http.StatusBadRequest)
		return false
	}
	return true
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

func nonNilLogs(logs []core.ActivityLog) []core.ActivityLog {
	if logs == nil {
		return []core.ActivityLog{}
	}
	return logs
}
