package web

import (
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/useradmin/internal/core"
)

func (s *Server) handleListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := s.service.ListRoles(r.Context())
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	if roles == nil {
		roles = []core.Role{}
	}
	writeJSON(w, http.StatusOK, roles)
}

func (s *Server) handleSystemRoles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.SystemRoles())
}

func (s *Server) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	var data core.RoleData
	if !decodeBody(w, r, &data) {
		return
	}

	role, err := s.service.CreateRole(r.Context(), data)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusCreated, role)
}

func (s *Server) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	var data core.RoleData
	if !decodeBody(w, r, &data) {
		return
	}

	role, err := s.service.UpdateRole(r.Context(), chi.URLParam(r, "id"), data)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, role)
}

func (s *Server) handleDeleteRole(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteRole(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err, 0)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// permissionInfo is one catalogue entry with its display label.
type permissionInfo struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type permissionModule struct {
	Module      string           `json:"module"`
	Permissions []permissionInfo `json:"permissions"`
}

// handleListPermissions returns the permission catalogue grouped by module.
// Modules keep catalogue order.
func (s *Server) handleListPermissions(w http.ResponseWriter, r *http.Request) {
	groups := core.GroupPermissionsByModule(core.Permissions)

	var order []string
	for _, p := range core.Permissions {
		module, _, _ := strings.Cut(p, ":")
		if !slices.Contains(order, module) {
			order = append(order, module)
		}
	}

	modules := make([]permissionModule, 0, len(order))
	for _, m := range order {
		pm := permissionModule{Module: m}
		for _, p := range groups[m] {
			pm.Permissions = append(pm.Permissions, permissionInfo{Key: p, Label: core.FormatPermission(p)})
		}
		modules = append(modules, pm)
	}
	writeJSON(w, http.StatusOK, modules)
}
