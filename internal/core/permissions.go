package core

import (
	"slices"
	"strings"
)

// Permission strings have the form "module:action".
const (
	PermUsersView              = "users:view"
	PermUsersCreate            = "users:create"
	PermUsersEdit              = "users:edit"
	PermUsersDelete            = "users:delete"
	PermUsersManagePermissions = "users:manage_permissions"

	PermProjectsView    = "projects:view"
	PermProjectsCreate  = "projects:create"
	PermProjectsEdit    = "projects:edit"
	PermProjectsDelete  = "projects:delete"
	PermProjectsApprove = "projects:approve"

	PermCRMView   = "crm:view"
	PermCRMCreate = "crm:create"
	PermCRMEdit   = "crm:edit"
	PermCRMDelete = "crm:delete"

	PermFinancialView    = "financial:view"
	PermFinancialCreate  = "financial:create"
	PermFinancialEdit    = "financial:edit"
	PermFinancialDelete  = "financial:delete"
	PermFinancialApprove = "financial:approve"

	PermTemplatesView   = "templates:view"
	PermTemplatesCreate = "templates:create"
	PermTemplatesEdit   = "templates:edit"
	PermTemplatesDelete = "templates:delete"

	PermReportsView   = "reports:view"
	PermReportsCreate = "reports:create"
	PermReportsExport = "reports:export"

	PermSettingsView = "settings:view"
	PermSettingsEdit = "settings:edit"

	PermAuditView   = "audit:view"
	PermAuditExport = "audit:export"
)

// Permissions is the full catalogue in display order.
var Permissions = []string{
	PermUsersView, PermUsersCreate, PermUsersEdit, PermUsersDelete, PermUsersManagePermissions,
	PermProjectsView, PermProjectsCreate, PermProjectsEdit, PermProjectsDelete, PermProjectsApprove,
	PermCRMView, PermCRMCreate, PermCRMEdit, PermCRMDelete,
	PermFinancialView, PermFinancialCreate, PermFinancialEdit, PermFinancialDelete, PermFinancialApprove,
	PermTemplatesView, PermTemplatesCreate, PermTemplatesEdit, PermTemplatesDelete,
	PermReportsView, PermReportsCreate, PermReportsExport,
	PermSettingsView, PermSettingsEdit,
	PermAuditView, PermAuditExport,
}

var moduleNames = map[string]string{
	"users":     "Usuários",
	"projects":  "Projetos",
	"crm":       "CRM",
	"financial": "Financeiro",
	"templates": "Templates",
	"reports":   "Relatórios",
	"settings":  "Configurações",
	"audit":     "Auditoria",
}

var actionNames = map[string]string{
	"view":               "Visualizar",
	"create":             "Criar",
	"edit":               "Editar",
	"delete":             "Excluir",
	"approve":            "Aprovar",
	"export":             "Exportar",
	"manage_permissions": "Gerenciar Permissões",
}

// SystemRole is a built-in role keyed by the value stored in User.Role.
type SystemRole struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

var systemRoles = []SystemRole{
	{
		Key:         "ADMIN",
		Name:        "Administrador",
		Description: "Acesso total ao sistema",
		Permissions: Permissions,
	},
	{
		Key:         "MANAGER",
		Name:        "Gerente",
		Description: "Gerenciamento de equipes e projetos",
		Permissions: []string{
			PermUsersView, PermUsersCreate, PermUsersEdit,
			PermProjectsView, PermProjectsCreate, PermProjectsEdit, PermProjectsApprove,
			PermCRMView, PermCRMCreate, PermCRMEdit,
			PermFinancialView,
			PermTemplatesView, PermTemplatesCreate, PermTemplatesEdit,
			PermReportsView, PermReportsCreate,
			PermSettingsView,
		},
	},
	{
		Key:         "COLLABORATOR",
		Name:        "Colaborador",
		Description: "Acesso a projetos e tarefas",
		Permissions: []string{
			PermUsersView,
			PermProjectsView, PermProjectsCreate, PermProjectsEdit,
			PermCRMView, PermCRMCreate, PermCRMEdit,
			PermTemplatesView, PermTemplatesCreate,
			PermReportsView,
		},
	},
	{
		Key:         "CONSULTANT",
		Name:        "Consultor",
		Description: "Acesso limitado a projetos específicos",
		Permissions: []string{
			PermProjectsView, PermProjectsEdit,
			PermTemplatesView,
			PermReportsView,
		},
	},
	{
		Key:         "GUEST",
		Name:        "Convidado",
		Description: "Acesso apenas para visualização",
		Permissions: []string{
			PermProjectsView,
			PermTemplatesView,
			PermReportsView,
		},
	},
}

// SystemRoles returns a copy of the built-in roles.
func SystemRoles() []SystemRole {
	out := make([]SystemRole, len(systemRoles))
	for i, r := range systemRoles {
		r.Permissions = slices.Clone(r.Permissions)
		out[i] = r
	}
	return out
}

// RolePermissions returns the default permissions for a system role key
// (case-insensitive), or an empty list for unknown roles.
func RolePermissions(role string) []string {
	for _, r := range systemRoles {
		if strings.EqualFold(r.Key, role) {
			return slices.Clone(r.Permissions)
		}
	}
	return []string{}
}

// HasPermission reports whether granted contains perm.
func HasPermission(granted []string, perm string) bool {
	return slices.Contains(granted, perm)
}

// HasAnyPermission reports whether granted contains at least one of perms.
func HasAnyPermission(granted []string, perms ...string) bool {
	for _, p := range perms {
		if slices.Contains(granted, p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether granted contains every perm.
func HasAllPermissions(granted []string, perms ...string) bool {
	for _, p := range perms {
		if !slices.Contains(granted, p) {
			return false
		}
	}
	return true
}

// GroupPermissionsByModule buckets permission strings by their module
// prefix. Strings without a colon are skipped.
func GroupPermissionsByModule(perms []string) map[string][]string {
	groups := make(map[string][]string)
	for _, p := range perms {
		module, _, ok := strings.Cut(p, ":")
		if !ok {
			continue
		}
		groups[module] = append(groups[module], p)
	}
	return groups
}

// FormatPermission renders "users:view" as "Usuários - Visualizar".
// Unknown modules or actions fall back to the raw segment.
func FormatPermission(perm string) string {
	module, action, ok := strings.Cut(perm, ":")
	if !ok {
		return perm
	}
	if name, found := moduleNames[module]; found {
		module = name
	}
	if name, found := actionNames[action]; found {
		action = name
	}
	return module + " - " + action
}
