package core

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// ListRoles returns custom roles ordered by name.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.roles.ListRoles(ctx)
}

// CreateRole stores a custom role. Every permission must be in the catalogue.
func (s *Service) CreateRole(ctx context.Context, data RoleData) (*Role, error) {
	data, err := normalizeRole(data)
	if err != nil {
		return nil, err
	}

	role, err := s.roles.InsertRole(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}
	return role, nil
}

// UpdateRole replaces a custom role's name, description and permissions.
func (s *Service) UpdateRole(ctx context.Context, id string, data RoleData) (*Role, error) {
	data, err := normalizeRole(data)
	if err != nil {
		return nil, err
	}

	role, err := s.roles.UpdateRole(ctx, id, data)
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	return role, nil
}

// DeleteRole removes a custom role.
func (s *Service) DeleteRole(ctx context.Context, id string) error {
	if err := s.roles.DeleteRole(ctx, id); err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return nil
}

func normalizeRole(data RoleData) (RoleData, error) {
	data.Name = strings.TrimSpace(data.Name)
	if err := ValidateStruct(data); err != nil {
		return data, err
	}

	var unknown ValidationErrors
	for _, p := range data.Permissions {
		if !slices.Contains(Permissions, p) {
			unknown = append(unknown, ValidationError{
				Field:   "permissions",
				Value:   p,
				Message: "invalid enum value, unknown permission " + p,
			})
		}
	}
	if len(unknown) > 0 {
		return data, unknown
	}

	perms := slices.Clone(data.Permissions)
	slices.Sort(perms)
	data.Permissions = slices.Compact(perms)
	if data.Permissions == nil {
		data.Permissions = []string{}
	}
	return data, nil
}
