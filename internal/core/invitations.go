package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// InviteRequest is the payload for InviteUser.
type InviteRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Role      string `json:"role" validate:"required"`
	InvitedBy string `json:"invited_by" validate:"required"`
}

// InviteUser records a pending invitation with a random token that expires
// after the configured TTL. Delivering the invitation is up to the caller.
func (s *Service) InviteUser(ctx context.Context, req InviteRequest) (*Invitation, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}

	now := s.now()
	inv, err := s.invitations.InsertInvitation(ctx, Invitation{
		Email:     req.Email,
		Role:      req.Role,
		InvitedBy: req.InvitedBy,
		Token:     uuid.NewString(),
		ExpiresAt: now.Add(s.invitationTTL),
		Status:    InvitationPending,
		CreatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}
	return inv, nil
}

// ListInvitations returns every invitation, newest first.
func (s *Service) ListInvitations(ctx context.Context) ([]Invitation, error) {
	return s.invitations.ListInvitations(ctx)
}

// ExpireInvitations marks overdue pending invitations as expired.
func (s *Service) ExpireInvitations(ctx context.Context) (int64, error) {
	n, err := s.invitations.ExpirePending(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("expire invitations: %w", err)
	}
	return n, nil
}
