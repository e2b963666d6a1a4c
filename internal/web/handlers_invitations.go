package web

import (
	"net/http"

	"github.com/JonMunkholm/useradmin/internal/core"
)

func (s *Server) handleListInvitations(w http.ResponseWriter, r *http.Request) {
	invitations, err := s.service.ListInvitations(r.Context())
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	if invitations == nil {
		invitations = []core.Invitation{}
	}
	writeJSON(w, http.StatusOK, invitations)
}

// handleCreateInvitation records a pending invitation. An empty
// invited_by defaults to the X-Actor header.
func (s *Server) handleCreateInvitation(w http.ResponseWriter, r *http.Request) {
	var req core.InviteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.InvitedBy == "" {
		req.InvitedBy = r.Header.Get(actorHeader)
	}

	inv, err := s.service.InviteUser(r.Context(), req)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}
