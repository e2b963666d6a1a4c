package core

import (
	"context"

	"github.com/JonMunkholm/useradmin/internal/logging"
)

// DefaultActivityLimit is the page size when callers pass no limit.
const DefaultActivityLimit = 50

// MaxActivityLimit caps a single activity query.
const MaxActivityLimit = 500

// logActivity records one lifecycle event. Client IP and User-Agent come
// from ctx. A failed write is logged and does not fail the operation that
// triggered it.
func (s *Service) logActivity(ctx context.Context, userID string, action ActivityAction, details map[string]any) {
	if s.activity == nil {
		return
	}

	entry := ActivityLog{
		UserID:    userID,
		Action:    action,
		Details:   details,
		IPAddress: GetIPAddressFromContext(ctx),
		UserAgent: GetUserAgentFromContext(ctx),
		CreatedAt: s.now(),
	}
	if actor := GetActorFromContext(ctx); actor != "" {
		entry.Details["actor"] = actor
	}

	if err := s.activity.InsertActivity(ctx, entry); err != nil {
		logging.FromContext(ctx).Warn("activity log write failed",
			"user_id", userID,
			"action", action,
			"error", err,
		)
	}
}

// ActivityLogs returns the most recent entries for one user, newest first.
// A non-positive limit selects DefaultActivityLimit.
func (s *Service) ActivityLogs(ctx context.Context, userID string, limit int) ([]ActivityLog, error) {
	return s.activity.ListActivity(ctx, ActivityFilter{UserID: userID, Limit: clampLimit(limit)})
}

// RecentActivity returns the most recent entries across all users.
func (s *Service) RecentActivity(ctx context.Context, limit int) ([]ActivityLog, error) {
	return s.activity.ListActivity(ctx, ActivityFilter{Limit: clampLimit(limit)})
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultActivityLimit
	case limit > MaxActivityLimit:
		return MaxActivityLimit
	default:
		return limit
	}
}
