package web

import (
	"context"
	"net/http"
	"strings"

	"github.com/JonMunkholm/useradmin/internal/core"
)

// actorHeader names the caller on whose behalf a request is made.
const actorHeader = "X-Actor"

// WithRequestMetadata adds request metadata to context for activity logging.
// RemoteAddr has already been resolved by TrustedRealIP.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, r.RemoteAddr)
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	if actor := strings.TrimSpace(r.Header.Get(actorHeader)); actor != "" {
		ctx = core.ContextWithActor(ctx, actor)
	}
	return ctx
}
