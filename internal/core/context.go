package core

import "context"

type contextKey string

const (
	ctxKeyIPAddress contextKey = "activity_ip"
	ctxKeyUserAgent contextKey = "activity_ua"
	ctxKeyActor     contextKey = "activity_actor"
)

// ContextWithIPAddress adds the client IP to context for activity logging.
func ContextWithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyIPAddress, ip)
}

// ContextWithUserAgent adds the User-Agent to context for activity logging.
func ContextWithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, ctxKeyUserAgent, ua)
}

// ContextWithActor records who is performing the operation (an email,
// an API key label or "cli").
func ContextWithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, ctxKeyActor, actor)
}

// GetIPAddressFromContext extracts the client IP from context.
func GetIPAddressFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyIPAddress).(string); ok {
		return v
	}
	return ""
}

// GetUserAgentFromContext extracts the User-Agent from context.
func GetUserAgentFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyUserAgent).(string); ok {
		return v
	}
	return ""
}

// GetActorFromContext extracts the actor from context.
func GetActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyActor).(string); ok {
		return v
	}
	return ""
}
