package contexthelpers

import (
	"context"
	"net/http"
)

type contextKey string

const (
	userKeyContextKey  = contextKey("userKey")
	traceIDContextKey  = contextKey("traceID")
	cspNonceContextKey = contextKey("cspNonce")
)

// WithUserKey stores the anonymous user key that scopes every stored record.
func WithUserKey(ctx context.Context, userKey string) context.Context {
	return context.WithValue(ctx, userKeyContextKey, userKey)
}

// UserKey returns the user key stored with WithUserKey or an empty string.
func UserKey(ctx context.Context) string {
	userKey, ok := ctx.Value(userKeyContextKey).(string)
	if !ok {
		return ""
	}
	return userKey
}

// IdentifyRequest returns r with the user key set in its context.
func IdentifyRequest(r *http.Request, userKey string) *http.Request {
	return r.WithContext(WithUserKey(r.Context(), userKey))
}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDContextKey, traceID)
}

func TraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(traceIDContextKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// SetCSPNonce stores the nonce that inline styles must carry to satisfy the Content-Security-Policy.
func SetCSPNonce(r *http.Request, cspNonce string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), cspNonceContextKey, cspNonce))
}

func CSPNonce(ctx context.Context) string {
	cspNonce, ok := ctx.Value(cspNonceContextKey).(string)
	if !ok {
		return ""
	}
	return cspNonce
}
