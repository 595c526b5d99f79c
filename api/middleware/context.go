package middleware

import (
	"context"

	"github.com/simkidd/dwec-winery-storefront/internal/session"
	"github.com/simkidd/dwec-winery-storefront/pkg/upstream"
)

type ctxKey int

const (
	viewerIDKey ctxKey = iota
	sessionKey
	tokenKey
)

// WithViewerID stores the resolved viewer identifier on the context.
func WithViewerID(ctx context.Context, viewerID string) context.Context {
	return context.WithValue(ctx, viewerIDKey, viewerID)
}

// ViewerIDFromContext returns the viewer identifier, or "" when the viewer
// middleware did not run.
func ViewerIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(viewerIDKey).(string); ok {
		return id
	}
	return ""
}

// WithSession stores the resolved session on the context.
func WithSession(ctx context.Context, sess session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// SessionFromContext returns the resolved session, defaulting to anonymous.
func SessionFromContext(ctx context.Context) session.Session {
	if sess, ok := ctx.Value(sessionKey).(session.Session); ok {
		return sess
	}
	return session.Anonymous()
}

// WithToken stores the raw bearer token on the context.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromContext returns the raw bearer token, or "".
func TokenFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(tokenKey).(string); ok {
		return token
	}
	return ""
}

// CredentialsFromContext assembles the upstream credentials for the request.
func CredentialsFromContext(ctx context.Context) upstream.Credentials {
	return upstream.Credentials{
		Token:    TokenFromContext(ctx),
		ViewerID: ViewerIDFromContext(ctx),
	}
}
