package middleware

import (
	"context"
	"net/http"

	sessionsvc "github.com/simkidd/dwec-winery-storefront/internal/session"
	"github.com/simkidd/dwec-winery-storefront/pkg/auth"
	pkgerrors "github.com/simkidd/dwec-winery-storefront/pkg/errors"
	"github.com/simkidd/dwec-winery-storefront/pkg/logger"
)

// SessionResolver resolves bearer tokens to sessions.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (sessionsvc.Session, error)
}

// Session resolves the request's bearer token, if any, and attaches the
// resulting session to the context. A token the upstream rejects degrades to
// an anonymous session; the controllers that require login enforce it
// themselves. Requests without a credential never touch the resolver's
// network path.
func Session(resolver SessionResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := auth.BearerFromHeader(r.Header.Get("Authorization"))
			sess := sessionsvc.Anonymous()
			if resolver != nil {
				resolved, err := resolver.Resolve(ctx, token)
				if err != nil && logg != nil && !pkgerrors.IsCode(err, pkgerrors.CodeAuthError) {
					logg.Warn(ctx, "session.resolution degraded to anonymous")
				}
				sess = resolved
			}

			ctx = WithToken(ctx, token)
			ctx = WithSession(ctx, sess)
			if sess.Authenticated() && logg != nil {
				ctx = logg.WithUserID(ctx, sess.User.ID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
