package controllers

import (
	"context"
	"net/http"

	"github.com/simkidd/dwec-winery-storefront/api/middleware"
	"github.com/simkidd/dwec-winery-storefront/api/responses"
	sessionsvc "github.com/simkidd/dwec-winery-storefront/internal/session"
	"github.com/simkidd/dwec-winery-storefront/pkg/logger"
	"github.com/simkidd/dwec-winery-storefront/pkg/types"
)

// SessionShow reports the session the middleware resolved for this request.
func SessionShow(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.SessionFromContext(r.Context())
		responses.WriteSuccess(w, newSessionResponse(sess))
	}
}

// TokenEvictor discards a cached token resolution.
type TokenEvictor interface {
	Logout(ctx context.Context, token string)
}

// SessionLogout drops the cached resolution for the presented token. The
// upstream API owns actual credential revocation; the storefront only stops
// trusting its local copy.
func SessionLogout(guard TokenEvictor, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if guard != nil {
			guard.Logout(ctx, middleware.TokenFromContext(ctx))
		}
		responses.WriteSuccess(w, newSessionResponse(sessionsvc.Anonymous()))
	}
}

type sessionResponse struct {
	Status        string             `json:"status"`
	Authenticated bool               `json:"authenticated"`
	User          *types.UserProfile `json:"user,omitempty"`
}

func newSessionResponse(sess sessionsvc.Session) sessionResponse {
	return sessionResponse{
		Status:        string(sess.Status),
		Authenticated: sess.Authenticated(),
		User:          sess.User,
	}
}
