package middleware

import (
	"context"
	"net/http"

	"github.com/simkidd/dwec-winery-storefront/pkg/logger"
)

const viewerIDHeader = "X-Viewer-Id"

// ViewerRegistrar issues or validates per-browser viewer identifiers.
type ViewerRegistrar interface {
	Ensure(ctx context.Context, presented string) string
}

// Viewer attaches a stable viewer identifier to every request, minting one
// when the client presents none. The identifier is echoed back so the client
// can persist it.
func Viewer(registrar ViewerRegistrar, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			viewerID := r.Header.Get(viewerIDHeader)
			if registrar != nil {
				viewerID = registrar.Ensure(ctx, viewerID)
			}
			w.Header().Set(viewerIDHeader, viewerID)

			ctx = WithViewerID(ctx, viewerID)
			if logg != nil {
				ctx = logg.WithViewerID(ctx, viewerID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
