package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/simkidd/dwec-winery-storefront/pkg/config"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000", // local dev
	"https://dwecwinery.ng",
	"https://www.dwecwinery.ng",
	"https://dwec-fe.vercel.app", // Vercel preview
}

// CORS returns middleware that applies the storefront's allowed origin policy.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = defaultCORSOrigins
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Viewer-Id", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Viewer-Id", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
