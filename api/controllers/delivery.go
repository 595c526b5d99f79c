package controllers

import (
	"net/http"

	"github.com/simkidd/dwec-winery-storefront/api/middleware"
	"github.com/simkidd/dwec-winery-storefront/api/responses"
	deliverysvc "github.com/simkidd/dwec-winery-storefront/internal/delivery"
	"github.com/simkidd/dwec-winery-storefront/pkg/logger"
)

// DeliveryAreasList serves the serviceable delivery areas and their fees.
func DeliveryAreasList(svc *deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		areas, err := svc.Areas(ctx, middleware.CredentialsFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, areas)
	}
}
