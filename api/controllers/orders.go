package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/simkidd/dwec-winery-storefront/api/middleware"
	"github.com/simkidd/dwec-winery-storefront/api/responses"
	ordersvc "github.com/simkidd/dwec-winery-storefront/internal/orders"
	"github.com/simkidd/dwec-winery-storefront/pkg/logger"
)

// OrdersList serves the authenticated user's order history.
func OrdersList(svc *ordersvc.History, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		orders, err := svc.List(ctx, middleware.SessionFromContext(ctx), middleware.CredentialsFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

// OrderShow serves one of the authenticated user's orders.
func OrderShow(svc *ordersvc.History, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		order, err := svc.Get(ctx, middleware.SessionFromContext(ctx), middleware.CredentialsFromContext(ctx), chi.URLParam(r, "orderID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
