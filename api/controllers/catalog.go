package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/simkidd/dwec-winery-storefront/api/middleware"
	"github.com/simkidd/dwec-winery-storefront/api/responses"
	catalogsvc "github.com/simkidd/dwec-winery-storefront/internal/catalog"
	"github.com/simkidd/dwec-winery-storefront/pkg/logger"
	"github.com/simkidd/dwec-winery-storefront/pkg/upstream"
)

// ProductsList serves the catalog listing with optional filters.
func ProductsList(svc *catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		query := upstream.ProductQuery{
			Search:   r.URL.Query().Get("search"),
			Category: r.URL.Query().Get("category"),
		}
		if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
			query.Page = page
		}
		if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
			query.Limit = limit
		}

		page, err := svc.Products(ctx, middleware.CredentialsFromContext(ctx), query)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// ProductShow serves one catalog entry by slug.
func ProductShow(svc *catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		product, err := svc.ProductBySlug(ctx, middleware.CredentialsFromContext(ctx), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// CategoriesList serves the catalog groupings.
func CategoriesList(svc *catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		categories, err := svc.Categories(ctx, middleware.CredentialsFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

// AdsList serves the promotional placements feed.
func AdsList(svc *catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ads, err := svc.Ads(ctx, middleware.CredentialsFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, ads)
	}
}
