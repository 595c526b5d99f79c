package controllers

import (
	"net/http"

	"github.com/simkidd/dwec-winery-storefront/api/middleware"
	"github.com/simkidd/dwec-winery-storefront/api/responses"
	"github.com/simkidd/dwec-winery-storefront/api/validators"
	favoritesvc "github.com/simkidd/dwec-winery-storefront/internal/favorites"
	"github.com/simkidd/dwec-winery-storefront/pkg/logger"
	"github.com/simkidd/dwec-winery-storefront/pkg/types"
)

// FavoritesList returns the authenticated user's favorites.
func FavoritesList(svc *favoritesvc.Synchronizer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		list, err := svc.Fetch(ctx, middleware.SessionFromContext(ctx), middleware.CredentialsFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newFavoritesResponse(list))
	}
}

// FavoritesToggle flips a product's favorite flag and returns the fresh list.
func FavoritesToggle(svc *favoritesvc.Synchronizer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload toggleFavoriteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := svc.Toggle(ctx, middleware.SessionFromContext(ctx), middleware.CredentialsFromContext(ctx), payload.ProductID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newFavoritesResponse(list))
	}
}

type toggleFavoriteRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

type favoritesResponse struct {
	Items []types.ProductSnapshot `json:"items"`
	Count int                     `json:"count"`
}

func newFavoritesResponse(items []types.ProductSnapshot) favoritesResponse {
	if items == nil {
		items = []types.ProductSnapshot{}
	}
	return favoritesResponse{Items: items, Count: len(items)}
}
