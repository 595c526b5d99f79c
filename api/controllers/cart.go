package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/simkidd/dwec-winery-storefront/api/middleware"
	"github.com/simkidd/dwec-winery-storefront/api/responses"
	"github.com/simkidd/dwec-winery-storefront/api/validators"
	cartsvc "github.com/simkidd/dwec-winery-storefront/internal/cart"
	pkgerrors "github.com/simkidd/dwec-winery-storefront/pkg/errors"
	"github.com/simkidd/dwec-winery-storefront/pkg/logger"
	"github.com/simkidd/dwec-winery-storefront/pkg/types"
)

// CartGet returns the viewer's current cart.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerID, err := requireViewer(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.Get(r.Context(), viewerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(state))
	}
}

// CartAddItem adds a product (optionally a specific variant) to the cart.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerID, err := requireViewer(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.AddItem(r.Context(), viewerID, payload.Product.toSnapshot(), payload.Variant.toSnapshot(), payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(state))
	}
}

// CartRemoveItem deletes one cart line.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerID, err := requireViewer(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.RemoveItem(r.Context(), viewerID, chi.URLParam(r, "lineID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(state))
	}
}

// CartSetQuantity replaces one line's quantity.
func CartSetQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerID, err := requireViewer(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.SetQuantity(r.Context(), viewerID, chi.URLParam(r, "lineID"), payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(state))
	}
}

// CartIncrement raises one line's quantity by one.
func CartIncrement(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerID, err := requireViewer(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.Increment(r.Context(), viewerID, chi.URLParam(r, "lineID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(state))
	}
}

// CartDecrement lowers one line's quantity by one, never below 1.
func CartDecrement(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerID, err := requireViewer(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.Decrement(r.Context(), viewerID, chi.URLParam(r, "lineID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(state))
	}
}

// CartClear empties the viewer's cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerID, err := requireViewer(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.Clear(r.Context(), viewerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(state))
	}
}

func requireViewer(r *http.Request) (string, error) {
	viewerID := middleware.ViewerIDFromContext(r.Context())
	if viewerID == "" {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "viewer context missing")
	}
	return viewerID, nil
}

type addCartItemRequest struct {
	Product  cartProductPayload  `json:"product" validate:"required"`
	Variant  *cartVariantPayload `json:"variant,omitempty"`
	Quantity int                 `json:"quantity"`
}

type cartProductPayload struct {
	ID        string `json:"id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Slug      string `json:"slug"`
	Brand     string `json:"brand"`
	PriceKobo int    `json:"price_kobo" validate:"min=0"`
	ImageURL  string `json:"image_url"`
}

type cartVariantPayload struct {
	ID        string `json:"id" validate:"required"`
	Label     string `json:"label"`
	PriceKobo int    `json:"price_kobo" validate:"min=0"`
}

// Quantity carries no validation tag: the store clamps any value below one,
// so zero and negatives take the same path.
type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (p cartProductPayload) toSnapshot() types.ProductSnapshot {
	return types.ProductSnapshot{
		ID:        p.ID,
		Name:      p.Name,
		Slug:      p.Slug,
		Brand:     p.Brand,
		PriceKobo: p.PriceKobo,
		ImageURL:  p.ImageURL,
	}
}

func (p *cartVariantPayload) toSnapshot() *types.VariantSnapshot {
	if p == nil {
		return nil
	}
	return &types.VariantSnapshot{
		ID:        p.ID,
		Label:     p.Label,
		PriceKobo: p.PriceKobo,
	}
}

type cartResponse struct {
	Lines        []cartsvc.Line `json:"lines"`
	SubtotalKobo int            `json:"subtotal_kobo"`
	Count        int            `json:"count"`
}

func newCartResponse(state cartsvc.State) cartResponse {
	lines := state.Lines
	if lines == nil {
		lines = []cartsvc.Line{}
	}
	return cartResponse{
		Lines:        lines,
		SubtotalKobo: state.SubtotalKobo(),
		Count:        len(lines),
	}
}
