package orders

import (
	"context"

	"github.com/simkidd/dwec-winery-storefront/internal/session"
	pkgerrors "github.com/simkidd/dwec-winery-storefront/pkg/errors"
	"github.com/simkidd/dwec-winery-storefront/pkg/upstream"
)

// API is the slice of the upstream client order history needs.
type API interface {
	UserOrders(ctx context.Context, cred upstream.Credentials) ([]upstream.Order, error)
	OrderByID(ctx context.Context, cred upstream.Credentials, orderID string) (*upstream.Order, error)
}

// History serves the authenticated user's order history. The upstream API
// scopes results to the bearer token; this layer only enforces the login
// gate before any network traffic.
type History struct {
	api API
}

// NewHistory builds the order history service.
func NewHistory(api API) (*History, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order history requires an upstream api")
	}
	return &History{api: api}, nil
}

// List returns the user's orders, most recent first as served upstream.
func (h *History) List(ctx context.Context, sess session.Session, cred upstream.Credentials) ([]upstream.Order, error) {
	if !sess.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeAuthRequired, "order history requires an authenticated session")
	}
	return h.api.UserOrders(ctx, cred)
}

// Get returns one of the user's orders.
func (h *History) Get(ctx context.Context, sess session.Session, cred upstream.Credentials, orderID string) (*upstream.Order, error) {
	if !sess.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeAuthRequired, "order history requires an authenticated session")
	}
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	return h.api.OrderByID(ctx, cred, orderID)
}
