package favorites

import (
	"context"

	"github.com/simkidd/dwec-winery-storefront/internal/session"
	pkgerrors "github.com/simkidd/dwec-winery-storefront/pkg/errors"
	"github.com/simkidd/dwec-winery-storefront/pkg/logger"
	"github.com/simkidd/dwec-winery-storefront/pkg/types"
	"github.com/simkidd/dwec-winery-storefront/pkg/upstream"
)

// API is the slice of the upstream client the synchronizer needs.
type API interface {
	Favorites(ctx context.Context, cred upstream.Credentials) ([]upstream.Product, error)
	ToggleFavorite(ctx context.Context, cred upstream.Credentials, productID string) error
}

// Publisher emits favorite activity to interested consumers.
type Publisher interface {
	FavoriteToggled(ctx context.Context, userID, productID string)
}

// Synchronizer mirrors the server-side favorites list. The upstream API is
// the source of truth; every successful toggle refetches the full list rather
// than patching it locally.
type Synchronizer struct {
	api    API
	events Publisher
	logg   *logger.Logger
}

// NewSynchronizer builds the favorites service. events may be nil.
func NewSynchronizer(api API, events Publisher, logg *logger.Logger) (*Synchronizer, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "favorites synchronizer requires an upstream api")
	}
	return &Synchronizer{api: api, events: events, logg: logg}, nil
}

// Fetch returns the authenticated user's favorites. Anonymous sessions are
// rejected before any network traffic.
func (s *Synchronizer) Fetch(ctx context.Context, sess session.Session, cred upstream.Credentials) ([]types.ProductSnapshot, error) {
	if !sess.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeAuthRequired, "favorites require an authenticated session")
	}
	products, err := s.api.Favorites(ctx, cred)
	if err != nil {
		return nil, err
	}
	return snapshots(products), nil
}

// Toggle flips the favorite flag server-side and returns the refetched list.
// Anonymous sessions are rejected before any network traffic.
func (s *Synchronizer) Toggle(ctx context.Context, sess session.Session, cred upstream.Credentials, productID string) ([]types.ProductSnapshot, error) {
	if !sess.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeAuthRequired, "favorites require an authenticated session")
	}
	if productID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	if err := s.api.ToggleFavorite(ctx, cred, productID); err != nil {
		return nil, err
	}
	if s.events != nil {
		s.events.FavoriteToggled(ctx, sess.User.ID, productID)
	}

	products, err := s.api.Favorites(ctx, cred)
	if err != nil {
		// The toggle itself landed; only the refresh is stale.
		if s.logg != nil {
			s.logg.Warn(s.logg.WithUserID(ctx, sess.User.ID), "favorites.refetch after toggle failed")
		}
		return nil, err
	}
	return snapshots(products), nil
}

func snapshots(products []upstream.Product) []types.ProductSnapshot {
	out := make([]types.ProductSnapshot, 0, len(products))
	for _, product := range products {
		out = append(out, product.Snapshot())
	}
	return out
}
