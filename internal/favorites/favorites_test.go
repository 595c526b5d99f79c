package favorites

import (
	"context"
	"testing"

	"github.com/simkidd/dwec-winery-storefront/internal/session"
	"github.com/simkidd/dwec-winery-storefront/pkg/enums"
	pkgerrors "github.com/simkidd/dwec-winery-storefront/pkg/errors"
	"github.com/simkidd/dwec-winery-storefront/pkg/types"
	"github.com/simkidd/dwec-winery-storefront/pkg/upstream"
)

type stubAPI struct {
	fetchCalls  int
	toggleCalls int
	products    []upstream.Product
	fetchErr    error
	toggleErr   error
	toggledID   string
}

func (s *stubAPI) Favorites(ctx context.Context, cred upstream.Credentials) ([]upstream.Product, error) {
	s.fetchCalls++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.products, nil
}

func (s *stubAPI) ToggleFavorite(ctx context.Context, cred upstream.Credentials, productID string) error {
	s.toggleCalls++
	s.toggledID = productID
	return s.toggleErr
}

func authenticated() session.Session {
	return session.Session{
		Status: enums.SessionAuthenticated,
		User:   &types.UserProfile{ID: "u1", Email: "u1@example.com"},
	}
}

func newSynchronizer(t *testing.T, api API) *Synchronizer {
	t.Helper()
	sync, err := NewSynchronizer(api, nil, nil)
	if err != nil {
		t.Fatalf("new synchronizer: %v", err)
	}
	return sync
}

func TestFetchRequiresAuthentication(t *testing.T) {
	api := &stubAPI{}
	sync := newSynchronizer(t, api)

	_, err := sync.Fetch(context.Background(), session.Anonymous(), upstream.Anonymous("viewer-1"))
	if !pkgerrors.IsCode(err, pkgerrors.CodeAuthRequired) {
		t.Fatalf("expected AUTH_REQUIRED, got %v", err)
	}
	if api.fetchCalls != 0 {
		t.Fatalf("anonymous fetch must not hit upstream, got %d calls", api.fetchCalls)
	}
}

func TestToggleRequiresAuthentication(t *testing.T) {
	api := &stubAPI{}
	sync := newSynchronizer(t, api)

	_, err := sync.Toggle(context.Background(), session.Anonymous(), upstream.Anonymous("viewer-1"), "p1")
	if !pkgerrors.IsCode(err, pkgerrors.CodeAuthRequired) {
		t.Fatalf("expected AUTH_REQUIRED, got %v", err)
	}
	if api.toggleCalls != 0 || api.fetchCalls != 0 {
		t.Fatalf("anonymous toggle must not hit upstream")
	}
}

func TestToggleRefetchesList(t *testing.T) {
	api := &stubAPI{products: []upstream.Product{{ID: "p1", Name: "Merlot", Price: 1500}}}
	sync := newSynchronizer(t, api)

	list, err := sync.Toggle(context.Background(), authenticated(), upstream.Credentials{Token: "tok"}, "p1")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if api.toggleCalls != 1 || api.toggledID != "p1" {
		t.Fatalf("expected one toggle for p1, got %d for %q", api.toggleCalls, api.toggledID)
	}
	if api.fetchCalls != 1 {
		t.Fatalf("toggle must refetch the list, got %d fetches", api.fetchCalls)
	}
	if len(list) != 1 || list[0].ID != "p1" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestToggleFailureSkipsRefetch(t *testing.T) {
	api := &stubAPI{toggleErr: pkgerrors.New(pkgerrors.CodeUpstream, "")}
	sync := newSynchronizer(t, api)

	_, err := sync.Toggle(context.Background(), authenticated(), upstream.Credentials{Token: "tok"}, "p1")
	if !pkgerrors.IsCode(err, pkgerrors.CodeUpstream) {
		t.Fatalf("expected UPSTREAM_ERROR, got %v", err)
	}
	if api.fetchCalls != 0 {
		t.Fatalf("failed toggle must not refetch, got %d fetches", api.fetchCalls)
	}
}

func TestToggleRejectsEmptyProductID(t *testing.T) {
	api := &stubAPI{}
	sync := newSynchronizer(t, api)

	_, err := sync.Toggle(context.Background(), authenticated(), upstream.Credentials{Token: "tok"}, "")
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION error, got %v", err)
	}
}

func TestFetchMapsSnapshots(t *testing.T) {
	api := &stubAPI{products: []upstream.Product{
		{ID: "p1", Name: "Merlot", Price: 1500},
		{ID: "p2", Name: "Shiraz", Price: 2000},
	}}
	sync := newSynchronizer(t, api)

	list, err := sync.Fetch(context.Background(), authenticated(), upstream.Credentials{Token: "tok"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected two favorites, got %d", len(list))
	}
	if list[0].PriceKobo != 150000 {
		t.Fatalf("expected naira price converted to kobo, got %d", list[0].PriceKobo)
	}
}
