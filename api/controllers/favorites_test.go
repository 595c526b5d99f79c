package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/simkidd/dwec-winery-storefront/api/middleware"
	favoritesvc "github.com/simkidd/dwec-winery-storefront/internal/favorites"
	sessionsvc "github.com/simkidd/dwec-winery-storefront/internal/session"
	"github.com/simkidd/dwec-winery-storefront/pkg/enums"
	"github.com/simkidd/dwec-winery-storefront/pkg/types"
	"github.com/simkidd/dwec-winery-storefront/pkg/upstream"
)

type stubFavoritesAPI struct {
	products  []upstream.Product
	toggleErr error
}

func (s *stubFavoritesAPI) Favorites(ctx context.Context, cred upstream.Credentials) ([]upstream.Product, error) {
	return s.products, nil
}

func (s *stubFavoritesAPI) ToggleFavorite(ctx context.Context, cred upstream.Credentials, productID string) error {
	return s.toggleErr
}

func newFavoritesHandler(t *testing.T, api favoritesvc.API) *favoritesvc.Synchronizer {
	t.Helper()
	svc, err := favoritesvc.NewSynchronizer(api, nil, nil)
	if err != nil {
		t.Fatalf("new synchronizer: %v", err)
	}
	return svc
}

func withAuthenticatedSession(req *http.Request) *http.Request {
	sess := sessionsvc.Session{
		Status: enums.SessionAuthenticated,
		User:   &types.UserProfile{ID: "u1", Email: "u1@example.com"},
	}
	ctx := middleware.WithSession(req.Context(), sess)
	ctx = middleware.WithToken(ctx, "tok")
	return req.WithContext(ctx)
}

func TestFavoritesListRequiresLogin(t *testing.T) {
	handler := FavoritesList(newFavoritesHandler(t, &stubFavoritesAPI{}), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/favourites", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != "AUTH_REQUIRED" {
		t.Fatalf("expected AUTH_REQUIRED, got %q", envelope.Error.Code)
	}
}

func TestFavoritesListSuccess(t *testing.T) {
	api := &stubFavoritesAPI{products: []upstream.Product{{ID: "p1", Name: "Merlot", Price: 1500}}}
	handler := FavoritesList(newFavoritesHandler(t, api), nil)

	req := withAuthenticatedSession(httptest.NewRequest(http.MethodGet, "/api/v1/favourites", nil))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data favoritesResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Count != 1 || envelope.Data.Items[0].ID != "p1" {
		t.Fatalf("unexpected favorites %+v", envelope.Data)
	}
}

func TestFavoritesToggleRequiresLogin(t *testing.T) {
	handler := FavoritesToggle(newFavoritesHandler(t, &stubFavoritesAPI{}), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/favourites/toggle", strings.NewReader(`{"product_id":"p1"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestFavoritesToggleRejectsMissingProductID(t *testing.T) {
	handler := FavoritesToggle(newFavoritesHandler(t, &stubFavoritesAPI{}), nil)

	req := withAuthenticatedSession(httptest.NewRequest(http.MethodPost, "/api/v1/favourites/toggle", strings.NewReader(`{}`)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
