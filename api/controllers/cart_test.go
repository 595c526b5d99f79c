package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/simkidd/dwec-winery-storefront/api/middleware"
	cartsvc "github.com/simkidd/dwec-winery-storefront/internal/cart"
	"github.com/simkidd/dwec-winery-storefront/pkg/types"
)

type stubCartService struct {
	state cartsvc.State
	err   error
}

func (s *stubCartService) Get(ctx context.Context, viewerID string) (cartsvc.State, error) {
	return s.state, s.err
}

func (s *stubCartService) AddItem(ctx context.Context, viewerID string, product types.ProductSnapshot, variant *types.VariantSnapshot, quantity int) (cartsvc.State, error) {
	if s.err != nil {
		return cartsvc.State{}, s.err
	}
	s.state.AddItem(product, variant, quantity)
	return s.state, nil
}

func (s *stubCartService) RemoveItem(ctx context.Context, viewerID, lineID string) (cartsvc.State, error) {
	s.state.RemoveItem(lineID)
	return s.state, s.err
}

func (s *stubCartService) SetQuantity(ctx context.Context, viewerID, lineID string, quantity int) (cartsvc.State, error) {
	s.state.SetQuantity(lineID, quantity)
	return s.state, s.err
}

func (s *stubCartService) Increment(ctx context.Context, viewerID, lineID string) (cartsvc.State, error) {
	s.state.Increment(lineID)
	return s.state, s.err
}

func (s *stubCartService) Decrement(ctx context.Context, viewerID, lineID string) (cartsvc.State, error) {
	s.state.Decrement(lineID)
	return s.state, s.err
}

func (s *stubCartService) Clear(ctx context.Context, viewerID string) (cartsvc.State, error) {
	s.state.Clear()
	return s.state, s.err
}

func withViewer(req *http.Request) *http.Request {
	return req.WithContext(middleware.WithViewerID(req.Context(), "viewer-1"))
}

func TestCartGetSuccess(t *testing.T) {
	svc := &stubCartService{}
	svc.state.AddItem(types.ProductSnapshot{ID: "p1", Name: "Merlot", PriceKobo: 150000}, nil, 2)
	handler := CartGet(svc, nil)

	req := withViewer(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data cartResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Count != 1 || envelope.Data.SubtotalKobo != 300000 {
		t.Fatalf("unexpected cart %+v", envelope.Data)
	}
}

func TestCartGetMissingViewerContext(t *testing.T) {
	handler := CartGet(&stubCartService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

func TestCartAddItemSuccess(t *testing.T) {
	svc := &stubCartService{}
	handler := CartAddItem(svc, nil)

	body := `{"product":{"id":"p1","name":"Merlot","price_kobo":150000},"quantity":2}`
	req := withViewer(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.state.Lines) != 1 || svc.state.Lines[0].Quantity != 2 {
		t.Fatalf("unexpected state %+v", svc.state)
	}
}

func TestCartAddItemRejectsMissingProduct(t *testing.T) {
	handler := CartAddItem(&stubCartService{}, nil)

	req := withViewer(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"quantity":1}`)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartAddItemRejectsMalformedBody(t *testing.T) {
	handler := CartAddItem(&stubCartService{}, nil)

	req := withViewer(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{not json`)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func withLineID(req *http.Request, lineID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("lineID", lineID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCartSetQuantityZeroClampsToOne(t *testing.T) {
	svc := &stubCartService{}
	svc.state.AddItem(types.ProductSnapshot{ID: "p1", PriceKobo: 1000}, nil, 3)
	handler := CartSetQuantity(svc, nil)

	body := `{"quantity":0}`
	req := withViewer(withLineID(httptest.NewRequest(http.MethodPut, "/api/v1/cart/items/p1/quantity", strings.NewReader(body)), "p1"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.state.Lines[0].Quantity != 1 {
		t.Fatalf("expected quantity clamped to 1, got %d", svc.state.Lines[0].Quantity)
	}
}

func TestCartClearSuccess(t *testing.T) {
	svc := &stubCartService{}
	svc.state.AddItem(types.ProductSnapshot{ID: "p1", PriceKobo: 1000}, nil, 1)
	handler := CartClear(svc, nil)

	req := withViewer(httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !svc.state.IsEmpty() {
		t.Fatalf("expected cleared cart")
	}
}
