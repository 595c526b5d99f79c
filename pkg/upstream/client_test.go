package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/simkidd/dwec-winery-storefront/pkg/config"
	pkgerrors "github.com/simkidd/dwec-winery-storefront/pkg/errors"
	"github.com/simkidd/dwec-winery-storefront/pkg/logger"
)

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test"})
	client, err := NewClient(context.Background(), config.UpstreamConfig{
		BaseURL:        serverURL,
		Timeout:        2 * time.Second,
		RetryAttempts:  2,
		RetryBaseDelay: time.Millisecond,
	}, logg, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestClientForwardsIdentityHeaders(t *testing.T) {
	var gotAuth, gotViewer string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotViewer = r.Header.Get("X-Viewer-Id")
		json.NewEncoder(w).Encode([]Category{{ID: "c1", Name: "Red"}})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	cred := Credentials{Token: "tok-1", ViewerID: "viewer-1"}
	categories, err := client.Categories(context.Background(), cred)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(categories) != 1 || categories[0].ID != "c1" {
		t.Fatalf("unexpected categories %+v", categories)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	if gotViewer != "viewer-1" {
		t.Fatalf("expected viewer header, got %q", gotViewer)
	}
}

func TestClientOmitsBearerWhenAnonymous(t *testing.T) {
	var sawAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization") != ""
		json.NewEncoder(w).Encode([]Ad{})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if _, err := client.Ads(context.Background(), Anonymous("viewer-2")); err != nil {
		t.Fatalf("ads: %v", err)
	}
	if sawAuth {
		t.Fatalf("anonymous request must not carry an Authorization header")
	}
}

func TestClientNormalizesUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "token expired"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Favorites(context.Background(), Credentials{Token: "dead", ViewerID: "v"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeAuthError) {
		t.Fatalf("expected AUTH_ERROR, got %v", err)
	}
	if typed := pkgerrors.As(err); typed.Message() != "token expired" {
		t.Fatalf("expected upstream message passthrough, got %q", typed.Message())
	}
}

func TestClientNormalizesServerErrorWithMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "db down"}})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	err := client.ToggleFavorite(context.Background(), Credentials{Token: "t", ViewerID: "v"}, "p1")
	if !pkgerrors.IsCode(err, pkgerrors.CodeUpstream) {
		t.Fatalf("expected UPSTREAM_ERROR, got %v", err)
	}
	if typed := pkgerrors.As(err); typed.Message() != "db down" {
		t.Fatalf("expected nested message passthrough, got %q", typed.Message())
	}
}

func TestClientNormalizesNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Categories(context.Background(), Anonymous("v"))
	if !pkgerrors.IsCode(err, pkgerrors.CodeNetwork) {
		t.Fatalf("expected NETWORK_ERROR, got %v", err)
	}
}

func TestClientRetriesIdempotentReads(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode([]Category{{ID: "c1"}})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if _, err := client.Categories(context.Background(), Anonymous("v")); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestClientDoesNotRetryMutations(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if err := client.ToggleFavorite(context.Background(), Credentials{Token: "t", ViewerID: "v"}, "p1"); err == nil {
		t.Fatalf("expected mutation failure")
	}
	if calls.Load() != 1 {
		t.Fatalf("mutations must not retry, got %d calls", calls.Load())
	}
}

func TestPaymentValidation(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:0")
	if _, err := client.InitializePaystackPayment(context.Background(), Credentials{}, PaymentInitRequest{AmountKobo: 0}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := client.VerifyPaystackPayment(context.Background(), Credentials{}, ""); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
