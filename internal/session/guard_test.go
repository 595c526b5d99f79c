package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/simkidd/dwec-winery-storefront/pkg/config"
	pkgerrors "github.com/simkidd/dwec-winery-storefront/pkg/errors"
	"github.com/simkidd/dwec-winery-storefront/pkg/types"
	"github.com/simkidd/dwec-winery-storefront/pkg/upstream"
)

type stubIdentityAPI struct {
	calls   int
	profile *types.UserProfile
	err     error
}

func (s *stubIdentityAPI) Me(ctx context.Context, cred upstream.Credentials) (*types.UserProfile, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.profile, nil
}

type memoryCache struct {
	values map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]string{}}
}

func (m *memoryCache) Get(ctx context.Context, key string) (string, error) {
	return m.values[key], nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	switch v := value.(type) {
	case []byte:
		m.values[key] = string(v)
	case string:
		m.values[key] = v
	}
	return nil
}

func (m *memoryCache) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *memoryCache) SessionKey(fingerprint string) string {
	return "dwec:session:" + fingerprint
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func newGuard(t *testing.T, api IdentityAPI, cache Cache) *Guard {
	t.Helper()
	guard, err := NewGuard(GuardOptions{
		JWT:   config.JWTConfig{ExpiryLeeway: time.Minute},
		API:   api,
		Cache: cache,
	})
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}
	return guard
}

func TestResolveWithoutTokenIsAnonymous(t *testing.T) {
	api := &stubIdentityAPI{}
	guard := newGuard(t, api, nil)

	sess, err := guard.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if sess.Authenticated() {
		t.Fatalf("expected anonymous session")
	}
	if api.calls != 0 {
		t.Fatalf("anonymous resolution must not call upstream, got %d calls", api.calls)
	}
}

func TestResolveAuthenticates(t *testing.T) {
	api := &stubIdentityAPI{profile: &types.UserProfile{ID: "u1", Email: "u1@example.com"}}
	guard := newGuard(t, api, nil)

	sess, err := guard.Resolve(context.Background(), signedToken(t, time.Now().Add(time.Hour)))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !sess.Authenticated() {
		t.Fatalf("expected authenticated session, got %q", sess.Status)
	}
	if sess.User.ID != "u1" {
		t.Fatalf("unexpected user %+v", sess.User)
	}
	if api.calls != 1 {
		t.Fatalf("expected one upstream call, got %d", api.calls)
	}
}

func TestResolveUsesCachedProfile(t *testing.T) {
	api := &stubIdentityAPI{profile: &types.UserProfile{ID: "u1", Email: "u1@example.com"}}
	guard := newGuard(t, api, newMemoryCache())
	token := signedToken(t, time.Now().Add(time.Hour))

	if _, err := guard.Resolve(context.Background(), token); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	sess, err := guard.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if !sess.Authenticated() {
		t.Fatalf("expected authenticated session")
	}
	if api.calls != 1 {
		t.Fatalf("cached token must not re-hit upstream, got %d calls", api.calls)
	}
}

func TestResolveExpiredTokenSkipsUpstream(t *testing.T) {
	api := &stubIdentityAPI{profile: &types.UserProfile{ID: "u1"}}
	guard := newGuard(t, api, nil)

	sess, err := guard.Resolve(context.Background(), signedToken(t, time.Now().Add(-time.Hour)))
	if !pkgerrors.IsCode(err, pkgerrors.CodeAuthError) {
		t.Fatalf("expected AUTH_ERROR, got %v", err)
	}
	if sess.Authenticated() {
		t.Fatalf("expected anonymous fallback")
	}
	if api.calls != 0 {
		t.Fatalf("locally expired token must not call upstream, got %d calls", api.calls)
	}
}

func TestResolveUpstreamRejectionFallsBackAnonymous(t *testing.T) {
	api := &stubIdentityAPI{err: pkgerrors.New(pkgerrors.CodeAuthError, "invalid token")}
	guard := newGuard(t, api, nil)

	sess, err := guard.Resolve(context.Background(), signedToken(t, time.Now().Add(time.Hour)))
	if !pkgerrors.IsCode(err, pkgerrors.CodeAuthError) {
		t.Fatalf("expected AUTH_ERROR, got %v", err)
	}
	if sess.Status != Anonymous().Status {
		t.Fatalf("expected anonymous fallback, got %q", sess.Status)
	}
}

func TestLogoutEvictsCachedResolution(t *testing.T) {
	api := &stubIdentityAPI{profile: &types.UserProfile{ID: "u1"}}
	cache := newMemoryCache()
	guard := newGuard(t, api, cache)
	token := signedToken(t, time.Now().Add(time.Hour))
	ctx := context.Background()

	if _, err := guard.Resolve(ctx, token); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	guard.Logout(ctx, token)

	if _, err := guard.Resolve(ctx, token); err != nil {
		t.Fatalf("resolve after logout: %v", err)
	}
	if api.calls != 2 {
		t.Fatalf("logout must force re-resolution, got %d calls", api.calls)
	}
}
