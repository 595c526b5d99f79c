package session

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"

	"github.com/simkidd/dwec-winery-storefront/pkg/auth"
	"github.com/simkidd/dwec-winery-storefront/pkg/config"
	"github.com/simkidd/dwec-winery-storefront/pkg/enums"
	pkgerrors "github.com/simkidd/dwec-winery-storefront/pkg/errors"
	"github.com/simkidd/dwec-winery-storefront/pkg/logger"
	"github.com/simkidd/dwec-winery-storefront/pkg/types"
	"github.com/simkidd/dwec-winery-storefront/pkg/upstream"
)

// Session is the resolved identity attached to a request.
type Session struct {
	Status enums.SessionStatus `json:"status"`
	User   *types.UserProfile  `json:"user,omitempty"`
}

// Authenticated reports whether the session carries a verified user.
func (s Session) Authenticated() bool {
	return s.Status == enums.SessionAuthenticated && s.User != nil
}

// Anonymous is the session every request starts from.
func Anonymous() Session {
	return Session{Status: enums.SessionAnonymous}
}

// IdentityAPI is the slice of the upstream client the guard needs.
type IdentityAPI interface {
	Me(ctx context.Context, cred upstream.Credentials) (*types.UserProfile, error)
}

// ProfileRepository durably mirrors resolved profiles.
type ProfileRepository interface {
	Upsert(ctx context.Context, profile types.UserProfile) error
}

// Cache is the redis surface used to memoize token resolutions.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SessionKey(fingerprint string) string
}

// Guard resolves bearer tokens to sessions. Concurrent requests holding the
// same token collapse into a single upstream who-am-i call.
type Guard struct {
	cfg      config.JWTConfig
	api      IdentityAPI
	cache    Cache
	cacheTTL time.Duration
	repo     ProfileRepository
	logg     *logger.Logger
	group    singleflight.Group
	now      func() time.Time
}

// GuardOptions wires the guard's collaborators. Cache and Repo are optional.
type GuardOptions struct {
	JWT      config.JWTConfig
	API      IdentityAPI
	Cache    Cache
	CacheTTL time.Duration
	Repo     ProfileRepository
	Logger   *logger.Logger
}

// NewGuard builds a session guard.
func NewGuard(opts GuardOptions) (*Guard, error) {
	if opts.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session guard requires an identity api")
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Guard{
		cfg:      opts.JWT,
		api:      opts.API,
		cache:    opts.Cache,
		cacheTTL: ttl,
		repo:     opts.Repo,
		logg:     opts.Logger,
		now:      time.Now,
	}, nil
}

// Resolve turns a raw bearer token into a session. An empty token resolves to
// an anonymous session without touching the network. A token the upstream
// rejects also resolves anonymous; only transport and upstream failures
// surface as errors, alongside the anonymous fallback the caller may keep.
func (g *Guard) Resolve(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Anonymous(), nil
	}

	if auth.ExpiredLocally(g.cfg, token, g.now()) {
		return Anonymous(), pkgerrors.New(pkgerrors.CodeAuthError, "session token has expired")
	}

	fingerprint := auth.Fingerprint(token)
	result, err, _ := g.group.Do(fingerprint, func() (any, error) {
		sess, resolveErr := g.resolveOnce(ctx, token, fingerprint)
		return sess, resolveErr
	})
	if err != nil {
		return Anonymous(), err
	}
	return result.(Session), nil
}

func (g *Guard) resolveOnce(ctx context.Context, token, fingerprint string) (Session, error) {
	if profile, ok := g.cached(ctx, fingerprint); ok {
		return Session{Status: enums.SessionAuthenticated, User: profile}, nil
	}

	profile, err := g.api.Me(ctx, upstream.Credentials{Token: token})
	if err != nil {
		return Anonymous(), err
	}

	g.remember(ctx, fingerprint, *profile)
	return Session{Status: enums.SessionAuthenticated, User: profile}, nil
}

// Logout discards the cached resolution for the token. The upstream API owns
// actual credential revocation.
func (g *Guard) Logout(ctx context.Context, token string) {
	if token == "" || g.cache == nil {
		return
	}
	key := g.cache.SessionKey(auth.Fingerprint(token))
	if err := g.cache.Del(ctx, key); err != nil && g.logg != nil {
		g.logg.Warn(ctx, "session.cache eviction failed")
	}
}

func (g *Guard) cached(ctx context.Context, fingerprint string) (*types.UserProfile, bool) {
	if g.cache == nil {
		return nil, false
	}
	raw, err := g.cache.Get(ctx, g.cache.SessionKey(fingerprint))
	if err != nil || raw == "" {
		return nil, false
	}
	var profile types.UserProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		if g.logg != nil {
			g.logg.Warn(ctx, "session.cache held undecodable profile")
		}
		return nil, false
	}
	return &profile, true
}

// remember is best-effort: a cold cache or a stale mirror only costs an extra
// upstream call on the next request.
func (g *Guard) remember(ctx context.Context, fingerprint string, profile types.UserProfile) {
	var errs error
	if g.cache != nil {
		payload, err := json.Marshal(profile)
		if err == nil {
			if err := g.cache.Set(ctx, g.cache.SessionKey(fingerprint), payload, g.cacheTTL); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
	}
	if g.repo != nil {
		if err := g.repo.Upsert(ctx, profile); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if errs != nil && g.logg != nil {
		g.logg.Error(g.logg.WithUserID(ctx, profile.ID), "session.profile remember failed", errs)
	}
}
