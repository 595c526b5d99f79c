package catalog

import (
	"context"
	"encoding/json"
	"time"

	pkgerrors "github.com/simkidd/dwec-winery-storefront/pkg/errors"
	"github.com/simkidd/dwec-winery-storefront/pkg/logger"
	"github.com/simkidd/dwec-winery-storefront/pkg/upstream"
)

// API is the slice of the upstream client the catalog needs.
type API interface {
	Products(ctx context.Context, cred upstream.Credentials, q upstream.ProductQuery) (*upstream.ProductPage, error)
	ProductBySlug(ctx context.Context, cred upstream.Credentials, slug string) (*upstream.Product, error)
	Categories(ctx context.Context, cred upstream.Credentials) ([]upstream.Category, error)
	Ads(ctx context.Context, cred upstream.Credentials) ([]upstream.Ad, error)
}

// Cache is the redis surface used for read-through caching.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CatalogKey(resource string) string
}

// Service reads the catalog through a short-lived cache. Filtered product
// listings bypass the cache; their query space is unbounded.
type Service struct {
	api   API
	cache Cache
	ttl   time.Duration
	logg  *logger.Logger
}

// NewService builds the catalog service. cache may be nil.
func NewService(api API, cache Cache, ttl time.Duration, logg *logger.Logger) (*Service, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog service requires an upstream api")
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Service{api: api, cache: cache, ttl: ttl, logg: logg}, nil
}

// Products lists catalog entries, passing filters straight through.
func (s *Service) Products(ctx context.Context, cred upstream.Credentials, q upstream.ProductQuery) (*upstream.ProductPage, error) {
	return s.api.Products(ctx, cred, q)
}

// ProductBySlug fetches a single product, cached per slug.
func (s *Service) ProductBySlug(ctx context.Context, cred upstream.Credentials, slug string) (*upstream.Product, error) {
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product slug is required")
	}

	key := ""
	if s.cache != nil {
		key = s.cache.CatalogKey("product:" + slug)
	}
	var product upstream.Product
	if s.readCached(ctx, key, &product) {
		return &product, nil
	}

	fetched, err := s.api.ProductBySlug(ctx, cred, slug)
	if err != nil {
		return nil, err
	}
	s.writeCached(ctx, key, fetched)
	return fetched, nil
}

// Categories lists catalog groupings, cached as one blob.
func (s *Service) Categories(ctx context.Context, cred upstream.Credentials) ([]upstream.Category, error) {
	key := ""
	if s.cache != nil {
		key = s.cache.CatalogKey("categories")
	}
	var categories []upstream.Category
	if s.readCached(ctx, key, &categories) {
		return categories, nil
	}

	fetched, err := s.api.Categories(ctx, cred)
	if err != nil {
		return nil, err
	}
	s.writeCached(ctx, key, fetched)
	return fetched, nil
}

// Ads lists promotional placements, cached as one blob.
func (s *Service) Ads(ctx context.Context, cred upstream.Credentials) ([]upstream.Ad, error) {
	key := ""
	if s.cache != nil {
		key = s.cache.CatalogKey("ads")
	}
	var ads []upstream.Ad
	if s.readCached(ctx, key, &ads) {
		return ads, nil
	}

	fetched, err := s.api.Ads(ctx, cred)
	if err != nil {
		return nil, err
	}
	s.writeCached(ctx, key, fetched)
	return fetched, nil
}

func (s *Service) readCached(ctx context.Context, key string, out any) bool {
	if s.cache == nil || key == "" {
		return false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "catalog.cache held undecodable payload")
		}
		return false
	}
	return true
}

func (s *Service) writeCached(ctx context.Context, key string, value any) {
	if s.cache == nil || key == "" {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "catalog.cache write failed")
	}
}
