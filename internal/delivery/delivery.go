package delivery

import (
	"context"
	"encoding/json"
	"time"

	pkgerrors "github.com/simkidd/dwec-winery-storefront/pkg/errors"
	"github.com/simkidd/dwec-winery-storefront/pkg/logger"
	"github.com/simkidd/dwec-winery-storefront/pkg/types"
	"github.com/simkidd/dwec-winery-storefront/pkg/upstream"
)

// API is the slice of the upstream client the service needs.
type API interface {
	DeliveryAreas(ctx context.Context, cred upstream.Credentials) ([]types.DeliveryArea, error)
}

// Cache is the redis surface used to keep the area list warm.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	DeliveryAreasKey() string
}

// Service serves the delivery-area list and resolves area fees for checkout.
// The list changes rarely, so reads go through a short-lived redis cache.
type Service struct {
	api   API
	cache Cache
	ttl   time.Duration
	logg  *logger.Logger
}

// NewService builds the delivery service. cache may be nil.
func NewService(api API, cache Cache, ttl time.Duration, logg *logger.Logger) (*Service, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "delivery service requires an upstream api")
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Service{api: api, cache: cache, ttl: ttl, logg: logg}, nil
}

// Areas returns every serviceable delivery area.
func (s *Service) Areas(ctx context.Context, cred upstream.Credentials) ([]types.DeliveryArea, error) {
	if areas, ok := s.cachedAreas(ctx); ok {
		return areas, nil
	}

	areas, err := s.api.DeliveryAreas(ctx, cred)
	if err != nil {
		return nil, err
	}
	s.rememberAreas(ctx, areas)
	return areas, nil
}

// AreaByID resolves one area, including its delivery fee.
func (s *Service) AreaByID(ctx context.Context, cred upstream.Credentials, areaID string) (*types.DeliveryArea, error) {
	if areaID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery area id is required")
	}
	areas, err := s.Areas(ctx, cred)
	if err != nil {
		return nil, err
	}
	for _, area := range areas {
		if area.ID == areaID {
			found := area
			return &found, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery area not found")
}

func (s *Service) cachedAreas(ctx context.Context) ([]types.DeliveryArea, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, s.cache.DeliveryAreasKey())
	if err != nil || raw == "" {
		return nil, false
	}
	var areas []types.DeliveryArea
	if err := json.Unmarshal([]byte(raw), &areas); err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "delivery.cache held undecodable areas")
		}
		return nil, false
	}
	return areas, true
}

func (s *Service) rememberAreas(ctx context.Context, areas []types.DeliveryArea) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(areas)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.DeliveryAreasKey(), payload, s.ttl); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "delivery.cache write failed")
	}
}
