package cart

import (
	"context"
	"sync"

	"github.com/simkidd/dwec-winery-storefront/pkg/logger"
	"github.com/simkidd/dwec-winery-storefront/pkg/metrics"
	"github.com/simkidd/dwec-winery-storefront/pkg/types"
)

// Service is the cart surface consumed by the HTTP layer. Every mutation
// routes through a named operation; callers only ever see snapshots.
type Service interface {
	Get(ctx context.Context, viewerID string) (State, error)
	AddItem(ctx context.Context, viewerID string, product types.ProductSnapshot, variant *types.VariantSnapshot, quantity int) (State, error)
	RemoveItem(ctx context.Context, viewerID, lineID string) (State, error)
	SetQuantity(ctx context.Context, viewerID, lineID string, quantity int) (State, error)
	Increment(ctx context.Context, viewerID, lineID string) (State, error)
	Decrement(ctx context.Context, viewerID, lineID string) (State, error)
	Clear(ctx context.Context, viewerID string) (State, error)
}

// Repository persists cart snapshots; durable storage is a collaborator of
// the store, never a concern of the pure state transitions.
type Repository interface {
	Load(ctx context.Context, viewerID string) (*State, error)
	Save(ctx context.Context, viewerID string, state State) error
	Delete(ctx context.Context, viewerID string) error
}

// Store owns every viewer's cart state behind a single writer lock.
type Store struct {
	mu     sync.Mutex
	carts  map[string]*State
	repo   Repository
	logg   *logger.Logger
	metric *metrics.StorefrontMetrics
}

// NewStore builds the process-wide cart store.
func NewStore(repo Repository, logg *logger.Logger, m *metrics.StorefrontMetrics) *Store {
	return &Store{
		carts:  make(map[string]*State),
		repo:   repo,
		logg:   logg,
		metric: m,
	}
}

// Get returns the viewer's current cart, loading the persisted snapshot on
// first access.
func (s *Store) Get(ctx context.Context, viewerID string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.stateLocked(ctx, viewerID)
	if err != nil {
		return State{}, err
	}
	return state.Snapshot(), nil
}

// AddItem accumulates quantity for the (product, variant) identity.
func (s *Store) AddItem(ctx context.Context, viewerID string, product types.ProductSnapshot, variant *types.VariantSnapshot, quantity int) (State, error) {
	return s.mutate(ctx, viewerID, "add_item", func(state *State) bool {
		state.AddItem(product, variant, quantity)
		return true
	})
}

// RemoveItem deletes a line; a missing identity is a logged no-op.
func (s *Store) RemoveItem(ctx context.Context, viewerID, lineID string) (State, error) {
	return s.mutate(ctx, viewerID, "remove_item", func(state *State) bool {
		return state.RemoveItem(lineID)
	})
}

// SetQuantity clamps to a minimum of 1; a missing identity is a logged no-op.
func (s *Store) SetQuantity(ctx context.Context, viewerID, lineID string, quantity int) (State, error) {
	return s.mutate(ctx, viewerID, "set_quantity", func(state *State) bool {
		return state.SetQuantity(lineID, quantity)
	})
}

// Increment raises a line's quantity by one.
func (s *Store) Increment(ctx context.Context, viewerID, lineID string) (State, error) {
	return s.mutate(ctx, viewerID, "increment", func(state *State) bool {
		return state.Increment(lineID)
	})
}

// Decrement lowers a line's quantity by one, never below 1.
func (s *Store) Decrement(ctx context.Context, viewerID, lineID string) (State, error) {
	return s.mutate(ctx, viewerID, "decrement", func(state *State) bool {
		return state.Decrement(lineID)
	})
}

// Clear empties the viewer's cart and drops the persisted snapshot.
func (s *Store) Clear(ctx context.Context, viewerID string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.stateLocked(ctx, viewerID)
	if err != nil {
		return State{}, err
	}
	state.Clear()

	if s.repo != nil {
		if err := s.repo.Delete(ctx, viewerID); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithViewerID(ctx, viewerID), "cart.snapshot delete failed")
		}
	}
	return state.Snapshot(), nil
}

func (s *Store) mutate(ctx context.Context, viewerID, operation string, fn func(*State) bool) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.stateLocked(ctx, viewerID)
	if err != nil {
		return State{}, err
	}

	if !fn(state) {
		// Missing identity degrades to a no-op, but it is worth watching:
		// it usually means the client holds desynchronized line ids.
		s.metric.IncCartNoop(operation)
		if s.logg != nil {
			fields := map[string]any{"operation": operation, "viewer_id": viewerID}
			s.logg.Warn(s.logg.WithFields(ctx, fields), "cart.operation targeted missing line")
		}
		return state.Snapshot(), nil
	}

	s.persistLocked(ctx, viewerID, state)
	return state.Snapshot(), nil
}

// stateLocked returns the in-memory state for the viewer, falling back to the
// persisted snapshot. Callers must hold s.mu.
func (s *Store) stateLocked(ctx context.Context, viewerID string) (*State, error) {
	if state, ok := s.carts[viewerID]; ok {
		return state, nil
	}

	state := &State{}
	if s.repo != nil {
		loaded, err := s.repo.Load(ctx, viewerID)
		if err != nil {
			return nil, err
		}
		if loaded != nil {
			state = loaded
		}
	}
	s.carts[viewerID] = state
	return state, nil
}

// persistLocked saves the snapshot best-effort; cart operations themselves
// never fail on persistence (the in-memory state stays authoritative).
func (s *Store) persistLocked(ctx context.Context, viewerID string, state *State) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Save(ctx, viewerID, state.Snapshot()); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithViewerID(ctx, viewerID), "cart.snapshot save failed", err)
	}
}
