package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/niksmo/luxe-storefront/internal/core/domain"
	"github.com/niksmo/luxe-storefront/internal/core/port"
)

var (
	_ port.CartDispatcher      = (*CartStore)(nil)
	_ port.FavoritesDispatcher = (*FavoritesStore)(nil)
)

// A CartStore owns the shopper's cart. Dispatch is the only way to change
// it and dispatches are applied one at a time.
type CartStore struct {
	mu       sync.Mutex
	state    domain.CartState
	activity *ActivityQueue
	now      func() time.Time
}

func NewCartStore(activity *ActivityQueue) *CartStore {
	const op = "NewCartStore"

	if activity == nil {
		panic(fmt.Errorf("%s: activity queue is nil", op)) // develop mistake
	}
	return &CartStore{activity: activity, now: time.Now}
}

// Dispatch applies a and returns the resulting state.
//
// Actions rejected by [domain.CheckCartAction] leave the cart unchanged.
// Applied actions are enqueued in the order they were applied.
func (s *CartStore) Dispatch(
	_ context.Context, a domain.CartAction,
) (domain.CartState, error) {
	const op = "CartStore.Dispatch"

	if s == nil {
		panic(op + ": store is not initialized") // develop mistake
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := domain.CheckCartAction(s.state, a); err != nil {
		return s.state.Clone(), fmt.Errorf("%s: %w", op, err)
	}

	prev := s.state
	s.state = domain.ReduceCart(prev, a)
	next := s.state.Clone()

	if !next.Equal(prev) {
		s.activity.Enqueue(domain.NewCartActivity(a, next, s.now()))
	}
	return next, nil
}

func (s *CartStore) State() domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *CartStore) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ItemCount()
}

// A FavoritesStore owns the shopper's favorites set.
type FavoritesStore struct {
	mu       sync.Mutex
	state    domain.FavoritesState
	activity *ActivityQueue
	now      func() time.Time
}

func NewFavoritesStore(activity *ActivityQueue) *FavoritesStore {
	const op = "NewFavoritesStore"

	if activity == nil {
		panic(fmt.Errorf("%s: activity queue is nil", op)) // develop mistake
	}
	return &FavoritesStore{activity: activity, now: time.Now}
}

func (s *FavoritesStore) Dispatch(
	_ context.Context, a domain.FavoritesAction,
) (domain.FavoritesState, error) {
	const op = "FavoritesStore.Dispatch"

	if s == nil {
		panic(op + ": store is not initialized") // develop mistake
	}

	if a == nil {
		return s.State(), fmt.Errorf("%s: %w", op, domain.ErrInvalidAction)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	s.state = domain.ReduceFavorites(prev, a)
	next := s.state.Clone()

	if !next.Equal(prev) {
		s.activity.Enqueue(domain.NewFavoritesActivity(a, s.now()))
	}
	return next, nil
}

// Toggle removes p when it is a favorite and adds it otherwise. It reports
// whether p is a favorite afterwards.
func (s *FavoritesStore) Toggle(
	ctx context.Context, p domain.Product,
) (bool, error) {
	var a domain.FavoritesAction = domain.AddFavorite{Product: p}
	if s.Contains(p.Name) {
		a = domain.RemoveFavorite{Product: p}
	}

	next, err := s.Dispatch(ctx, a)
	if err != nil {
		return false, err
	}
	return next.Contains(p.Name), nil
}

func (s *FavoritesStore) Contains(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Contains(name)
}

func (s *FavoritesStore) State() domain.FavoritesState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}
