package domain

import "slices"

// FavoritesState is a set of products keyed by name, in insertion order.
type FavoritesState struct {
	Items []Product
}

func (s FavoritesState) Contains(name string) bool {
	return slices.ContainsFunc(s.Items, func(p Product) bool {
		return p.Name == name
	})
}

func (s FavoritesState) Equal(o FavoritesState) bool {
	return slices.Equal(s.Items, o.Items)
}

func (s FavoritesState) Clone() FavoritesState {
	return FavoritesState{Items: slices.Clone(s.Items)}
}

// FavoritesAction is one of AddFavorite or RemoveFavorite.
type FavoritesAction interface {
	favoritesAction()
	Kind() ActivityKind
}

type (
	AddFavorite struct {
		Product Product
	}

	RemoveFavorite struct {
		Product Product
	}
)

func (AddFavorite) favoritesAction()    {}
func (RemoveFavorite) favoritesAction() {}

func (AddFavorite) Kind() ActivityKind    { return ActivityFavoriteAdded }
func (RemoveFavorite) Kind() ActivityKind { return ActivityFavoriteRemoved }

// ReduceFavorites returns the state that follows s after a. s is never
// modified.
func ReduceFavorites(s FavoritesState, a FavoritesAction) FavoritesState {
	switch a := a.(type) {
	case AddFavorite:
		if s.Contains(a.Product.Name) {
			return s
		}
		next := s.Clone()
		next.Items = append(next.Items, a.Product)
		return next

	case RemoveFavorite:
		if !s.Contains(a.Product.Name) {
			return s
		}
		return FavoritesState{
			Items: slices.DeleteFunc(slices.Clone(s.Items), func(p Product) bool {
				return p.Name == a.Product.Name
			}),
		}

	default:
		return s
	}
}
