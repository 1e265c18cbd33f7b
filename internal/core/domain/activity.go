package domain

import "time"

type ActivityKind string

const (
	ActivityItemAdded       ActivityKind = "item_added"
	ActivityItemRemoved     ActivityKind = "item_removed"
	ActivityQuantityUpdated ActivityKind = "quantity_updated"
	ActivityCartCleared     ActivityKind = "cart_cleared"
	ActivityFavoriteAdded   ActivityKind = "favorite_added"
	ActivityFavoriteRemoved ActivityKind = "favorite_removed"
)

// An Activity records one applied shopper action.
type Activity struct {
	Kind        ActivityKind
	ProductName string
	Color       GoldColor
	Quantity    int
	UnitPrice   int64
	CartTotal   int64
	OccurredAt  time.Time
}

// NewCartActivity describes action a applied to the cart. s is the state
// after the transition.
func NewCartActivity(a CartAction, s CartState, at time.Time) Activity {
	v := Activity{Kind: a.Kind(), CartTotal: s.Total, OccurredAt: at}

	switch a := a.(type) {
	case AddItem:
		v.ProductName = a.Product.Name
		v.Color = a.Color
		v.Quantity = a.Quantity
		v.UnitPrice = a.Price
	case RemoveItem:
		v.ProductName = a.Product.Name
		v.Color = a.Color
	case UpdateQuantity:
		v.ProductName = a.Product.Name
		v.Color = a.Color
		v.Quantity = a.Quantity
		if item, ok := s.Item(a.Product.Name, a.Color); ok {
			v.UnitPrice = item.Price
		}
	}
	return v
}

func NewFavoritesActivity(a FavoritesAction, at time.Time) Activity {
	v := Activity{Kind: a.Kind(), OccurredAt: at}

	switch a := a.(type) {
	case AddFavorite:
		v.ProductName = a.Product.Name
	case RemoveFavorite:
		v.ProductName = a.Product.Name
	}
	return v
}
