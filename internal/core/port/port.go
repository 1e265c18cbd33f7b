package port

import (
	"context"

	"github.com/niksmo/luxe-storefront/internal/core/domain"
)

type ProductsReader interface {
	ReadProducts(context.Context) ([]domain.Product, error)
}

// A ProductReader looks a single product up without reading the whole feed.
type ProductReader interface {
	ReadProduct(ctx context.Context, name string) (domain.Product, error)
}

type GoldPriceFetcher interface {
	FetchGoldPrice(context.Context) (float64, error)
}

type GoldPriceSource interface {
	GoldPrice() float64
}

type ActivityProducer interface {
	ProduceActivity(context.Context, domain.Activity) error
}

type ProductsLister interface {
	ListProducts(context.Context, domain.FilterOptions) ([]domain.PricedProduct, error)
	GetProduct(ctx context.Context, name string) (domain.PricedProduct, error)
}

type GoldPriceSnapshotter interface {
	Snapshot() domain.GoldPriceSnapshot
}

type CartDispatcher interface {
	Dispatch(context.Context, domain.CartAction) (domain.CartState, error)
	State() domain.CartState
}

type FavoritesDispatcher interface {
	Dispatch(context.Context, domain.FavoritesAction) (domain.FavoritesState, error)
	Toggle(context.Context, domain.Product) (bool, error)
	State() domain.FavoritesState
}
