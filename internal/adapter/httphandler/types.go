package httphandler

import (
	"time"

	"github.com/niksmo/luxe-storefront/internal/core/domain"
)

type (
	ProductImages struct {
		Yellow string `json:"yellow"`
		Rose   string `json:"rose"`
		White  string `json:"white"`
	}

	Product struct {
		Name            string        `json:"name"`
		PopularityScore float64       `json:"popularity_score"`
		Weight          float64       `json:"weight"`
		Images          ProductImages `json:"images"`
	}

	PricedProduct struct {
		Product
		Price          int64   `json:"price"`
		FormattedPrice string  `json:"formatted_price"`
		Stars          float64 `json:"stars"`
	}

	ProductList struct {
		Products      []PricedProduct `json:"products"`
		FiltersActive bool            `json:"filters_active"`
		Error         string          `json:"error,omitempty"`
	}
)

type (
	CartItem struct {
		Name           string `json:"name"`
		Color          string `json:"color"`
		Image          string `json:"image"`
		Quantity       int    `json:"quantity"`
		Price          int64  `json:"price"`
		FormattedPrice string `json:"formatted_price"`
		Subtotal       int64  `json:"subtotal"`
	}

	Cart struct {
		Items          []CartItem `json:"items"`
		ItemCount      int        `json:"item_count"`
		Total          int64      `json:"total"`
		FormattedTotal string     `json:"formatted_total"`
	}

	AddCartItemRequest struct {
		Name     string `json:"name"`
		Color    string `json:"color"`
		Quantity *int   `json:"quantity"`
	}

	UpdateQuantityRequest struct {
		Quantity int `json:"quantity"`
	}
)

type (
	Favorites struct {
		Items []Product `json:"items"`
	}

	FavoriteToggle struct {
		Name     string `json:"name"`
		Favorite bool   `json:"favorite"`
	}
)

type GoldPrice struct {
	Rate      float64    `json:"rate"`
	Fetched   bool       `json:"fetched"`
	Loading   bool       `json:"loading"`
	Error     string     `json:"error,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func fromDomainProduct(p domain.Product) Product {
	return Product{
		Name:            p.Name,
		PopularityScore: p.PopularityScore,
		Weight:          p.Weight,
		Images: ProductImages{
			Yellow: p.Images.Yellow,
			Rose:   p.Images.Rose,
			White:  p.Images.White,
		},
	}
}

func fromDomainPricedProduct(p domain.PricedProduct) PricedProduct {
	return PricedProduct{
		Product:        fromDomainProduct(p.Product),
		Price:          p.Price,
		FormattedPrice: p.FormattedPrice,
		Stars:          p.Stars,
	}
}

func fromDomainCart(s domain.CartState) Cart {
	c := Cart{
		Items:          make([]CartItem, len(s.Items)),
		ItemCount:      s.ItemCount(),
		Total:          s.Total,
		FormattedTotal: domain.FormatPrice(s.Total),
	}
	for i, v := range s.Items {
		c.Items[i] = CartItem{
			Name:           v.Product.Name,
			Color:          string(v.Color),
			Image:          v.Product.Images.For(v.Color),
			Quantity:       v.Quantity,
			Price:          v.Price,
			FormattedPrice: domain.FormatPrice(v.Price),
			Subtotal:       v.Subtotal(),
		}
	}
	return c
}

func fromDomainFavorites(s domain.FavoritesState) Favorites {
	f := Favorites{Items: make([]Product, len(s.Items))}
	for i, p := range s.Items {
		f.Items[i] = fromDomainProduct(p)
	}
	return f
}

func fromDomainGoldPrice(s domain.GoldPriceSnapshot) GoldPrice {
	v := GoldPrice{Rate: s.Rate, Fetched: s.Fetched, Loading: s.Loading}
	if s.Err != nil {
		v.Error = "gold price is unavailable"
	}
	if !s.UpdatedAt.IsZero() {
		updatedAt := s.UpdatedAt
		v.UpdatedAt = &updatedAt
	}
	return v
}
