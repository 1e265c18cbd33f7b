package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product")
	ErrInvalidColor    = errors.New("invalid gold color")
	ErrInvalidAction   = errors.New("invalid action")
)

// A GoldColor is one of the three finishes every product is offered in.
type GoldColor string

const (
	Yellow GoldColor = "yellow"
	Rose   GoldColor = "rose"
	White  GoldColor = "white"
)

// GoldColors lists the finishes in display order.
var GoldColors = []GoldColor{Yellow, Rose, White}

func ParseGoldColor(s string) (GoldColor, error) {
	switch c := GoldColor(s); c {
	case Yellow, Rose, White:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
}

type (
	Product struct {
		Name            string
		PopularityScore float64
		Weight          float64
		Images          ProductImages
	}

	ProductImages struct {
		Yellow string
		Rose   string
		White  string
	}

	// A PricedProduct is a product with values derived from the gold rate
	// it was priced with.
	PricedProduct struct {
		Product
		Price          int64
		FormattedPrice string
		Stars          float64
	}
)

func (i ProductImages) For(c GoldColor) string {
	switch c {
	case Rose:
		return i.Rose
	case White:
		return i.White
	default:
		return i.Yellow
	}
}

// Validate checks the product invariants the pricing functions rely on.
func (p Product) Validate() error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidProduct)
	case p.PopularityScore < 0 || p.PopularityScore > 1:
		return fmt.Errorf(
			"%w: %q popularity score %v out of [0,1]",
			ErrInvalidProduct, p.Name, p.PopularityScore,
		)
	case p.Weight <= 0:
		return fmt.Errorf(
			"%w: %q weight %v is not positive",
			ErrInvalidProduct, p.Name, p.Weight,
		)
	}

	for _, c := range GoldColors {
		if p.Images.For(c) == "" {
			return fmt.Errorf(
				"%w: %q has no %s image", ErrInvalidProduct, p.Name, c,
			)
		}
	}
	return nil
}

// WithPrice derives the display values of p for goldPrice.
func (p Product) WithPrice(goldPrice float64) PricedProduct {
	price := CalculatePrice(p.PopularityScore, p.Weight, goldPrice)
	return PricedProduct{
		Product:        p,
		Price:          price,
		FormattedPrice: FormatPrice(price),
		Stars:          PopularityToStars(p.PopularityScore),
	}
}

// FindProduct returns the product named name.
func FindProduct(ps []Product, name string) (Product, error) {
	for _, p := range ps {
		if p.Name == name {
			return p, nil
		}
	}
	return Product{}, fmt.Errorf("%w: %q", ErrProductNotFound, name)
}
