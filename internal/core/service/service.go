package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/niksmo/luxe-storefront/internal/core/domain"
	"github.com/niksmo/luxe-storefront/internal/core/port"
)

var _ port.ProductsLister = (*Catalog)(nil)

// A Catalog prices and filters the product feed with the live gold rate.
type Catalog struct {
	productsReader port.ProductsReader
	goldPrice      port.GoldPriceSource
}

func NewCatalog(
	productsReader port.ProductsReader, goldPrice port.GoldPriceSource,
) Catalog {
	const op = "NewCatalog"

	if productsReader == nil || goldPrice == nil {
		panic(fmt.Errorf("%s: nil dependency", op)) // develop mistake
	}
	return Catalog{productsReader, goldPrice}
}

// ListProducts returns the products matching filters. The rate is read once,
// so every price in the result comes from the same gold price.
func (c Catalog) ListProducts(
	ctx context.Context, filters domain.FilterOptions,
) ([]domain.PricedProduct, error) {
	const op = "Catalog.ListProducts"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ps, err := c.readProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rate := c.goldPrice.GoldPrice()
	filtered := domain.FilterProducts(ps, filters, rate)

	priced := make([]domain.PricedProduct, len(filtered))
	for i, p := range filtered {
		priced[i] = p.WithPrice(rate)
	}
	return priced, nil
}

func (c Catalog) GetProduct(
	ctx context.Context, name string,
) (domain.PricedProduct, error) {
	const op = "Catalog.GetProduct"

	if err := ctx.Err(); err != nil {
		return domain.PricedProduct{}, fmt.Errorf("%s: %w", op, err)
	}

	p, err := c.findProduct(ctx, name)
	if err != nil {
		return domain.PricedProduct{}, fmt.Errorf("%s: %w", op, err)
	}
	return p.WithPrice(c.goldPrice.GoldPrice()), nil
}

func (c Catalog) findProduct(
	ctx context.Context, name string,
) (domain.Product, error) {
	if r, ok := c.productsReader.(port.ProductReader); ok {
		p, err := r.ReadProduct(ctx, name)
		if err != nil {
			return domain.Product{}, err
		}
		// invalid records are hidden from the listing as well
		if err := p.Validate(); err != nil {
			return domain.Product{}, fmt.Errorf(
				"%w: %w", domain.ErrProductNotFound, err,
			)
		}
		return p, nil
	}

	ps, err := c.readProducts(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	return domain.FindProduct(ps, name)
}

func (c Catalog) readProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "Catalog.readProducts"
	log := slog.With("op", op)

	ps, err := c.productsReader.ReadProducts(ctx)
	if err != nil {
		return nil, err
	}

	valid := make([]domain.Product, 0, len(ps))
	for _, p := range ps {
		if err := p.Validate(); err != nil {
			log.Warn("skip product", "err", err)
			continue
		}
		valid = append(valid, p)
	}
	return valid, nil
}

// IsNotFound reports whether err means the requested product does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrProductNotFound)
}
