package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/niksmo/luxe-storefront/internal/core/domain"
	"github.com/niksmo/luxe-storefront/internal/core/port"
)

var (
	_ port.ProductsReader = (*ProductsRepository)(nil)
	_ port.ProductReader  = (*ProductsRepository)(nil)
)

const productColumns = `
	name, popularity_score, weight,
	image_yellow, image_rose, image_white`

// A ProductsRepository reads the catalog from the products table.
type ProductsRepository struct {
	sqldb sqldb
}

func NewProductsRepository(sqldb sqldb) ProductsRepository {
	return ProductsRepository{sqldb}
}

func (r ProductsRepository) ReadProducts(
	ctx context.Context,
) (ps []domain.Product, readErr error) {
	const op = "ProductsRepository.ReadProducts"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT` + productColumns + `
		FROM products
		ORDER BY position ASC, name ASC;`

	rows, err := r.sqldb.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query: %w", op, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", "err", err)
		}
	}()

	for rows.Next() {
		var v domain.Product
		if err := scanProduct(rows.Scan, &v); err != nil {
			return nil, fmt.Errorf("%s: failed to scan: %w", op, err)
		}
		ps = append(ps, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

func (r ProductsRepository) ReadProduct(
	ctx context.Context, name string,
) (domain.Product, error) {
	const op = "ProductsRepository.ReadProduct"

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT` + productColumns + `
		FROM products
		WHERE name = $1;`

	var v domain.Product
	row := r.sqldb.QueryRowContext(ctx, query, name)
	if err := scanProduct(row.Scan, &v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, fmt.Errorf(
				"%s: %w: %w", op, ErrNotFound, domain.ErrProductNotFound,
			)
		}
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

func scanProduct(scan func(dest ...any) error, v *domain.Product) error {
	return scan(
		&v.Name, &v.PopularityScore, &v.Weight,
		&v.Images.Yellow, &v.Images.Rose, &v.Images.White,
	)
}
