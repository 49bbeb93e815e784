package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const getProduct = `
SELECT id, name, description, currency, price::text, stock
FROM products
WHERE id = $1`

const listVariants = `
SELECT id, product_id, size, color, price::text, stock
FROM product_variants
WHERE product_id = ANY($1::uuid[])
ORDER BY product_id, id`

// ProductRepo reads the catalog tables directly, for deployments that
// share the catalog database.
type ProductRepo struct {
	pool *pgxpool.Pool
}

var _ app.ProductReader = (*ProductRepo)(nil)

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	prodID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return domain.Product{}, app.ErrNotFound
	}

	p, err := scanProduct(r.pool.QueryRow(ctx, getProduct, prodID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}

	products := []domain.Product{p}
	if err := r.attachVariants(ctx, products); err != nil {
		return domain.Product{}, err
	}
	return products[0], nil
}

func (r *ProductRepo) attachVariants(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, 0, len(products))
	index := make(map[string]int, len(products))
	for i, p := range products {
		ids = append(ids, p.ID)
		index[p.ID] = i
	}

	rows, err := r.pool.Query(ctx, listVariants, ids)
	if err != nil {
		return fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, productID uuid.UUID
			v             domain.Variant
			price         *string
		)
		if err := rows.Scan(&id, &productID, &v.Size, &v.Color, &price, &v.Stock); err != nil {
			return fmt.Errorf("scan variant: %w", err)
		}
		v.ID = id.String()
		if price != nil {
			d, err := decimal.NewFromString(*price)
			if err != nil {
				return fmt.Errorf("variant %s price: %w", v.ID, err)
			}
			v.Price = &d
		}
		if i, ok := index[productID.String()]; ok {
			products[i].Variants = append(products[i].Variants, v)
		}
	}
	return rows.Err()
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var (
		id    uuid.UUID
		p     domain.Product
		price string
	)
	if err := row.Scan(&id, &p.Name, &p.Description, &p.Currency, &price, &p.Stock); err != nil {
		return domain.Product{}, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %s price: %w", id, err)
	}
	p.ID = id.String()
	p.Price = d
	return p, nil
}
