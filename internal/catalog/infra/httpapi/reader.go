package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/dwikikusuma/storefront/pkg/httpjson"
	"github.com/shopspring/decimal"
)

type variantDTO struct {
	ID    httpjson.ID      `json:"id"`
	Size  string           `json:"size,omitempty"`
	Color string           `json:"color,omitempty"`
	Price *decimal.Decimal `json:"price,omitempty"`
	Stock int              `json:"stock"`
}

type productDTO struct {
	ID          httpjson.ID     `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Currency    string          `json:"currency"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Variants    []variantDTO    `json:"variants"`
}

// Reader implements app.ProductReader against the catalog read API.
type Reader struct {
	c *httpjson.Client
}

func NewReader(c *httpjson.Client) *Reader {
	return &Reader{c: c}
}

func (r *Reader) Get(ctx context.Context, id string) (domain.Product, error) {
	var dto productDTO
	err := r.c.Do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, nil, &dto)
	if httpjson.IsStatus(err, http.StatusNotFound) {
		return domain.Product{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	if dto.ID == "" {
		return domain.Product{}, errors.New("catalog: product without id")
	}
	return toDomain(dto), nil
}

func toDomain(p productDTO) domain.Product {
	variants := make([]domain.Variant, 0, len(p.Variants))
	for _, v := range p.Variants {
		variants = append(variants, domain.Variant{
			ID:    v.ID.String(),
			Size:  v.Size,
			Color: v.Color,
			Price: v.Price,
			Stock: v.Stock,
		})
	}
	return domain.Product{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Currency:    p.Currency,
		Price:       p.Price,
		Stock:       p.Stock,
		Variants:    variants,
	}
}
