package adapter

import (
	"context"
	"fmt"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
)

// CatalogServiceReader turns catalog products into the price and stock
// snapshot AddToCart needs.
type CatalogServiceReader struct {
	svc *catalogapp.Service
}

func NewCatalogServiceReader(svc *catalogapp.Service) *CatalogServiceReader {
	return &CatalogServiceReader{svc: svc}
}

// Lookup returns the product and, when variantID is set, the variant.
func (r *CatalogServiceReader) Lookup(ctx context.Context, productID, variantID string) (cartapp.Product, *cartapp.Variant, error) {
	p, err := r.svc.GetProduct(ctx, productID)
	if err != nil {
		return cartapp.Product{}, nil, err
	}

	product := cartapp.Product{
		ID:    p.ID,
		Price: p.Price,
		Stock: p.Stock,
	}
	if variantID == "" {
		return product, nil, nil
	}

	v, ok := p.Variant(variantID)
	if !ok {
		return cartapp.Product{}, nil, fmt.Errorf("variant %s of product %s: %w", variantID, productID, catalogapp.ErrNotFound)
	}
	return product, &cartapp.Variant{
		ID:    v.ID,
		Price: v.Price,
		Stock: v.Stock,
	}, nil
}
