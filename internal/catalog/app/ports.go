package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/catalog/domain"
)

// ProductReader is the read-only catalog query service.
type ProductReader interface {
	Get(ctx context.Context, id string) (domain.Product, error)
}
