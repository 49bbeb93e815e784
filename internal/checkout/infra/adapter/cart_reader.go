package adapter

import (
	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
)

// CartStoreReader exposes a cart store's current snapshot as checkout lines.
type CartStoreReader struct {
	store *cartapp.Store
}

func NewCartStoreReader(store *cartapp.Store) *CartStoreReader {
	return &CartStoreReader{store: store}
}

func (r *CartStoreReader) Lines() []domain.Line {
	snap := r.store.Snapshot()
	lines := make([]domain.Line, 0, len(snap.Items))
	for _, it := range snap.Items {
		lines = append(lines, domain.Line{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return lines
}
