package app

import (
	"context"
	"errors"

	"github.com/dwikikusuma/storefront/internal/checkout/domain"
)

var ErrDraftNotFound = errors.New("checkout draft not found")

// DraftStore keeps the wizard form across reloads, keyed by user id.
type DraftStore interface {
	Load(ctx context.Context, userID string) (domain.Draft, error)
	Save(ctx context.Context, userID string, d domain.Draft) error
	Delete(ctx context.Context, userID string) error
}

// CartReader exposes the shopper's current cart lines.
type CartReader interface {
	Lines() []domain.Line
}
