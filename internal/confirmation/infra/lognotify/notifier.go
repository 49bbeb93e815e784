// Package lognotify is the notifier used when no broker is configured.
package lognotify

import (
	"context"
	"log/slog"

	"github.com/dwikikusuma/storefront/internal/confirmation/domain"
	"github.com/dwikikusuma/storefront/pkg/logger"
)

type Notifier struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Notifier {
	return &Notifier{log: logger.OrDefault(log)}
}

func (n *Notifier) Notify(ctx context.Context, e domain.Event) error {
	n.log.InfoContext(ctx, "order event", "type", e.Type, "order_id", e.OrderID, "user_id", e.UserID)
	return nil
}
