package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dwikikusuma/storefront/internal/confirmation/domain"
	"github.com/dwikikusuma/storefront/pkg/logger"
)

var ErrInvalidInput = errors.New("invalid input")

const notifyTimeout = 5 * time.Second

// Cleanup drops the per-user state an order consumed.
type Cleanup interface {
	ClearCart(ctx context.Context, userID string) error
	ResetCheckout(ctx context.Context, userID string) error
}

// Notifier publishes order events. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, e domain.Event) error
}

type Service struct {
	cleanup  Cleanup
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time

	wg sync.WaitGroup
}

func NewService(cleanup Cleanup, notifier Notifier, log *slog.Logger) *Service {
	return &Service{
		cleanup:  cleanup,
		notifier: notifier,
		log:      logger.OrDefault(log).With("component", "confirmation"),
		now:      time.Now,
	}
}

// Confirm finishes a successful order: the cart is cleared, the checkout
// draft dropped and a notification sent in the background. The order is
// already confirmed upstream, so cleanup failures are logged and do not
// fail the call. Payment status is never queried again here.
func (s *Service) Confirm(ctx context.Context, userID, orderID string) (domain.Confirmation, error) {
	userID, orderID = strings.TrimSpace(userID), strings.TrimSpace(orderID)
	if userID == "" || orderID == "" {
		return domain.Confirmation{}, ErrInvalidInput
	}
	log := s.log.With("user_id", userID, "order_id", orderID)

	if err := s.cleanup.ClearCart(ctx, userID); err != nil {
		log.Warn("clear cart after order failed", "err", err)
	}
	if err := s.cleanup.ResetCheckout(ctx, userID); err != nil {
		log.Warn("reset checkout after order failed", "err", err)
	}

	c := domain.Confirmation{OrderID: orderID, ConfirmedAt: s.now().UTC()}
	if s.notifier != nil {
		s.notify(ctx, log, domain.Event{
			Type:        domain.EventOrderConfirmed,
			OrderID:     orderID,
			UserID:      userID,
			ConfirmedAt: c.ConfirmedAt,
		})
	}
	log.Info("order confirmed")
	return c, nil
}

// Wait blocks until background notifications are done.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) notify(ctx context.Context, log *slog.Logger, e domain.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		if err := s.notifier.Notify(ctx, e); err != nil {
			log.Warn("order notification failed", "err", err)
		}
	}()
}
