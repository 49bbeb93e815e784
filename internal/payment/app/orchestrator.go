package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
	"github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/internal/shipping"
	"github.com/dwikikusuma/storefront/pkg/logger"
)

// Status is the state of a user's latest payment attempt.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// Attempt describes the latest payment attempt of one user.
type Attempt struct {
	Status Status
	// OrderStatus mirrors the order as implied by the calls made so far.
	OrderStatus domain.Status
	OrderID     string
	Kind        Kind
	UpdatedAt   time.Time
}

type PayRequest struct {
	Order
	Credential Credential
	// OnSuccess runs once the order is confirmed, before Pay returns.
	OnSuccess func(orderID string)
}

type Result struct {
	OrderID         string
	PaymentIntentID string
}

// Orchestrator runs the pay sequence: create the order intent, confirm the
// card with the gateway, then confirm the order. Nothing is retried.
type Orchestrator struct {
	gateway   Gateway
	backend   OrderBackend
	countries CountryLookup
	log       *slog.Logger
	now       func() time.Time

	mu       sync.Mutex
	attempts map[string]Attempt
}

func NewOrchestrator(gateway Gateway, backend OrderBackend, countries CountryLookup, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		gateway:   gateway,
		backend:   backend,
		countries: countries,
		log:       logger.OrDefault(log).With("component", "payment"),
		now:       time.Now,
		attempts:  make(map[string]Attempt),
	}
}

// Status returns the latest attempt of userID, idle if there was none.
func (o *Orchestrator) Status(userID string) Attempt {
	o.mu.Lock()
	defer o.mu.Unlock()
	a, ok := o.attempts[userID]
	if !ok {
		return Attempt{Status: StatusIdle}
	}
	return a
}

// Pay runs one payment attempt. At most one attempt per user is in flight;
// a concurrent call fails with ErrPaymentInProgress without side effects.
func (o *Orchestrator) Pay(ctx context.Context, req PayRequest) (Result, error) {
	// 1. preconditions
	if !o.gateway.Ready() {
		return Result{}, newError(KindPrecondition, "Payment is not available right now. Please try again later.", nil)
	}
	if !req.User.Valid() {
		return Result{}, newError(KindPrecondition, "Please sign in to pay.", nil)
	}
	if len(req.Items) == 0 {
		return Result{}, newError(KindPrecondition, "Your cart is empty.", nil)
	}
	for _, it := range req.Items {
		if it.Pending() {
			return Result{}, newError(KindPrecondition, "Your cart is still being saved. Please wait a moment.", nil)
		}
	}

	userID := canonical(req.User.ID)
	if !o.begin(userID) {
		return Result{}, newError(KindPrecondition, "A payment is already in progress.", ErrPaymentInProgress)
	}
	log := o.log.With("user_id", userID)

	res, err := o.pay(ctx, log, userID, req)
	if err != nil {
		var perr *Error
		if errors.As(err, &perr) {
			perr.OrderID = res.OrderID
			o.finish(userID, StatusFailed, perr.Kind)
		} else {
			o.finish(userID, StatusFailed, "")
		}
		return Result{}, err
	}
	o.finish(userID, StatusSucceeded, "")

	// 7. success
	if req.OnSuccess != nil {
		req.OnSuccess(res.OrderID)
	}
	return res, nil
}

func (o *Orchestrator) pay(ctx context.Context, log *slog.Logger, userID string, req PayRequest) (Result, error) {
	// 2. normalize
	payload, err := Normalize(req.Order, o.countries)
	if err != nil {
		if errors.Is(err, shipping.ErrUnsupportedCountry) {
			return Result{}, newError(KindValidation, "We do not ship to this country.", err)
		}
		return Result{}, newError(KindValidation, "Your order could not be prepared. Please review your cart.", err)
	}

	// An order is about to exist upstream: finish the sequence even if the
	// caller goes away.
	ctx = context.WithoutCancel(ctx)

	// 3. create the order and its payment intent
	intent, err := o.backend.CreateIntent(ctx, payload)
	if err != nil {
		return Result{}, intentError(err)
	}
	if !intent.Complete() {
		return Result{}, newError(KindIntent, "The payment could not be initialised.", orderapp.ErrIncompleteIntent)
	}
	res := Result{OrderID: intent.OrderID, PaymentIntentID: intent.PaymentIntentID}
	log = log.With("order_id", intent.OrderID, "payment_intent_id", intent.PaymentIntentID)
	o.advance(userID, intent.OrderID, domain.StatusCreated, domain.StatusAwaitingPayment)
	log.Info("payment intent created")

	// 4. credential
	if strings.TrimSpace(req.Credential.PaymentMethodID) == "" {
		return res, newError(KindPrecondition, "payment form not ready", nil)
	}

	// 5. gateway
	pi, err := o.gateway.ConfirmCardPayment(ctx, intent.ClientSecret, req.Credential, BillingFor(payload))
	if err != nil {
		log.Warn("card payment not confirmed, intent left awaiting payment", "err", err)
		var gerr *GatewayError
		if errors.As(err, &gerr) {
			msg := gerr.Message
			if msg == "" {
				msg = "Your card was not accepted."
			}
			return res, newError(KindDeclined, msg, err)
		}
		return res, newError(KindUnverified, "payment gateway did not give an answer", err)
	}
	if pi.Status != IntentSucceeded {
		log.Warn("card payment not completed", "status", pi.Status)
		return res, newError(KindRequiresAction, actionMessage(pi.Status), nil)
	}
	o.advance(userID, intent.OrderID, domain.StatusAwaitingPayment, domain.StatusPaid)

	// 6. confirm the order
	if err := o.backend.Confirm(ctx, intent.PaymentIntentID, intent.OrderID); err != nil {
		log.Error("payment captured but order not confirmed", "err", err)
		return res, newError(KindReconciliation, "payment succeeded but order confirmation failed", err)
	}
	o.advance(userID, intent.OrderID, domain.StatusPaid, domain.StatusConfirmed)
	log.Info("order confirmed")
	return res, nil
}

func intentError(err error) *Error {
	var remote *orderapp.RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return newError(KindIntent, remote.Message, err)
	}
	return newError(KindIntent, "The payment could not be initialised.", err)
}

func actionMessage(status string) string {
	switch status {
	case "requires_action":
		return "Your bank needs to verify this payment."
	case "requires_payment_method":
		return "Your card was not accepted. Please use another card."
	case "processing":
		return "Your payment is still processing."
	case "canceled":
		return "This payment was cancelled."
	default:
		return "Your payment did not complete (" + status + ")."
	}
}

func (o *Orchestrator) begin(userID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.attempts[userID].Status == StatusProcessing {
		return false
	}
	o.attempts[userID] = Attempt{Status: StatusProcessing, UpdatedAt: o.now()}
	return true
}

func (o *Orchestrator) advance(userID, orderID string, from, to domain.Status) {
	o.mu.Lock()
	defer o.mu.Unlock()
	a := o.attempts[userID]
	if a.OrderStatus == "" {
		a.OrderStatus = from
	}
	if err := domain.ValidateTransition(a.OrderStatus, to); err != nil {
		o.log.Error("unexpected order transition", "user_id", userID, "order_id", orderID, "err", err)
		return
	}
	a.OrderID = orderID
	a.OrderStatus = to
	a.UpdatedAt = o.now()
	o.attempts[userID] = a
}

func (o *Orchestrator) finish(userID string, status Status, kind Kind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	a := o.attempts[userID]
	a.Status = status
	a.Kind = kind
	a.UpdatedAt = o.now()
	o.attempts[userID] = a
}
