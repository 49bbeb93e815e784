package app

import (
	"errors"
	"fmt"
)

// Kind classifies a failed payment attempt by what the shopper may do next.
type Kind string

const (
	// KindPrecondition: nothing was sent anywhere.
	KindPrecondition Kind = "precondition"
	// KindValidation: the order could not be normalized.
	KindValidation Kind = "validation"
	// KindIntent: the backend refused to create the order.
	KindIntent Kind = "intent"
	// KindDeclined: the gateway refused the card. The order stays
	// AWAITING_PAYMENT upstream.
	KindDeclined Kind = "declined"
	// KindUnverified: the gateway could not be reached or failed on its
	// side, so whether the card was charged is unknown. Do not pay again
	// before the order is checked.
	KindUnverified Kind = "unverified"
	// KindRequiresAction: the gateway answered with a status other than
	// succeeded.
	KindRequiresAction Kind = "requires_action"
	// KindReconciliation: money was captured but the backend did not
	// confirm the order. Never retry payment.
	KindReconciliation Kind = "reconciliation"
)

var (
	ErrPrecondition          = errors.New("payment precondition failed")
	ErrValidation            = errors.New("payment payload invalid")
	ErrIntent                = errors.New("payment intent not created")
	ErrDeclined              = errors.New("payment declined")
	ErrRequiresAction        = errors.New("payment requires action")
	ErrUnverified            = errors.New("payment outcome unknown")
	ErrReconciliationPending = errors.New("payment succeeded but order confirmation failed")

	// ErrPaymentInProgress is wrapped by a precondition error when the
	// same user already has an attempt in flight.
	ErrPaymentInProgress = errors.New("a payment is already in progress")
)

var kindSentinel = map[Kind]error{
	KindPrecondition:   ErrPrecondition,
	KindValidation:     ErrValidation,
	KindIntent:         ErrIntent,
	KindDeclined:       ErrDeclined,
	KindRequiresAction: ErrRequiresAction,
	KindUnverified:     ErrUnverified,
	KindReconciliation: ErrReconciliationPending,
}

type Error struct {
	Kind    Kind
	Message string
	// OrderID is set once the backend created an order.
	OrderID string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("payment %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	return kindSentinel[e.Kind] == target
}

// UserMessage is safe to show to the shopper.
func (e *Error) UserMessage() string {
	if e.Kind == KindUnverified {
		msg := "We could not verify your payment. Please check with your bank before paying again"
		if e.OrderID != "" {
			return msg + "; your order reference is " + e.OrderID + "."
		}
		return msg + "."
	}
	if e.Kind == KindReconciliation {
		msg := "Your payment went through but we could not confirm your order yet. Please do not pay again"
		if e.OrderID != "" {
			return msg + "; contact support with order " + e.OrderID + "."
		}
		return msg + "; contact support."
	}
	return e.Message
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}
