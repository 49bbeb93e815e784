package app_test

import (
	"context"
	"sync"

	"github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/internal/payment/app"
)

type fakeGateway struct {
	mu      sync.Mutex
	ready   bool
	status  string
	err     error
	secrets []string
	billing []app.Billing
	block   chan struct{}
	entered chan struct{}
}

func (g *fakeGateway) Ready() bool { return g.ready }

func (g *fakeGateway) ConfirmCardPayment(ctx context.Context, clientSecret string, cred app.Credential, billing app.Billing) (app.PaymentIntent, error) {
	g.mu.Lock()
	g.secrets = append(g.secrets, clientSecret)
	g.billing = append(g.billing, billing)
	block, entered := g.block, g.entered
	g.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	if g.err != nil {
		return app.PaymentIntent{}, g.err
	}
	return app.PaymentIntent{ID: "pi_1", Status: g.status}, nil
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.secrets)
}

type fakeBackend struct {
	mu         sync.Mutex
	intent     domain.Intent
	createErr  error
	confirmErr error
	requests   []domain.IntentRequest
	log        []string
}

func (b *fakeBackend) CreateIntent(ctx context.Context, req domain.IntentRequest) (domain.Intent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, req)
	b.log = append(b.log, "create")
	return b.intent, b.createErr
}

func (b *fakeBackend) Confirm(ctx context.Context, paymentIntentID, orderID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log = append(b.log, "confirm:"+paymentIntentID+":"+orderID)
	return b.confirmErr
}

func (b *fakeBackend) calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.log...)
}
