package features

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	checkoutdomain "github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/internal/payment/app"
	"github.com/dwikikusuma/storefront/internal/shipping"
	"github.com/dwikikusuma/storefront/pkg/identity"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

type stubGateway struct {
	status string
	err    error
	calls  int
}

func (g *stubGateway) Ready() bool { return true }

func (g *stubGateway) ConfirmCardPayment(ctx context.Context, clientSecret string, cred app.Credential, billing app.Billing) (app.PaymentIntent, error) {
	g.calls++
	if g.err != nil {
		return app.PaymentIntent{}, g.err
	}
	return app.PaymentIntent{ID: "pi_1", Status: g.status}, nil
}

type stubBackend struct {
	confirmErr error
	created    []domain.IntentRequest
	confirmed  int
}

func (b *stubBackend) CreateIntent(ctx context.Context, req domain.IntentRequest) (domain.Intent, error) {
	b.created = append(b.created, req)
	return domain.Intent{OrderID: "o-1", PaymentIntentID: "pi_1", ClientSecret: "pi_1_secret_x"}, nil
}

func (b *stubBackend) Confirm(ctx context.Context, paymentIntentID, orderID string) error {
	b.confirmed++
	return b.confirmErr
}

type paymentTestContext struct {
	gateway *stubGateway
	backend *stubBackend
	order   app.Order
	result  app.Result
	err     error
}

func (c *paymentTestContext) reset() {
	c.gateway = &stubGateway{}
	c.backend = &stubBackend{}
	c.order = app.Order{User: identity.User{ID: "shopper"}}
	c.result, c.err = app.Result{}, nil
}

func (c *paymentTestContext) aConfirmedCartWith(qty int, unit string) error {
	price, err := decimal.NewFromString(unit)
	if err != nil {
		return err
	}
	c.order.Items = []cartdomain.CartItem{{ID: "ci-1", State: cartdomain.ItemConfirmed, ProductID: "p-1", Quantity: qty, UnitPrice: price}}
	return nil
}

func (c *paymentTestContext) theCartHasAnItemStillBeingSaved() error {
	c.order.Items = append(c.order.Items, cartdomain.CartItem{ID: "tmp", State: cartdomain.ItemPending, ProductID: "p-2", Quantity: 1, UnitPrice: decimal.NewFromInt(5)})
	return nil
}

func (c *paymentTestContext) aCompletedCheckoutTo(country, method string) error {
	c.order.Form = checkoutdomain.FormData{
		Email: "jeanne@example.fr", FirstName: "Jeanne", LastName: "Martin",
		Address1: "12 rue des Lilas", PostalCode: "69003", City: "Lyon",
		Country: country, Phone: "0612345678",
		ShippingMethod: method, PaymentMethod: checkoutdomain.PaymentMethodCard,
	}

	lines := make([]checkoutdomain.Line, 0, len(c.order.Items))
	for _, it := range c.order.Items {
		lines = append(lines, checkoutdomain.Line{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	ship := decimal.Zero
	r := shipping.Default()
	if code, err := r.CountryCode(country); err == nil {
		sub := checkoutdomain.ComputeSummary(lines, decimal.Zero, decimal.Zero).Subtotal
		if opt, ok := r.Select(code, sub, method); ok {
			ship = opt.Cost()
		}
	}
	c.order.Summary = checkoutdomain.ComputeSummary(lines, ship, decimal.Zero)
	return nil
}

func (c *paymentTestContext) theGatewayAcceptsTheCard() error {
	c.gateway.status = app.IntentSucceeded
	return nil
}

func (c *paymentTestContext) theGatewayDeclinesTheCardWith(msg string) error {
	c.gateway.err = &app.GatewayError{Code: "card_declined", Message: msg}
	return nil
}

func (c *paymentTestContext) theOrderBackendCannotConfirmOrders() error {
	c.backend.confirmErr = errors.New("order backend unavailable")
	return nil
}

func (c *paymentTestContext) theShopperPays() error {
	o := app.NewOrchestrator(c.gateway, c.backend, shipping.Default(), logger.Discard())
	c.result, c.err = o.Pay(context.Background(), app.PayRequest{
		Order:      c.order,
		Credential: app.Credential{PaymentMethodID: "pm_card"},
	})
	return nil
}

func (c *paymentTestContext) thePaymentSucceedsWithOrder(orderID string) error {
	if c.err != nil {
		return fmt.Errorf("expected success, got %v", c.err)
	}
	if c.result.OrderID != orderID {
		return fmt.Errorf("expected order %s, got %s", orderID, c.result.OrderID)
	}
	return nil
}

func (c *paymentTestContext) failure(kind string) (*app.Error, error) {
	var perr *app.Error
	if !errors.As(c.err, &perr) {
		return nil, fmt.Errorf("expected a payment error, got %v", c.err)
	}
	if string(perr.Kind) != kind {
		return nil, fmt.Errorf("expected kind %s, got %s (%v)", kind, perr.Kind, c.err)
	}
	return perr, nil
}

func (c *paymentTestContext) thePaymentFailsAs(kind string) error {
	_, err := c.failure(kind)
	return err
}

func (c *paymentTestContext) thePaymentFailsAsWithMessage(kind, msg string) error {
	perr, err := c.failure(kind)
	if err != nil {
		return err
	}
	if perr.UserMessage() != msg {
		return fmt.Errorf("expected message %q, got %q", msg, perr.UserMessage())
	}
	return nil
}

func (c *paymentTestContext) thePaymentFailsAsWithMessageContaining(kind, part string) error {
	perr, err := c.failure(kind)
	if err != nil {
		return err
	}
	if !strings.Contains(perr.UserMessage(), part) {
		return fmt.Errorf("expected %q in %q", part, perr.UserMessage())
	}
	return nil
}

func (c *paymentTestContext) theOrderBackendReceivedTotal(total string) error {
	if len(c.backend.created) != 1 {
		return fmt.Errorf("expected one order, got %d", len(c.backend.created))
	}
	if got := c.backend.created[0].Totals.Total.String(); got != total {
		return fmt.Errorf("expected total %s, got %s", total, got)
	}
	return nil
}

func (c *paymentTestContext) theOrderWasConfirmedOnce() error {
	if c.backend.confirmed != 1 {
		return fmt.Errorf("expected one confirmation, got %d", c.backend.confirmed)
	}
	return nil
}

func (c *paymentTestContext) theOrderWasNeverConfirmed() error {
	if c.backend.confirmed != 0 {
		return fmt.Errorf("expected no confirmation, got %d", c.backend.confirmed)
	}
	return nil
}

func (c *paymentTestContext) theGatewayWasCalledOnce() error {
	if c.gateway.calls != 1 {
		return fmt.Errorf("expected one gateway call, got %d", c.gateway.calls)
	}
	return nil
}

func (c *paymentTestContext) noOrderWasCreated() error {
	if len(c.backend.created) != 0 {
		return fmt.Errorf("expected no order, got %d", len(c.backend.created))
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &paymentTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a confirmed cart with (\d+) x "([^"]*)"$`, tc.aConfirmedCartWith)
	ctx.Step(`^the cart has an item still being saved$`, tc.theCartHasAnItemStillBeingSaved)
	ctx.Step(`^a completed checkout to "([^"]*)" with shipping "([^"]*)"$`, tc.aCompletedCheckoutTo)
	ctx.Step(`^the gateway accepts the card$`, tc.theGatewayAcceptsTheCard)
	ctx.Step(`^the gateway declines the card with "([^"]*)"$`, tc.theGatewayDeclinesTheCardWith)
	ctx.Step(`^the order backend cannot confirm orders$`, tc.theOrderBackendCannotConfirmOrders)

	// When steps
	ctx.Step(`^the shopper pays$`, tc.theShopperPays)

	// Then steps
	ctx.Step(`^the payment succeeds with order "([^"]*)"$`, tc.thePaymentSucceedsWithOrder)
	ctx.Step(`^the payment fails as "([^"]*)"$`, tc.thePaymentFailsAs)
	ctx.Step(`^the payment fails as "([^"]*)" with message "([^"]*)"$`, tc.thePaymentFailsAsWithMessage)
	ctx.Step(`^the payment fails as "([^"]*)" with message containing "([^"]*)"$`, tc.thePaymentFailsAsWithMessageContaining)
	ctx.Step(`^the order backend received total "([^"]*)"$`, tc.theOrderBackendReceivedTotal)
	ctx.Step(`^the order was confirmed once$`, tc.theOrderWasConfirmedOnce)
	ctx.Step(`^the order was never confirmed$`, tc.theOrderWasNeverConfirmed)
	ctx.Step(`^the gateway was called once$`, tc.theGatewayWasCalledOnce)
	ctx.Step(`^no order was created$`, tc.noOrderWasCreated)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"payment.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
