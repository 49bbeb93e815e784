package features

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
	"github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/dwikikusuma/storefront/internal/checkout/infra/memory"
	"github.com/dwikikusuma/storefront/internal/shipping"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

type cartLines []domain.Line

func (c *cartLines) Lines() []domain.Line { return *c }

type checkoutTestContext struct {
	cart   cartLines
	drafts *memory.DraftStore
	wizard *app.Wizard
}

func (c *checkoutTestContext) reset() {
	c.cart = nil
	c.drafts = memory.NewDraftStore()
	c.wizard = nil
}

func (c *checkoutTestContext) w() (*app.Wizard, error) {
	if c.wizard != nil {
		return c.wizard, nil
	}
	w, err := app.NewWizard(context.Background(), "shopper", app.Deps{
		Cart:     &c.cart,
		Shipping: shipping.Default(),
		Drafts:   c.drafts,
		Log:      logger.Discard(),
	})
	if err != nil {
		return nil, err
	}
	c.wizard = w
	return w, nil
}

func (c *checkoutTestContext) aCartWith(qty int, unit string) error {
	price, err := decimal.NewFromString(unit)
	if err != nil {
		return err
	}
	c.cart = cartLines{{ProductID: "p-1", Quantity: qty, UnitPrice: price}}
	return nil
}

func (c *checkoutTestContext) theShopperFillsAValidAddressIn(country string) error {
	w, err := c.w()
	if err != nil {
		return err
	}
	s := func(v string) *string { return &v }
	w.Update(context.Background(), domain.Patch{
		Email:      s("jeanne@example.fr"),
		FirstName:  s("Jeanne"),
		LastName:   s("Martin"),
		Address1:   s("12 rue des Lilas"),
		PostalCode: s("69003"),
		City:       s("Lyon"),
		Country:    s(country),
		Phone:      s("06 12 34 56 78"),
	})
	return nil
}

func (c *checkoutTestContext) theShopperSetsEmailTo(email string) error {
	w, err := c.w()
	if err != nil {
		return err
	}
	w.Update(context.Background(), domain.Patch{Email: &email})
	return nil
}

func (c *checkoutTestContext) theShopperPicksShipping(method string) error {
	w, err := c.w()
	if err != nil {
		return err
	}
	w.Update(context.Background(), domain.Patch{ShippingMethod: &method})
	return nil
}

func (c *checkoutTestContext) theShopperGoesToTheNextStep() error {
	w, err := c.w()
	if err != nil {
		return err
	}
	_, _, err = w.Next(context.Background())
	return err
}

func (c *checkoutTestContext) theShopperGoesBack() error {
	w, err := c.w()
	if err != nil {
		return err
	}
	w.Previous(context.Background())
	return nil
}

func (c *checkoutTestContext) theShopperResetsTheCheckout() error {
	w, err := c.w()
	if err != nil {
		return err
	}
	return w.Reset(context.Background())
}

func (c *checkoutTestContext) theWizardIsOnStep(n int) error {
	w, err := c.w()
	if err != nil {
		return err
	}
	if got := w.Step(); got != domain.Step(n) {
		return fmt.Errorf("expected step %d, got %d (%s)", n, int(got), got)
	}
	return nil
}

func (c *checkoutTestContext) stepReportsAnErrorOn(n int, field string) error {
	w, err := c.w()
	if err != nil {
		return err
	}
	errs := w.Errors(domain.Step(n))
	if errs[field] == "" {
		return fmt.Errorf("expected an error on %q, got %v", field, errs)
	}
	return nil
}

func (c *checkoutTestContext) stepHasNoErrors(n int) error {
	w, err := c.w()
	if err != nil {
		return err
	}
	if errs := w.Errors(domain.Step(n)); len(errs) > 0 {
		return fmt.Errorf("expected no errors on step %d, got %v", n, errs)
	}
	return nil
}

func (c *checkoutTestContext) theSummaryShows(subtotal, ship, total string) error {
	w, err := c.w()
	if err != nil {
		return err
	}
	s := w.Summary()
	for _, chk := range []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"subtotal", s.Subtotal, subtotal},
		{"shipping", s.Shipping, ship},
		{"total", s.Total, total},
	} {
		if chk.got.StringFixed(2) != chk.want {
			return fmt.Errorf("%s: expected %s, got %s", chk.name, chk.want, chk.got.StringFixed(2))
		}
	}
	return nil
}

func (c *checkoutTestContext) theSavedDraftIsGone() error {
	_, err := c.drafts.Load(context.Background(), "shopper")
	if !errors.Is(err, app.ErrDraftNotFound) {
		return fmt.Errorf("expected no draft, got %v", err)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a cart with (\d+) x "([^"]*)"$`, tc.aCartWith)
	ctx.Step(`^the shopper fills a valid address in "([^"]*)"$`, tc.theShopperFillsAValidAddressIn)
	ctx.Step(`^the shopper sets email to "([^"]*)"$`, tc.theShopperSetsEmailTo)
	ctx.Step(`^the shopper picks shipping "([^"]*)"$`, tc.theShopperPicksShipping)

	// When steps
	ctx.Step(`^the shopper goes to the next step$`, tc.theShopperGoesToTheNextStep)
	ctx.Step(`^the shopper goes back$`, tc.theShopperGoesBack)
	ctx.Step(`^the shopper resets the checkout$`, tc.theShopperResetsTheCheckout)

	// Then steps
	ctx.Step(`^the wizard is on step (\d+)$`, tc.theWizardIsOnStep)
	ctx.Step(`^step (\d+) reports an error on "([^"]*)"$`, tc.stepReportsAnErrorOn)
	ctx.Step(`^step (\d+) has no errors$`, tc.stepHasNoErrors)
	ctx.Step(`^the summary shows subtotal "([^"]*)", shipping "([^"]*)" and total "([^"]*)"$`, tc.theSummaryShows)
	ctx.Step(`^the saved draft is gone$`, tc.theSavedDraftIsGone)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"checkout.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
