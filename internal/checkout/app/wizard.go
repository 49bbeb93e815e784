package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/dwikikusuma/storefront/internal/shipping"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

var ErrLastStep = errors.New("already at the last checkout step")

type Deps struct {
	Cart     CartReader
	Shipping *shipping.Resolver
	Drafts   DraftStore
	TaxRate  decimal.Decimal
	Log      *slog.Logger
}

// Wizard is the linear three-step checkout form of one shopper.
type Wizard struct {
	userID   string
	cart     CartReader
	shipping *shipping.Resolver
	drafts   DraftStore
	taxRate  decimal.Decimal
	log      *slog.Logger
	now      func() time.Time

	mu     sync.Mutex
	step   domain.Step
	form   domain.FormData
	errors map[domain.Step]domain.FieldErrors
}

// View is what the UI renders for the current step.
type View struct {
	Step    domain.Step
	Form    domain.FormData
	Errors  domain.FieldErrors
	Options []shipping.Option
	Summary domain.Summary
}

// NewWizard restores the user's draft if one exists, otherwise starts at
// the first step.
func NewWizard(ctx context.Context, userID string, deps Deps) (*Wizard, error) {
	if deps.Cart == nil || deps.Shipping == nil || deps.Drafts == nil {
		return nil, fmt.Errorf("checkout: cart, shipping and drafts are required")
	}
	w := &Wizard{
		userID:   userID,
		cart:     deps.Cart,
		shipping: deps.Shipping,
		drafts:   deps.Drafts,
		taxRate:  deps.TaxRate,
		log:      logger.OrDefault(deps.Log).With("component", "checkout", "user_id", userID),
		now:      time.Now,
		step:     domain.FirstStep,
		errors:   make(map[domain.Step]domain.FieldErrors),
	}

	d, err := w.drafts.Load(ctx, userID)
	switch {
	case errors.Is(err, ErrDraftNotFound):
	case err != nil:
		return nil, fmt.Errorf("load checkout draft: %w", err)
	default:
		w.form = d.Form
		if d.Step.Valid() {
			w.step = d.Step
		}
	}
	return w, nil
}

func (w *Wizard) Step() domain.Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *Wizard) Form() domain.FormData {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form
}

// Errors returns the field errors of one step only.
func (w *Wizard) Errors(step domain.Step) domain.FieldErrors {
	w.mu.Lock()
	defer w.mu.Unlock()
	return maps.Clone(w.errors[step])
}

func (w *Wizard) View() View {
	w.mu.Lock()
	step, form := w.step, w.form
	errs := maps.Clone(w.errors[step])
	w.mu.Unlock()

	lines := w.cart.Lines()
	var opts []shipping.Option
	if code, err := w.shipping.CountryCode(form.Country); err == nil {
		opts = w.shipping.Resolve(code, subtotal(lines))
	}
	return View{
		Step:    step,
		Form:    form,
		Errors:  errs,
		Options: opts,
		Summary: w.summary(form, lines),
	}
}

// Update applies a partial form change and persists the draft. Errors of
// the touched fields are cleared in their owning step.
func (w *Wizard) Update(ctx context.Context, p domain.Patch) domain.FormData {
	w.mu.Lock()
	touched := p.Apply(&w.form)
	for _, name := range touched {
		if step, ok := domain.OwnerOf(name); ok {
			delete(w.errors[step], name)
		}
	}
	form := w.form
	w.mu.Unlock()

	w.persist(ctx)
	return form
}

// ValidateStep checks only the fields owned by step and replaces that
// step's errors with the result.
func (w *Wizard) ValidateStep(step domain.Step) domain.FieldErrors {
	w.mu.Lock()
	form := w.form
	w.mu.Unlock()

	errs := w.check(step, form)

	w.mu.Lock()
	w.errors[step] = errs
	w.mu.Unlock()
	return maps.Clone(errs)
}

// Next advances when the current step validates. On failure the step is
// unchanged and its errors are returned.
func (w *Wizard) Next(ctx context.Context) (domain.Step, domain.FieldErrors, error) {
	current := w.Step()
	if current == domain.LastStep {
		return current, nil, ErrLastStep
	}

	errs := w.ValidateStep(current)
	if len(errs) > 0 {
		return current, errs, nil
	}

	w.mu.Lock()
	// Previous or Reset may have run while validating.
	if w.step == current {
		w.step++
	}
	next := w.step
	w.mu.Unlock()

	w.persist(ctx)
	return next, nil, nil
}

// Previous always moves back one step, without validating.
func (w *Wizard) Previous(ctx context.Context) domain.Step {
	w.mu.Lock()
	if w.step > domain.FirstStep {
		w.step--
	}
	step := w.step
	w.mu.Unlock()

	w.persist(ctx)
	return step
}

// ValidateAll checks every step in order and returns the first failing one.
func (w *Wizard) ValidateAll() (domain.Step, domain.FieldErrors, bool) {
	for step := domain.FirstStep; step <= domain.LastStep; step++ {
		if errs := w.ValidateStep(step); len(errs) > 0 {
			return step, errs, false
		}
	}
	return domain.LastStep, nil, true
}

// Reset clears the form, the step and the durable draft.
func (w *Wizard) Reset(ctx context.Context) error {
	w.mu.Lock()
	w.step = domain.FirstStep
	w.form = domain.FormData{}
	w.errors = make(map[domain.Step]domain.FieldErrors)
	w.mu.Unlock()

	if err := w.drafts.Delete(ctx, w.userID); err != nil && !errors.Is(err, ErrDraftNotFound) {
		return fmt.Errorf("delete checkout draft: %w", err)
	}
	return nil
}

// Summary derives the totals from the current cart and shipping choice.
func (w *Wizard) Summary() domain.Summary {
	return w.summary(w.Form(), w.cart.Lines())
}

func (w *Wizard) summary(form domain.FormData, lines []domain.Line) domain.Summary {
	cost := decimal.Zero
	atDestination := false
	method := ""
	if opt, ok := w.selected(form, subtotal(lines)); ok {
		cost = opt.Cost()
		atDestination = opt.AtDestination()
		method = opt.ID
	}
	s := domain.ComputeSummary(lines, cost, w.taxRate)
	s.ShippingMethod = method
	s.ShippingAtDestination = atDestination
	return s
}

func (w *Wizard) selected(form domain.FormData, sub decimal.Decimal) (shipping.Option, bool) {
	if form.ShippingMethod == "" {
		return shipping.Option{}, false
	}
	code, err := w.shipping.CountryCode(form.Country)
	if err != nil {
		return shipping.Option{}, false
	}
	return w.shipping.Select(code, sub, form.ShippingMethod)
}

func (w *Wizard) check(step domain.Step, form domain.FormData) domain.FieldErrors {
	form = trimmed(form)
	switch step {
	case domain.StepContactAddress:
		errs := fieldErrors(contactAddress{
			Email:      form.Email,
			FirstName:  form.FirstName,
			LastName:   form.LastName,
			Address1:   form.Address1,
			Address2:   form.Address2,
			PostalCode: form.PostalCode,
			City:       form.City,
			Country:    form.Country,
			Phone:      form.Phone,
		})
		if _, bad := errs["country"]; !bad {
			if _, err := w.shipping.CountryCode(form.Country); err != nil {
				errs["country"] = "is not a country we ship to"
			}
		}
		return errs

	case domain.StepShipping:
		errs := fieldErrors(shippingStep{ShippingMethod: form.ShippingMethod})
		if len(errs) > 0 {
			return errs
		}
		if _, ok := w.selected(form, subtotal(w.cart.Lines())); !ok {
			errs["shippingMethod"] = "is not available for this destination"
		}
		return errs

	case domain.StepPayment:
		// Card details are checked by the payment gateway, not here.
		return fieldErrors(paymentStep{PaymentMethod: form.PaymentMethod})
	}
	return domain.FieldErrors{}
}

// persist saves the draft. Failures are logged: the in-memory form stays
// authoritative for this session.
func (w *Wizard) persist(ctx context.Context) {
	w.mu.Lock()
	d := domain.Draft{Form: w.form, Step: w.step, UpdatedAt: w.now().UTC()}
	w.mu.Unlock()

	if err := w.drafts.Save(ctx, w.userID, d); err != nil {
		w.log.Warn("save checkout draft failed", "step", d.Step.String(), "err", err)
	}
}

func subtotal(lines []domain.Line) decimal.Decimal {
	return domain.ComputeSummary(lines, decimal.Zero, decimal.Zero).Subtotal
}
