package api

import (
	"encoding/json"
	"time"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	catalogdomain "github.com/dwikikusuma/storefront/internal/catalog/domain"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	checkoutdomain "github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/dwikikusuma/storefront/internal/shipping"
	"github.com/dwikikusuma/storefront/pkg/money"
)

type productDTO struct {
	Name     string `json:"name"`
	Currency string `json:"currency,omitempty"`
}

type cartItemDTO struct {
	ID            string      `json:"id"`
	Pending       bool        `json:"pending"`
	ProductID     string      `json:"productId"`
	VariantID     string      `json:"variantId,omitempty"`
	Quantity      int         `json:"quantity"`
	UnitPrice     json.Number `json:"unitPrice"`
	LineTotal     json.Number `json:"lineTotal"`
	SelectedSize  string      `json:"selectedSize,omitempty"`
	SelectedColor string      `json:"selectedColor,omitempty"`
	AddedAt       *time.Time  `json:"addedAt,omitempty"`
	Product       *productDTO `json:"product,omitempty"`
}

type cartDTO struct {
	Items    []cartItemDTO `json:"items"`
	Status   string        `json:"status"`
	Error    string        `json:"error,omitempty"`
	Count    int           `json:"count"`
	Subtotal json.Number   `json:"subtotal"`
}

func toCartItemDTO(it cartdomain.CartItem) cartItemDTO {
	d := cartItemDTO{
		ID:            it.ID,
		Pending:       it.Pending(),
		ProductID:     it.ProductID,
		VariantID:     it.VariantID,
		Quantity:      it.Quantity,
		UnitPrice:     money.Number(it.UnitPrice),
		LineTotal:     money.Number(it.LineTotal()),
		SelectedSize:  it.SelectedSize,
		SelectedColor: it.SelectedColor,
	}
	if !it.AddedAt.IsZero() {
		at := it.AddedAt
		d.AddedAt = &at
	}
	return d
}

func toCartDTO(snap cartapp.Snapshot, products map[string]catalogdomain.Product) cartDTO {
	d := cartDTO{
		Items:    make([]cartItemDTO, 0, len(snap.Items)),
		Status:   string(snap.Status),
		Count:    snap.Count(),
		Subtotal: money.Number(snap.Subtotal()),
	}
	if snap.Err != nil {
		d.Error = snap.Err.Error()
	}
	for _, it := range snap.Items {
		item := toCartItemDTO(it)
		if p, ok := products[it.ProductID]; ok {
			item.Product = &productDTO{Name: p.Name, Currency: p.Currency}
		}
		d.Items = append(d.Items, item)
	}
	return d
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"selectedSize"`
	Color     string `json:"selectedColor"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type optionDTO struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Region        string           `json:"region"`
	Price         *json.Number     `json:"price"`
	Free          bool             `json:"free"`
	AtDestination bool             `json:"atDestination"`
	FreeAt        *json.Number     `json:"freeAt,omitempty"`
	Transit       shipping.Transit `json:"transit"`
}

func toOptionDTOs(opts []shipping.Option) []optionDTO {
	out := make([]optionDTO, 0, len(opts))
	for _, o := range opts {
		d := optionDTO{
			ID:            o.ID,
			Name:          o.Name,
			Region:        string(o.Region),
			Free:          o.Free(),
			AtDestination: o.AtDestination(),
			Transit:       o.Transit,
		}
		if o.Price != nil {
			n := money.Number(*o.Price)
			d.Price = &n
		}
		if o.FreeAt != nil {
			n := money.Number(*o.FreeAt)
			d.FreeAt = &n
		}
		out = append(out, d)
	}
	return out
}

type summaryDTO struct {
	Subtotal              json.Number `json:"subtotal"`
	Shipping              json.Number `json:"shipping"`
	Tax                   json.Number `json:"tax"`
	Total                 json.Number `json:"total"`
	ShippingMethod        string      `json:"shippingMethod,omitempty"`
	ShippingAtDestination bool        `json:"shippingAtDestination"`
}

func toSummaryDTO(s checkoutdomain.Summary) summaryDTO {
	return summaryDTO{
		Subtotal:              money.Number(s.Subtotal),
		Shipping:              money.Number(s.Shipping),
		Tax:                   money.Number(s.Tax),
		Total:                 money.Number(s.Total),
		ShippingMethod:        s.ShippingMethod,
		ShippingAtDestination: s.ShippingAtDestination,
	}
}

type checkoutDTO struct {
	Step     int                        `json:"step"`
	StepName string                     `json:"stepName"`
	Form     checkoutdomain.FormData    `json:"form"`
	Errors   checkoutdomain.FieldErrors `json:"errors"`
	Options  []optionDTO                `json:"shippingOptions"`
	Summary  summaryDTO                 `json:"summary"`
}

func toCheckoutDTO(v checkoutapp.View) checkoutDTO {
	errs := v.Errors
	if errs == nil {
		errs = checkoutdomain.FieldErrors{}
	}
	return checkoutDTO{
		Step:     int(v.Step),
		StepName: v.Step.String(),
		Form:     v.Form,
		Errors:   errs,
		Options:  toOptionDTOs(v.Options),
		Summary:  toSummaryDTO(v.Summary),
	}
}

type stepDTO struct {
	Step     int                        `json:"step"`
	StepName string                     `json:"stepName"`
	Errors   checkoutdomain.FieldErrors `json:"errors,omitempty"`
}

type payRequest struct {
	PaymentMethodID string `json:"paymentMethodId"`
}

type payResponse struct {
	OrderID         string    `json:"orderId"`
	PaymentIntentID string    `json:"paymentIntentId"`
	ConfirmedAt     time.Time `json:"confirmedAt"`
}

type paymentStatusDTO struct {
	Status      string    `json:"status"`
	OrderID     string    `json:"orderId,omitempty"`
	OrderStatus string    `json:"orderStatus,omitempty"`
	Kind        string    `json:"errorKind,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}
