package app_test

import (
	"encoding/json"
	"testing"

	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/internal/payment/app"
	"github.com/dwikikusuma/storefront/internal/shipping"
	"github.com/dwikikusuma/storefront/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIsDeterministic(t *testing.T) {
	o := order()
	first, err := app.Normalize(o, shipping.Default())
	require.NoError(t, err)
	second, err := app.Normalize(o, shipping.Default())
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestNormalizeCanonicalForm(t *testing.T) {
	o := order()
	o.User.ID = " u-1 "
	o.Form.Email = " Jeanne@Example.FR "
	o.Form.Country = "  france "
	o.Form.PaymentMethod = "CARD"
	o.Items = []cartdomain.CartItem{
		{ID: " ci-1 ", State: cartdomain.ItemConfirmed, ProductID: "p-1 ", VariantID: " v-2", Quantity: 3, UnitPrice: money.MustParse("3.333")},
	}
	o.Summary.Shipping = money.MustParse("7.99")
	o.Summary.Tax = money.MustParse("0.004")

	req, err := app.Normalize(o, shipping.Default())
	require.NoError(t, err)

	assert.Equal(t, "u-1", req.ClientID)
	assert.Equal(t, "jeanne@example.fr", req.FormData.Email)
	assert.Equal(t, "FR", req.FormData.CountryCode)
	assert.Equal(t, "card", req.PaymentMethod)

	item := req.Items[0]
	assert.Equal(t, "ci-1", item.ID)
	assert.Equal(t, "p-1", item.ProductID)
	assert.Equal(t, "v-2", item.VariantID)
	assert.Equal(t, "3.33", item.UnitPrice.String())
	assert.Equal(t, "10.00", item.LineTotal.String())

	assert.Equal(t, "10.00", req.Totals.Subtotal.String())
	assert.Equal(t, "0.00", req.Totals.Tax.String())
	assert.Equal(t, "17.99", req.Totals.Total.String())
}

func TestNormalizeRejects(t *testing.T) {
	t.Run("unknown country", func(t *testing.T) {
		o := order()
		o.Form.Country = "Narnia"
		_, err := app.Normalize(o, shipping.Default())
		require.ErrorIs(t, err, shipping.ErrUnsupportedCountry)
	})

	t.Run("zero quantity", func(t *testing.T) {
		o := order()
		o.Items[0].Quantity = 0
		_, err := app.Normalize(o, shipping.Default())
		require.Error(t, err)
	})

	t.Run("pending item", func(t *testing.T) {
		o := order()
		o.Items[0].State = cartdomain.ItemPending
		_, err := app.Normalize(o, shipping.Default())
		require.Error(t, err)
	})
}
