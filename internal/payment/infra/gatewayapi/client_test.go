package gatewayapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dwikikusuma/storefront/internal/payment/app"
	"github.com/dwikikusuma/storefront/pkg/httpjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	hc := httpjson.New(srv.URL, time.Second, httpjson.WithHeader("Authorization", "Bearer sk_test"))
	return New(hc, srv.URL, "sk_test")
}

func TestConfirmCardPayment(t *testing.T) {
	var got confirmDTO
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_intents/pi_123/confirm", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(intentDTO{ID: "pi_123", Status: "succeeded"})
	})

	pi, err := c.ConfirmCardPayment(context.Background(), "pi_123_secret_xyz",
		app.Credential{PaymentMethodID: "pm_1"},
		app.Billing{Name: "Jeanne Martin", CountryCode: "FR", City: "Lyon"})
	require.NoError(t, err)

	assert.Equal(t, app.PaymentIntent{ID: "pi_123", Status: "succeeded"}, pi)
	assert.Equal(t, "pi_123_secret_xyz", got.ClientSecret)
	assert.Equal(t, "pm_1", got.PaymentMethod)
	assert.Equal(t, "FR", got.BillingDetails.Address.Country)
}

func TestConfirmCardPaymentDeclined(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"code":"card_declined","decline_code":"insufficient_funds","message":"Your card has insufficient funds."}}`))
	})

	_, err := c.ConfirmCardPayment(context.Background(), "pi_1_secret_a", app.Credential{PaymentMethodID: "pm_1"}, app.Billing{})

	var gerr *app.GatewayError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "insufficient_funds", gerr.Code)
	assert.Equal(t, "Your card has insufficient funds.", gerr.Message)
}

func TestConfirmCardPaymentServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.ConfirmCardPayment(context.Background(), "pi_1_secret_a", app.Credential{PaymentMethodID: "pm_1"}, app.Billing{})
	require.Error(t, err)
	var gerr *app.GatewayError
	assert.False(t, errors.As(err, &gerr))
	assert.True(t, httpjson.IsStatus(err, http.StatusBadGateway))
}

func TestNotReadyMakesNoCall(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ }))
	defer srv.Close()

	c := New(httpjson.New(srv.URL, time.Second), srv.URL, "")
	assert.False(t, c.Ready())
	_, err := c.ConfirmCardPayment(context.Background(), "pi_1_secret_a", app.Credential{}, app.Billing{})
	require.Error(t, err)
	assert.Zero(t, calls)
}

func TestIntentID(t *testing.T) {
	id, ok := intentID("pi_3Mtw_secret_YrKJ")
	assert.True(t, ok)
	assert.Equal(t, "pi_3Mtw", id)

	_, ok = intentID("nosecret")
	assert.False(t, ok)
	_, ok = intentID("_secret_abc")
	assert.False(t, ok)
}
