// Package gatewayapi confirms card payments against the payment gateway's
// REST API.
package gatewayapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dwikikusuma/storefront/internal/payment/app"
	"github.com/dwikikusuma/storefront/pkg/httpjson"
)

const secretMarker = "_secret_"

type billingDTO struct {
	Name    string     `json:"name,omitempty"`
	Email   string     `json:"email,omitempty"`
	Phone   string     `json:"phone,omitempty"`
	Address addressDTO `json:"address"`
}

type addressDTO struct {
	Line1      string `json:"line1,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	City       string `json:"city,omitempty"`
	Country    string `json:"country,omitempty"`
}

type confirmDTO struct {
	ClientSecret   string     `json:"client_secret"`
	PaymentMethod  string     `json:"payment_method"`
	BillingDetails billingDTO `json:"billing_details"`
}

type intentDTO struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type errorDTO struct {
	Error struct {
		Code        string `json:"code"`
		DeclineCode string `json:"decline_code"`
		Message     string `json:"message"`
	} `json:"error"`
}

// Client implements app.Gateway.
type Client struct {
	c     *httpjson.Client
	ready bool
}

var _ app.Gateway = (*Client)(nil)

// New returns a client authenticated with key. Without a base URL or key
// the client reports not ready and makes no calls.
func New(c *httpjson.Client, baseURL, key string) *Client {
	return &Client{c: c, ready: baseURL != "" && key != ""}
}

func (g *Client) Ready() bool { return g.ready }

// ConfirmCardPayment confirms the intent the client secret belongs to.
// Refusals reported by the gateway come back as *app.GatewayError.
func (g *Client) ConfirmCardPayment(ctx context.Context, clientSecret string, cred app.Credential, billing app.Billing) (app.PaymentIntent, error) {
	if !g.ready {
		return app.PaymentIntent{}, errors.New("gateway: not configured")
	}
	id, ok := intentID(clientSecret)
	if !ok {
		return app.PaymentIntent{}, errors.New("gateway: malformed client secret")
	}

	body := confirmDTO{
		ClientSecret:  clientSecret,
		PaymentMethod: cred.PaymentMethodID,
		BillingDetails: billingDTO{
			Name:  billing.Name,
			Email: billing.Email,
			Phone: billing.Phone,
			Address: addressDTO{
				Line1:      billing.Line1,
				PostalCode: billing.PostalCode,
				City:       billing.City,
				Country:    billing.CountryCode,
			},
		},
	}

	var out intentDTO
	path := "/v1/payment_intents/" + url.PathEscape(id) + "/confirm"
	if err := g.c.Do(ctx, http.MethodPost, path, nil, body, &out); err != nil {
		return app.PaymentIntent{}, refusal(err)
	}
	return app.PaymentIntent{ID: out.ID, Status: out.Status}, nil
}

// intentID is the part of a client secret before "_secret_".
func intentID(clientSecret string) (string, bool) {
	id, _, ok := strings.Cut(clientSecret, secretMarker)
	return id, ok && id != ""
}

func refusal(err error) error {
	var se *httpjson.StatusError
	if !errors.As(err, &se) || se.Code >= http.StatusInternalServerError {
		return fmt.Errorf("gateway: %w", err)
	}
	var env errorDTO
	_ = json.Unmarshal(se.Body, &env)
	code := env.Error.DeclineCode
	if code == "" {
		code = env.Error.Code
	}
	msg := env.Error.Message
	if msg == "" {
		msg = se.Message
	}
	return &app.GatewayError{Code: code, Message: msg}
}
