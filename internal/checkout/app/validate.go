package app

import (
	"errors"
	"reflect"
	"strings"

	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/go-playground/validator/v10"
)

type contactAddress struct {
	Email      string `json:"email" validate:"required,email,max=254"`
	FirstName  string `json:"firstName" validate:"required,max=64"`
	LastName   string `json:"lastName" validate:"required,max=64"`
	Address1   string `json:"address1" validate:"required,max=128"`
	Address2   string `json:"address2" validate:"max=128"`
	PostalCode string `json:"postalCode" validate:"required,max=16"`
	City       string `json:"city" validate:"required,max=64"`
	Country    string `json:"country" validate:"required,max=64"`
	Phone      string `json:"phone" validate:"required,phone"`
}

type shippingStep struct {
	ShippingMethod string `json:"shippingMethod" validate:"required"`
}

type paymentStep struct {
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=card"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone", validPhone)
	return v
}

// validPhone accepts the usual human spellings: digits with optional
// leading +, spaces, dots, dashes and parentheses, 6 to 15 digits.
func validPhone(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	digits := 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '.' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 6 && digits <= 15
}

var messages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"max":      "is too long",
	"phone":    "must be a valid phone number",
	"oneof":    "is not supported",
}

// fieldErrors runs the struct validator and keeps the first failure per
// field.
func fieldErrors(v any) domain.FieldErrors {
	out := domain.FieldErrors{}
	err := validate.Struct(v)
	if err == nil {
		return out
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["_"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		msg, ok := messages[fe.Tag()]
		if !ok {
			msg = "is invalid"
		}
		out[fe.Field()] = msg
	}
	return out
}

func trimmed(f domain.FormData) domain.FormData {
	for _, p := range []*string{
		&f.Email, &f.FirstName, &f.LastName, &f.Address1, &f.Address2,
		&f.PostalCode, &f.City, &f.Country, &f.Phone, &f.ShippingMethod, &f.PaymentMethod,
	} {
		*p = strings.TrimSpace(*p)
	}
	return f
}
