package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	confirmapp "github.com/dwikikusuma/storefront/internal/confirmation/app"
	paymentapp "github.com/dwikikusuma/storefront/internal/payment/app"
	"github.com/dwikikusuma/storefront/internal/shipping"
	"github.com/dwikikusuma/storefront/pkg/httpjson"
	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	OrderID string `json:"orderId,omitempty"`
}

// toStatus maps application errors onto gRPC status codes, the common
// vocabulary both transports are derived from.
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}

	var perr *paymentapp.Error
	if errors.As(err, &perr) {
		switch perr.Kind {
		case paymentapp.KindValidation:
			return status.Error(codes.InvalidArgument, perr.UserMessage())
		case paymentapp.KindUnverified:
			return status.Error(codes.Unknown, perr.UserMessage())
		case paymentapp.KindPrecondition:
			if errors.Is(err, paymentapp.ErrPaymentInProgress) {
				return status.Error(codes.Aborted, perr.UserMessage())
			}
			return status.Error(codes.FailedPrecondition, perr.UserMessage())
		default:
			return status.Error(codes.FailedPrecondition, perr.UserMessage())
		}
	}

	var se *httpjson.StatusError
	switch {
	case errors.Is(err, cartapp.ErrInvalidInput),
		errors.Is(err, catalogapp.ErrInvalidInput),
		errors.Is(err, confirmapp.ErrInvalidInput),
		errors.Is(err, shipping.ErrUnsupportedCountry):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, cartapp.ErrNotFound), errors.Is(err, catalogapp.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, cartapp.ErrItemPending), errors.Is(err, cartapp.ErrOutcomeUnknown):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, checkoutapp.ErrLastStep):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, cartapp.ErrDetached):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.As(err, &se):
		if se.Code >= http.StatusInternalServerError {
			return status.Error(codes.Unavailable, err.Error())
		}
		if se.Code == http.StatusNotFound {
			return status.Error(codes.NotFound, err.Error())
		}
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// httpStatusFromGRPC returns the HTTP status, the error code name and the
// message for err.
func httpStatusFromGRPC(err error) (int, string, string) {
	st, ok := status.FromError(err)
	if !ok {
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}

	switch st.Code() {
	case codes.InvalidArgument:
		return http.StatusBadRequest, "INVALID_ARGUMENT", st.Message()
	case codes.NotFound:
		return http.StatusNotFound, "NOT_FOUND", st.Message()
	case codes.AlreadyExists:
		return http.StatusConflict, "ALREADY_EXISTS", st.Message()
	case codes.Aborted:
		return http.StatusConflict, "ABORTED", st.Message()
	case codes.FailedPrecondition:
		return http.StatusUnprocessableEntity, "FAILED_PRECONDITION", st.Message()
	case codes.Unauthenticated:
		return http.StatusUnauthorized, "UNAUTHENTICATED", st.Message()
	case codes.PermissionDenied:
		return http.StatusForbidden, "PERMISSION_DENIED", st.Message()
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests, "RESOURCE_EXHAUSTED", st.Message()
	case codes.Unknown:
		return http.StatusBadGateway, "UNKNOWN", st.Message()
	case codes.Unavailable, codes.DeadlineExceeded:
		return http.StatusServiceUnavailable, "UNAVAILABLE", st.Message()
	default:
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}
}

func (s *Server) writeError(c *gin.Context, err error) {
	var perr *paymentapp.Error
	if errors.As(err, &perr) && perr.Kind == paymentapp.KindReconciliation {
		// The payment went through: never present this as a failure to retry.
		c.JSON(http.StatusAccepted, errorBody{
			Code:    "RECONCILIATION_PENDING",
			Message: perr.UserMessage(),
			OrderID: perr.OrderID,
		})
		return
	}

	code, name, msg := httpStatusFromGRPC(toStatus(err))
	if code >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.FullPath(), "err", err)
	}
	body := errorBody{Code: name, Message: msg}
	if perr != nil {
		body.Code = strings.ToUpper(string(perr.Kind))
		body.OrderID = perr.OrderID
	}
	c.JSON(code, body)
}
