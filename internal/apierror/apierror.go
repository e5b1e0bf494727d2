// Package apierror renders handler errors as JSON bodies of the form
// {"code", "message", "request_id"}.
package apierror

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/gyro-pay/gyro/internal/ledger"
)

// RequestIDKey is the fiber Locals key holding the request id.
const RequestIDKey = "X-Request-ID"

// Response is the error body returned by every endpoint.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

var statuses = map[string]int{
	"DuplicateTx":               http.StatusConflict,
	"InsufficientBalance":       http.StatusUnprocessableEntity,
	"BalanceDoesNotExist":       http.StatusNotFound,
	"InsufficientLiquidityFund": http.StatusUnprocessableEntity,
	"TransactionNotFound":       http.StatusNotFound,
	"TransactionIsEmpty":        http.StatusNotFound,
	"NotAuthorized":             http.StatusForbidden,
	"AlreadyRegistered":         http.StatusConflict,
	"NotRegistered":             http.StatusNotFound,
	"OwnerNotSet":               http.StatusConflict,
	"AlreadyAdmin":              http.StatusConflict,
	"LedgerPaused":              http.StatusServiceUnavailable,
	"AmountOverflow":            http.StatusUnprocessableEntity,
	"SelfTransfer":              http.StatusBadRequest,
	"UnknownAsset":              http.StatusBadRequest,
}

// Status maps a ledger error code to its HTTP status.
func Status(code string) int {
	if s, ok := statuses[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// BadRequest is a shorthand for malformed input.
func BadRequest(msg string) error {
	return fiber.NewError(http.StatusBadRequest, msg)
}

// Handler returns a fiber.ErrorHandler. Internal errors are logged and their
// message is withheld from the client.
func Handler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		requestID, _ := c.Locals(RequestIDKey).(string)

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(Response{
				Code:      http.StatusText(fe.Code),
				Message:   fe.Message,
				RequestID: requestID,
			})
		}

		code := ledger.Code(err)
		status := Status(code)
		msg := err.Error()
		if status == http.StatusInternalServerError {
			if logger != nil {
				logger.Error("unhandled error", "path", c.Path(), "request_id", requestID, "error", err)
			}
			msg = "internal error"
		}
		return c.Status(status).JSON(Response{Code: code, Message: msg, RequestID: requestID})
	}
}
