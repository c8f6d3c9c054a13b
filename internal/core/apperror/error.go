// Package apperror provides structured error handling for the ledger engine.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// Error codes grouped by failure class
const (
	// Infrastructure errors (5xx). Retryable by the caller after
	// confirming no partial effect was committed.
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"
	CodeTimeout  = "TIMEOUT_ERROR"

	// Validation errors (400)
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"

	// Business rule violations (422)
	CodeInsufficientStock             = "INSUFFICIENT_STOCK"
	CodeInsufficientDealerStock       = "INSUFFICIENT_DEALER_STOCK"
	CodeInsufficientDealerCustBalance = "INSUFFICIENT_DEALER_CUSTOMER_BALANCE"
	CodeExcessPayment                 = "EXCESS_PAYMENT"
	CodeInvalidTransition             = "INVALID_TRANSITION"
	CodeConcurrentModification        = "CONCURRENT_MODIFICATION"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict = "CONFLICT"
)

// AppError is the standard error type for the platform.
// It implements the error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, quantities, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404).
// An entity referenced from another tenant is reported as not found:
// cross-tenant probes must be indistinguishable from missing rows.
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInsufficientStock creates a central warehouse stock shortage error
func NewInsufficientStock(productID string, requested, available int64) *AppError {
	return &AppError{
		Code:       CodeInsufficientStock,
		Message:    "Insufficient stock",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"product_id": productID,
			"requested":  requested,
			"available":  available,
		},
	}
}

// NewInsufficientDealerStock creates a dealer consignment shortage error
func NewInsufficientDealerStock(dealerID, productID string, requested, available int64) *AppError {
	return &AppError{
		Code:       CodeInsufficientDealerStock,
		Message:    "Insufficient dealer stock",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"dealer_id":  dealerID,
			"product_id": productID,
			"requested":  requested,
			"available":  available,
		},
	}
}

// NewExcessPayment is returned when a payment exceeds the debtor's current balance
func NewExcessPayment(debtorID string, amount, debt decimal.Decimal) *AppError {
	return &AppError{
		Code:       CodeExcessPayment,
		Message:    "Payment exceeds current debt",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"debtor_id": debtorID,
			"amount":    amount.String(),
			"debt":      debt.String(),
		},
	}
}

// NewInsufficientDealerCustomerBalance is the dealer sub-customer analogue of
// NewExcessPayment: the payment exceeds what the sub-customer owes.
func NewInsufficientDealerCustomerBalance(dealerCustomerID string, amount, debt decimal.Decimal) *AppError {
	return &AppError{
		Code:       CodeInsufficientDealerCustBalance,
		Message:    "Payment exceeds dealer customer balance",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"dealer_customer_id": dealerCustomerID,
			"amount":             amount.String(),
			"debt":               debt.String(),
		},
	}
}

// NewInvalidTransition creates an illegal sale status change error
func NewInvalidTransition(from, to string) *AppError {
	return &AppError{
		Code:       CodeInvalidTransition,
		Message:    fmt.Sprintf("Cannot transition sale from %s to %s", from, to),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"from": from, "to": to},
	}
}

// NewConcurrentModification creates an optimistic locking error
func NewConcurrentModification(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeConcurrentModification,
		Message:    "Record was modified by another user. Please refresh and try again.",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewDatabase wraps an unexpected store failure. The transaction has been
// rolled back; the caller may retry the whole operation.
func NewDatabase(err error) *AppError {
	return &AppError{
		Code:       CodeDatabase,
		Message:    "Storage failure, operation was not applied",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// NewTimeout is returned when a transaction cannot acquire its locks in time.
func NewTimeout(err error) *AppError {
	return &AppError{
		Code:       CodeTimeout,
		Message:    "Operation timed out, no changes were applied",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// HasCode checks the error code in the chain
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// IsRetryable reports whether the failure is infrastructural and the caller
// may retry after confirming no partial effect occurred.
func IsRetryable(err error) bool {
	return HasCode(err, CodeDatabase) || HasCode(err, CodeTimeout)
}
