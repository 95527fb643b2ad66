package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeBadRequest   = "BAD_REQUEST"
	CodeTimeout      = "TIMEOUT"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
	CodeInvalidInput = "INVALID_INPUT"

	CodeSlotConflict        = "SLOT_CONFLICT"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeCheckInWindowClosed = "CHECK_IN_WINDOW_CLOSED"
	CodePaymentRequired     = "PAYMENT_REQUIRED"
	CodeAlreadySettled      = "ALREADY_SETTLED"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeGatewayTimeout      = "GATEWAY_TIMEOUT"
	CodeGatewayError        = "GATEWAY_ERROR"
	CodePaymentDeclined     = "PAYMENT_DECLINED"
	CodeInvalidRefundAmount = "INVALID_REFUND_AMOUNT"
)

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func (e *AppError) ToJSON() []byte {
	response := ErrorResponse{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
	data, _ := json.Marshal(response)
	return data
}

type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

// WithDetail sets a single detail key, allocating the map if needed.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func NotFoundWithID(resource, id string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func Timeout(message string) *AppError {
	return &AppError{
		Code:       CodeTimeout,
		Message:    message,
		HTTPStatus: http.StatusGatewayTimeout,
	}
}

func Unavailable(service string) *AppError {
	return &AppError{
		Code:       CodeUnavailable,
		Message:    fmt.Sprintf("%s is temporarily unavailable", service),
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// SlotConflict is returned when the requested interval is no longer free.
func SlotConflict(message string) *AppError {
	return &AppError{
		Code:       CodeSlotConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

func InvalidTransition(from, event string) *AppError {
	return &AppError{
		Code:       CodeInvalidTransition,
		Message:    fmt.Sprintf("cannot %s from status %s", event, from),
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"from":  from,
			"event": event,
		},
	}
}

func CheckInWindowClosed(message string) *AppError {
	return &AppError{
		Code:       CodeCheckInWindowClosed,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

func PaymentRequired(message string) *AppError {
	return &AppError{
		Code:       CodePaymentRequired,
		Message:    message,
		HTTPStatus: http.StatusPaymentRequired,
	}
}

func AlreadySettled(reservationID string) *AppError {
	return &AppError{
		Code:       CodeAlreadySettled,
		Message:    "reservation already has a pending or successful charge",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"reservation_id": reservationID},
	}
}

func InsufficientBalance(balance, amount int64) *AppError {
	return &AppError{
		Code:       CodeInsufficientBalance,
		Message:    "wallet balance is lower than the amount to charge",
		HTTPStatus: http.StatusPaymentRequired,
		Details: map[string]any{
			"balance_cents": balance,
			"amount_cents":  amount,
		},
	}
}

// GatewayTimeout marks a settlement whose outcome is unknown. The ledger entry
// stays pending until a callback or the reconciliation sweep finalizes it.
func GatewayTimeout(entryID string) *AppError {
	return &AppError{
		Code:       CodeGatewayTimeout,
		Message:    "payment gateway did not answer in time",
		HTTPStatus: http.StatusGatewayTimeout,
		Details: map[string]any{
			"ledger_entry_id": entryID,
			"retryable":       true,
		},
	}
}

func GatewayError(entryID, reason string) *AppError {
	return &AppError{
		Code:       CodeGatewayError,
		Message:    "payment gateway failed transiently",
		HTTPStatus: http.StatusBadGateway,
		Details: map[string]any{
			"ledger_entry_id": entryID,
			"reason":          reason,
			"retryable":       true,
		},
	}
}

func PaymentDeclined(entryID, reason string) *AppError {
	return &AppError{
		Code:       CodePaymentDeclined,
		Message:    "payment was declined",
		HTTPStatus: http.StatusPaymentRequired,
		Details: map[string]any{
			"ledger_entry_id": entryID,
			"reason":          reason,
			"retryable":       false,
		},
	}
}

func InvalidRefundAmount(requested, refundable int64) *AppError {
	return &AppError{
		Code:       CodeInvalidRefundAmount,
		Message:    "refund amount exceeds the refundable balance",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"requested_cents":  requested,
			"refundable_cents": refundable,
		},
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
