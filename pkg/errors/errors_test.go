package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestWrap(t *testing.T) {
	originalErr := errors.New("replica set unreachable")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if errors.Unwrap(wrapped) != originalErr {
		t.Errorf("Unwrap() should return original error")
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   &AppError{Code: CodeSlotConflict, Message: "slot taken"},
			expected: "SLOT_CONFLICT: slot taken",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("write conflict"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: write conflict)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"slot conflict", SlotConflict("taken"), CodeSlotConflict, http.StatusConflict},
		{"invalid transition", InvalidTransition("COMPLETED", "cancel"), CodeInvalidTransition, http.StatusConflict},
		{"check-in window", CheckInWindowClosed("too early"), CodeCheckInWindowClosed, http.StatusUnprocessableEntity},
		{"payment required", PaymentRequired("pay first"), CodePaymentRequired, http.StatusPaymentRequired},
		{"already settled", AlreadySettled("r-1"), CodeAlreadySettled, http.StatusConflict},
		{"insufficient balance", InsufficientBalance(100, 500), CodeInsufficientBalance, http.StatusPaymentRequired},
		{"gateway timeout", GatewayTimeout("e-1"), CodeGatewayTimeout, http.StatusGatewayTimeout},
		{"gateway error", GatewayError("e-1", "connection reset"), CodeGatewayError, http.StatusBadGateway},
		{"declined", PaymentDeclined("e-1", "card_declined"), CodePaymentDeclined, http.StatusPaymentRequired},
		{"refund amount", InvalidRefundAmount(900, 500), CodeInvalidRefundAmount, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
			if tt.err.StatusCode() != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tt.err.StatusCode())
			}
		})
	}
}

func TestTransientErrorsAreRetryable(t *testing.T) {
	if GatewayTimeout("e-1").Details["retryable"] != true {
		t.Error("gateway timeout should be marked retryable")
	}
	if GatewayError("e-1", "reset").Details["retryable"] != true {
		t.Error("gateway error should be marked retryable")
	}
	if PaymentDeclined("e-1", "declined").Details["retryable"] != false {
		t.Error("declined payment must not be marked retryable")
	}
}

func TestInvalidTransition_Details(t *testing.T) {
	err := InvalidTransition("COMPLETED", "cancel")

	if err.Details["from"] != "COMPLETED" || err.Details["event"] != "cancel" {
		t.Errorf("unexpected details: %v", err.Details)
	}
	if !strings.Contains(err.Message, "COMPLETED") {
		t.Errorf("message should name the source status, got %q", err.Message)
	}
}

func TestWithDetail_AllocatesMap(t *testing.T) {
	err := Conflict("court under maintenance").WithDetail("court_id", "c-1")

	if err.Details["court_id"] != "c-1" {
		t.Errorf("expected court_id detail, got %v", err.Details)
	}
}

func TestIsAppError_Wrapped(t *testing.T) {
	appErr := NotFound("Reservation")
	wrapped := fmt.Errorf("loading: %w", appErr)

	if !IsAppError(wrapped) {
		t.Errorf("IsAppError() should see through fmt.Errorf wrapping")
	}
	if IsAppError(errors.New("plain")) {
		t.Errorf("IsAppError() should return false for regular error")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("Reservation")
	regularErr := errors.New("regular error")

	if AsAppError(appErr) != appErr {
		t.Errorf("AsAppError() should return same AppError")
	}

	result := AsAppError(regularErr)
	if result.Code != CodeInternal {
		t.Errorf("AsAppError() should wrap regular error as internal error")
	}
	if result.Err != regularErr {
		t.Errorf("AsAppError() should wrap the original error")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("charge: %w", AlreadySettled("r-1"))

	if !HasCode(err, CodeAlreadySettled) {
		t.Error("expected HasCode to match ALREADY_SETTLED")
	}
	if HasCode(err, CodeSlotConflict) {
		t.Error("HasCode matched the wrong code")
	}
}

func TestAppError_ToJSON(t *testing.T) {
	jsonStr := string(InvalidRefundAmount(900, 500).ToJSON())

	if !strings.Contains(jsonStr, CodeInvalidRefundAmount) {
		t.Errorf("ToJSON() should contain error code, got %s", jsonStr)
	}
	if !strings.Contains(jsonStr, "refundable_cents") {
		t.Errorf("ToJSON() should contain details, got %s", jsonStr)
	}
}
