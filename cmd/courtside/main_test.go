package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"courtside/pkg/config"
	"courtside/pkg/model"
)

type envelope struct {
	Data       json.RawMessage `json:"data"`
	TotalCount int64           `json:"total_count"`
	Code       string          `json:"code"`
}

type apiClient struct {
	t       *testing.T
	baseURL string
}

func (c apiClient) do(method, path, actor string, role model.ActorRole, body any) (int, envelope) {
	c.t.Helper()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		c.t.Fatalf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != "" {
		req.Header.Set("X-Actor-ID", actor)
		req.Header.Set("X-Actor-Role", string(role))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && err != io.EOF {
		c.t.Fatalf("failed to decode %s %s response: %v", method, path, err)
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	return v
}

func newTestServer(t *testing.T) apiClient {
	t.Helper()
	t.Setenv(config.EnvStoreDriver, config.StoreDriverMemory)
	t.Setenv(config.EnvJobsEnabled, "false")
	t.Setenv(config.EnvLogLevel, "error")

	cfg := config.Load("courtside-test")
	srv := httptest.NewServer(newApplication(cfg).Handler())
	t.Cleanup(srv.Close)
	return apiClient{t: t, baseURL: srv.URL}
}

func TestReservationSettlementFlow(t *testing.T) {
	api := newTestServer(t)
	const (
		staff  = "desk-1"
		player = "player-1"
	)

	status, _ := api.do(http.MethodGet, "/ready", "", "", nil)
	if status != http.StatusOK {
		t.Fatalf("ready = %d", status)
	}

	status, env := api.do(http.MethodPost, "/api/v1/courts", staff, model.RoleStaff, model.Court{
		Name:            "Pista Central",
		Opens:           "08:00",
		Closes:          "22:00",
		HourlyRateCents: 2000,
		Active:          true,
	})
	if status != http.StatusCreated {
		t.Fatalf("create court = %d (%s)", status, env.Code)
	}
	court := decode[model.Court](t, env.Data)

	loc, _ := time.LoadLocation(config.DefaultTimeZone)
	now := time.Now().In(loc)
	start := time.Date(now.Year(), now.Month(), now.Day()+1, 10, 0, 0, 0, loc)
	booking := model.CreateReservationRequest{CourtID: court.ID, Start: start, DurationMinutes: 60}

	status, env = api.do(http.MethodPost, "/api/v1/reservations", player, model.RoleUser, booking)
	if status != http.StatusCreated {
		t.Fatalf("create reservation = %d (%s)", status, env.Code)
	}
	reservation := decode[struct {
		Reservation model.Reservation `json:"reservation"`
	}](t, env.Data).Reservation
	if reservation.TotalAmountCents != 2000 || reservation.PaymentStatus != model.PaymentPending {
		t.Fatalf("reservation = %+v", reservation)
	}

	status, env = api.do(http.MethodPost, "/api/v1/reservations", "player-2", model.RoleUser, booking)
	if status != http.StatusConflict || env.Code != "SLOT_CONFLICT" {
		t.Fatalf("overlapping reservation = %d (%s)", status, env.Code)
	}

	charge := model.ChargeRequest{ReservationID: reservation.ID, Method: model.MethodOnsite, AmountCents: 2000}
	status, env = api.do(http.MethodPost, "/api/v1/payments/charge", player, model.RoleUser, charge)
	if status != http.StatusForbidden {
		t.Fatalf("onsite charge by player = %d (%s)", status, env.Code)
	}
	status, env = api.do(http.MethodPost, "/api/v1/payments/charge", staff, model.RoleStaff, charge)
	if status != http.StatusCreated {
		t.Fatalf("charge = %d (%s)", status, env.Code)
	}
	status, env = api.do(http.MethodPost, "/api/v1/payments/charge", staff, model.RoleStaff, charge)
	if status != http.StatusConflict || env.Code != "ALREADY_SETTLED" {
		t.Fatalf("second charge = %d (%s)", status, env.Code)
	}

	status, env = api.do(http.MethodGet, "/api/v1/reservations/"+reservation.ID, player, model.RoleUser, nil)
	if status != http.StatusOK {
		t.Fatalf("get reservation = %d (%s)", status, env.Code)
	}
	paid := decode[model.Reservation](t, env.Data)
	if paid.Status != model.ReservationPaid || paid.PaymentStatus != model.PaymentPaid {
		t.Fatalf("after charge status = %s/%s", paid.Status, paid.PaymentStatus)
	}

	refund := model.RefundRequest{ReservationID: reservation.ID, AmountCents: 2500, Reason: "court lights failed"}
	status, env = api.do(http.MethodPost, "/api/v1/payments/refund", staff, model.RoleStaff, refund)
	if env.Code != "INVALID_REFUND_AMOUNT" {
		t.Fatalf("oversized refund = %d (%s)", status, env.Code)
	}
	refund.AmountCents = 500
	status, env = api.do(http.MethodPost, "/api/v1/payments/refund", staff, model.RoleStaff, refund)
	if status != http.StatusCreated {
		t.Fatalf("refund = %d (%s)", status, env.Code)
	}

	status, env = api.do(http.MethodGet, "/api/v1/reservations/"+reservation.ID+"/ledger", player, model.RoleUser, nil)
	if status != http.StatusOK {
		t.Fatalf("ledger = %d (%s)", status, env.Code)
	}
	ledger := decode[model.LedgerSummary](t, env.Data)
	if ledger.ChargedCents != 2000 || ledger.RefundedCents != 500 || ledger.NetPaidCents != 1500 {
		t.Errorf("ledger = %+v", ledger)
	}

	status, env = api.do(http.MethodGet, "/api/v1/audit/reservations/"+reservation.ID, staff, model.RoleStaff, nil)
	if status != http.StatusOK {
		t.Fatalf("audit = %d (%s)", status, env.Code)
	}
	if env.TotalCount < 2 {
		t.Errorf("audit events = %d, want at least created and paid", env.TotalCount)
	}
}

func TestRequestsWithoutIdentityAreRejected(t *testing.T) {
	api := newTestServer(t)

	status, env := api.do(http.MethodGet, "/api/v1/reservations", "", "", nil)
	if status != http.StatusUnauthorized || env.Code != "UNAUTHORIZED" {
		t.Fatalf("anonymous list = %d (%s)", status, env.Code)
	}
}
