package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"courtside/pkg/logger"
)

func TestCallerRateLimiter_Allow(t *testing.T) {
	limiter := NewCallerRateLimiter(2, time.Minute, nil, logger.Discard())
	defer limiter.Stop()

	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	if !limiter.Allow("u1") || !limiter.Allow("u1") {
		t.Fatal("first two requests should pass")
	}
	if limiter.Allow("u1") {
		t.Error("third request inside the window should be rejected")
	}
	if !limiter.Allow("u2") {
		t.Error("other callers are independent")
	}
	if !limiter.Allow("") {
		t.Error("anonymous requests are not limited")
	}

	now = now.Add(time.Minute)
	if !limiter.Allow("u1") {
		t.Error("window should have slid")
	}
}

func TestIdempotency_ReplaysPerCaller(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls int32
	handler := Idempotency(store, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))

	send := func(user string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/v1/payments/charge", strings.NewReader(`{}`))
		r.Header.Set("Idempotency-Key", "abc")
		r.Header.Set("X-User-ID", user)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	first := send("u1")
	second := send("u1")
	send("u2")

	if first.Code != http.StatusCreated || second.Code != http.StatusCreated {
		t.Fatalf("unexpected codes %d %d", first.Code, second.Code)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("expected handler to run once per caller, ran %d times", got)
	}
}

func TestIdempotency_InFlightKeyIsReserved(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	entered := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	handler := Idempotency(store, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(entered)
			<-release
		}
		w.WriteHeader(http.StatusCreated)
	}))

	send := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/v1/payments/charge", strings.NewReader(`{}`))
		r.Header.Set("Idempotency-Key", "k1")
		r.Header.Set("X-User-ID", "u1")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	done := make(chan *httptest.ResponseRecorder)
	go func() { done <- send() }()
	<-entered

	concurrent := send()
	if concurrent.Code != http.StatusConflict || !strings.Contains(concurrent.Body.String(), `"CONFLICT"`) {
		t.Errorf("expected CONFLICT while the first request runs, got %d %s", concurrent.Code, concurrent.Body.String())
	}

	close(release)
	if first := <-done; first.Code != http.StatusCreated {
		t.Fatalf("first request = %d", first.Code)
	}
	if replayed := send(); replayed.Code != http.StatusCreated {
		t.Errorf("expected replay after completion, got %d", replayed.Code)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("handler ran %d times, want 1", got)
	}
}

func TestIdempotency_FailureReleasesKey(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	status := http.StatusServiceUnavailable
	var calls int32
	handler := Idempotency(store, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(status)
	}))

	send := func() int {
		r := httptest.NewRequest(http.MethodPost, "/api/v1/payments/refund", strings.NewReader(`{}`))
		r.Header.Set("Idempotency-Key", "k2")
		r.Header.Set("X-User-ID", "u1")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w.Code
	}

	if code := send(); code != http.StatusServiceUnavailable {
		t.Fatalf("first = %d", code)
	}
	status = http.StatusCreated
	if code := send(); code != http.StatusCreated {
		t.Errorf("retry after failure = %d, want 201", code)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("handler ran %d times, want 2", got)
	}
}

func TestContentTypeValidation_AllowsEmptyBody(t *testing.T) {
	handler := ContentTypeValidation(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodPost, "/api/v1/reservations/x/check-in", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("bodiless POST should pass, got %d", w.Code)
	}

	r = httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader("court=1"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d", w.Code)
	}
}

func TestRecovery(t *testing.T) {
	handler := Recovery(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"code":"INTERNAL_ERROR"`) {
		t.Errorf("expected internal error envelope, got %s", w.Body.String())
	}
}

func TestRequestTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	handler := RequestTimeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/payments/charge", nil))
	if w.Code != http.StatusGatewayTimeout {
		t.Errorf("expected 504, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"code":"TIMEOUT"`) {
		t.Errorf("expected timeout envelope, got %s", w.Body.String())
	}
}
