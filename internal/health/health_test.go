package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"courtside/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		pinger     Pinger
		wantStatus int
		wantBody   string
	}{
		{name: "liveness", path: "/health", pinger: StoreReady, wantStatus: http.StatusOK, wantBody: "ok"},
		{name: "ready", path: "/ready", pinger: StoreReady, wantStatus: http.StatusOK, wantBody: "ready"},
		{
			name: "store down",
			path: "/ready",
			pinger: PingerFunc(func(context.Context) error {
				return errors.New("connection refused")
			}),
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := httprouter.New()
			NewHandler(tt.pinger, logger.Discard()).RegisterRoutes(router)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var resp Response
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != tt.wantBody {
				t.Errorf("status field = %q, want %q", resp.Status, tt.wantBody)
			}
		})
	}
}
