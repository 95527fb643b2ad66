package handler

import (
	"net/http"
	"strings"

	"courtside/internal/availability/service"
	"courtside/pkg/clock"
	"courtside/pkg/config"
	httputil "courtside/pkg/http"
	"courtside/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type AvailabilityHandler struct {
	service service.AvailabilityService
	clock   clock.Clock
	cfg     *config.Config
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, clk clock.Clock, cfg *config.Config) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		clock:   clk,
		cfg:     cfg,
		log:     cfg.Log,
	}
}

type availabilityResponse struct {
	CourtID         string         `json:"court_id"`
	Date            string         `json:"date"`
	DurationMinutes int            `json:"duration_minutes"`
	Slots           []service.Slot `json:"slots"`
}

// ForCourt is public; X-User-ID is optional and only marks the caller's own
// bookings as USER_BOOKED.
func (h *AvailabilityHandler) ForCourt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	date := clock.StartOfDay(h.clock.Now(), h.cfg.Location)
	if s := r.URL.Query().Get("date"); s != "" {
		d, err := httputil.ParseDate(s, h.cfg.Location)
		if err != nil {
			h.writeError(w, "ForCourt", err)
			return
		}
		date = d
	}

	duration, err := httputil.QueryInt(r, "duration", h.cfg.DefaultSlotMinutes)
	if err != nil {
		h.writeError(w, "ForCourt", err)
		return
	}

	query := service.Query{
		CourtID:         ps.ByName("id"),
		Date:            date,
		DurationMinutes: duration,
		UserID:          strings.TrimSpace(r.Header.Get(httputil.HeaderUserID)),
	}
	slots, err := h.service.ForCourt(r.Context(), query)
	if err != nil {
		h.writeError(w, "ForCourt", err)
		return
	}

	resp := availabilityResponse{
		CourtID:         query.CourtID,
		Date:            date.Format(httputil.DateLayout),
		DurationMinutes: duration,
		Slots:           slots,
	}
	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "ForCourt", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/courts/:id/availability", h.ForCourt)
}
