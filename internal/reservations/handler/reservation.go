package handler

import (
	"context"
	"net/http"

	"courtside/internal/reservations/service"
	"courtside/pkg/clock"
	"courtside/pkg/config"
	httputil "courtside/pkg/http"
	"courtside/pkg/logger"
	"courtside/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ReservationHandler struct {
	service service.ReservationService
	clock   clock.Clock
	cfg     *config.Config
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, clk clock.Clock, cfg *config.Config) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		clock:   clk,
		cfg:     cfg,
		log:     cfg.Log,
	}
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := httputil.Actor(r)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var req model.CreateReservationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	result, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, result); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReservationHandler) Quote(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := httputil.Actor(r)
	if err != nil {
		h.writeError(w, "Quote", err)
		return
	}

	var req model.CreateReservationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Quote", err)
		return
	}

	quote, err := h.service.Quote(r.Context(), actor, &req)
	if err != nil {
		h.writeError(w, "Quote", err)
		return
	}

	if err := httputil.WriteSuccess(w, quote); err != nil {
		h.log.Error("failed to write success response", "handler", "Quote", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.Actor(r)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	reservation, err := h.service.GetForActor(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

// ListMine lists the caller's reservations, newest first.
func (h *ReservationHandler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := httputil.Actor(r)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	reservations, total, err := h.service.ListForUser(r.Context(), actor.ID, limit, offset)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	if err := httputil.WritePaginated(w, reservations, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListMine", "operation", "WritePaginated", "error", err)
	}
}

// ListForCourt is the staff day sheet; from/to default to the current day.
func (h *ReservationHandler) ListForCourt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if _, err := httputil.StaffActor(r); err != nil {
		h.writeError(w, "ListForCourt", err)
		return
	}

	query := r.URL.Query()
	from := clock.StartOfDay(h.clock.Now(), h.cfg.Location)
	if s := query.Get("from"); s != "" {
		d, err := httputil.ParseDate(s, h.cfg.Location)
		if err != nil {
			h.writeError(w, "ListForCourt", err)
			return
		}
		from = d
	}
	to := from.AddDate(0, 0, 1)
	if s := query.Get("to"); s != "" {
		d, err := httputil.ParseDate(s, h.cfg.Location)
		if err != nil {
			h.writeError(w, "ListForCourt", err)
			return
		}
		to = d.AddDate(0, 0, 1)
	}

	reservations, err := h.service.ListForCourt(r.Context(), ps.ByName("id"), from, to)
	if err != nil {
		h.writeError(w, "ListForCourt", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservations); err != nil {
		h.log.Error("failed to write success response", "handler", "ListForCourt", "operation", "WriteSuccess", "error", err)
	}
}

type transitionFunc func(ctx context.Context, actor model.Actor, id string) (*model.Reservation, error)

// command adapts a lifecycle operation to a bodiless POST handler.
func (h *ReservationHandler) command(name string, fn transitionFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		actor, err := httputil.Actor(r)
		if err != nil {
			h.writeError(w, name, err)
			return
		}

		reservation, err := fn(r.Context(), actor, ps.ByName("id"))
		if err != nil {
			h.writeError(w, name, err)
			return
		}

		if err := httputil.WriteSuccess(w, reservation); err != nil {
			h.log.Error("failed to write success response", "handler", name, "operation", "WriteSuccess", "error", err)
		}
	}
}

func (h *ReservationHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/quotes", h.Quote)
	router.POST("/api/v1/reservations", h.Create)
	router.GET("/api/v1/reservations", h.ListMine)
	router.GET("/api/v1/reservations/:id", h.GetByID)
	router.POST("/api/v1/reservations/:id/check-in", h.command("CheckIn", h.service.CheckIn))
	router.POST("/api/v1/reservations/:id/check-out", h.command("CheckOut", h.service.CheckOut))
	router.POST("/api/v1/reservations/:id/cancel", h.command("Cancel", h.service.Cancel))
	router.POST("/api/v1/reservations/:id/no-show", h.command("MarkNoShow", h.service.MarkNoShow))
	router.GET("/api/v1/courts/:id/reservations", h.ListForCourt)
}
