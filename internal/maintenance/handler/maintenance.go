package handler

import (
	"net/http"
	"time"

	"courtside/internal/maintenance/service"
	"courtside/pkg/clock"
	"courtside/pkg/config"
	httputil "courtside/pkg/http"
	"courtside/pkg/logger"
	"courtside/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type MaintenanceHandler struct {
	service service.MaintenanceService
	cfg     *config.Config
	log     *logger.Logger
}

func NewMaintenanceHandler(service service.MaintenanceService, cfg *config.Config) *MaintenanceHandler {
	return &MaintenanceHandler{
		service: service,
		cfg:     cfg,
		log:     cfg.Log,
	}
}

func (h *MaintenanceHandler) Create(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.StaffActor(r)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var window model.MaintenanceWindow
	if err := httputil.DecodeJSON(r, &window); err != nil {
		h.writeError(w, "Create", err)
		return
	}
	window.CourtID = ps.ByName("id")

	if err := h.service.Create(r.Context(), actor, &window); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, window); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

// ListForCourt defaults to the current local day when from/to are absent.
func (h *MaintenanceHandler) ListForCourt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	query := r.URL.Query()

	from := clock.StartOfDay(time.Now(), h.cfg.Location)
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

	windows, err := h.service.ListForCourt(r.Context(), ps.ByName("id"), from, to)
	if err != nil {
		h.writeError(w, "ListForCourt", err)
		return
	}

	if err := httputil.WriteSuccess(w, windows); err != nil {
		h.log.Error("failed to write success response", "handler", "ListForCourt", "operation", "WriteSuccess", "error", err)
	}
}

func (h *MaintenanceHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.StaffActor(r)
	if err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := h.service.Delete(r.Context(), actor, ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *MaintenanceHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *MaintenanceHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/courts/:id/maintenance", h.Create)
	router.GET("/api/v1/courts/:id/maintenance", h.ListForCourt)
	router.DELETE("/api/v1/maintenance/:id", h.Delete)
}
