package handler

import (
	"net/http"

	"courtside/internal/tariffs/service"
	apperrors "courtside/pkg/errors"
	httputil "courtside/pkg/http"
	"courtside/pkg/logger"
	"courtside/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type TariffHandler struct {
	tariffs service.TariffService
	promos  service.PromoService
	log     *logger.Logger
}

func NewTariffHandler(tariffs service.TariffService, promos service.PromoService, log *logger.Logger) *TariffHandler {
	return &TariffHandler{
		tariffs: tariffs,
		promos:  promos,
		log:     log,
	}
}

func (h *TariffHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := httputil.StaffActor(r)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var tariff model.Tariff
	if err := httputil.DecodeJSON(r, &tariff); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := h.tariffs.Create(r.Context(), actor, &tariff); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, tariff); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *TariffHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tariff, err := h.tariffs.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, tariff); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *TariffHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	tariffs, total, err := h.tariffs.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, tariffs, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *TariffHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.StaffActor(r)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	var updates model.TariffUpdate
	if err := httputil.DecodeJSON(r, &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	tariff, err := h.tariffs.Update(r.Context(), actor, ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, tariff); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *TariffHandler) CreatePromo(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := httputil.StaffActor(r)
	if err != nil {
		h.writeError(w, "CreatePromo", err)
		return
	}

	var promo model.PromoCode
	if err := httputil.DecodeJSON(r, &promo); err != nil {
		h.writeError(w, "CreatePromo", err)
		return
	}

	if err := h.promos.Create(r.Context(), actor, &promo); err != nil {
		h.writeError(w, "CreatePromo", err)
		return
	}

	if err := httputil.WriteCreated(w, promo); err != nil {
		h.log.Error("failed to write created response", "handler", "CreatePromo", "operation", "WriteCreated", "error", err)
	}
}

func (h *TariffHandler) GetAllPromos(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if _, err := httputil.StaffActor(r); err != nil {
		h.writeError(w, "GetAllPromos", err)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAllPromos", err)
		return
	}

	promos, total, err := h.promos.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAllPromos", err)
		return
	}

	if err := httputil.WritePaginated(w, promos, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAllPromos", "operation", "WritePaginated", "error", err)
	}
}

type promoActiveRequest struct {
	Active *bool `json:"active"`
}

func (h *TariffHandler) SetPromoActive(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.StaffActor(r)
	if err != nil {
		h.writeError(w, "SetPromoActive", err)
		return
	}

	var req promoActiveRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "SetPromoActive", err)
		return
	}
	if req.Active == nil {
		h.writeError(w, "SetPromoActive", apperrors.InvalidInput("active is required"))
		return
	}

	if err := h.promos.SetActive(r.Context(), actor, ps.ByName("code"), *req.Active); err != nil {
		h.writeError(w, "SetPromoActive", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *TariffHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *TariffHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/tariffs", h.Create)
	router.GET("/api/v1/tariffs", h.GetAll)
	router.GET("/api/v1/tariffs/:id", h.GetByID)
	router.PATCH("/api/v1/tariffs/:id", h.Update)

	router.POST("/api/v1/promos", h.CreatePromo)
	router.GET("/api/v1/promos", h.GetAllPromos)
	router.PATCH("/api/v1/promos/:code", h.SetPromoActive)
}
