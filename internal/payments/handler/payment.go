package handler

import (
	"net/http"

	"courtside/internal/payments/service"
	httputil "courtside/pkg/http"
	"courtside/pkg/logger"
	"courtside/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type PaymentHandler struct {
	service service.PaymentService
	log     *logger.Logger
}

func NewPaymentHandler(service service.PaymentService, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log,
	}
}

func (h *PaymentHandler) Charge(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := httputil.Actor(r)
	if err != nil {
		h.writeError(w, "Charge", err)
		return
	}

	var req model.ChargeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Charge", err)
		return
	}

	result, err := h.service.Charge(r.Context(), actor, &req)
	if err != nil {
		h.writeError(w, "Charge", err)
		return
	}
	h.writeSettlement(w, "Charge", result)
}

func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := httputil.StaffActor(r)
	if err != nil {
		h.writeError(w, "Refund", err)
		return
	}

	var req model.RefundRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Refund", err)
		return
	}

	result, err := h.service.Refund(r.Context(), actor, &req)
	if err != nil {
		h.writeError(w, "Refund", err)
		return
	}
	h.writeSettlement(w, "Refund", result)
}

// Confirm is the settlement callback for gateways and for staff confirming
// transfers.
func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.StaffActor(r)
	if err != nil {
		h.writeError(w, "Confirm", err)
		return
	}

	var req model.SettlementConfirmation
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Confirm", err)
		return
	}

	result, err := h.service.ConfirmSettlement(r.Context(), actor, ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "Confirm", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Confirm", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PaymentHandler) Ledger(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.Actor(r)
	if err != nil {
		h.writeError(w, "Ledger", err)
		return
	}

	summary, err := h.service.Ledger(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Ledger", err)
		return
	}

	if err := httputil.WriteSuccess(w, summary); err != nil {
		h.log.Error("failed to write success response", "handler", "Ledger", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PaymentHandler) Wallet(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.Actor(r)
	if err != nil {
		h.writeError(w, "Wallet", err)
		return
	}

	wallet, err := h.service.Wallet(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Wallet", err)
		return
	}

	if err := httputil.WriteSuccess(w, wallet); err != nil {
		h.log.Error("failed to write success response", "handler", "Wallet", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PaymentHandler) TopUp(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.StaffActor(r)
	if err != nil {
		h.writeError(w, "TopUp", err)
		return
	}

	var req model.TopUpRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "TopUp", err)
		return
	}

	wallet, err := h.service.TopUp(r.Context(), actor, ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "TopUp", err)
		return
	}

	if err := httputil.WriteSuccess(w, wallet); err != nil {
		h.log.Error("failed to write success response", "handler", "TopUp", "operation", "WriteSuccess", "error", err)
	}
}

// writeSettlement answers 202 while the entry is still PENDING.
func (h *PaymentHandler) writeSettlement(w http.ResponseWriter, handler string, result *service.SettlementResult) {
	if result.Entry.Status == model.LedgerPending {
		if err := httputil.WriteJSON(w, http.StatusAccepted, httputil.SuccessResponse{Data: result}); err != nil {
			h.log.Error("failed to write accepted response", "handler", handler, "operation", "WriteJSON", "error", err)
		}
		return
	}
	if err := httputil.WriteCreated(w, result); err != nil {
		h.log.Error("failed to write created response", "handler", handler, "operation", "WriteCreated", "error", err)
	}
}

func (h *PaymentHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *PaymentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/payments/charge", h.Charge)
	router.POST("/api/v1/payments/refund", h.Refund)
	router.POST("/api/v1/payments/entries/:id/confirm", h.Confirm)
	router.GET("/api/v1/reservations/:id/ledger", h.Ledger)
	router.GET("/api/v1/wallets/:id", h.Wallet)
	router.POST("/api/v1/wallets/:id/top-up", h.TopUp)
}
