package handler

import (
	"net/http"

	"courtside/internal/audit/service"
	httputil "courtside/pkg/http"
	"courtside/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type AuditHandler struct {
	service service.AuditService
	log     *logger.Logger
}

func NewAuditHandler(service service.AuditService, log *logger.Logger) *AuditHandler {
	return &AuditHandler{
		service: service,
		log:     log,
	}
}

func (h *AuditHandler) ListBySubject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if _, err := httputil.StaffActor(r); err != nil {
		h.writeError(w, "ListBySubject", err)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListBySubject", err)
		return
	}

	events, total, err := h.service.ListBySubject(r.Context(), ps.ByName("subject"), ps.ByName("id"), limit, offset)
	if err != nil {
		h.writeError(w, "ListBySubject", err)
		return
	}

	if err := httputil.WritePaginated(w, events, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListBySubject", "operation", "WritePaginated", "error", err)
	}
}

func (h *AuditHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AuditHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/audit/:subject/:id", h.ListBySubject)
}
