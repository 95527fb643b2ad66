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

type EnrollmentHandler struct {
	service service.EnrollmentService
	log     *logger.Logger
}

func NewEnrollmentHandler(service service.EnrollmentService, log *logger.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		service: service,
		log:     log,
	}
}

func (h *EnrollmentHandler) Request(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := httputil.Actor(r)
	if err != nil {
		h.writeError(w, "Request", err)
		return
	}

	var req model.EnrollmentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Request", err)
		return
	}

	enrollment, err := h.service.Request(r.Context(), actor, &req)
	if err != nil {
		h.writeError(w, "Request", err)
		return
	}

	if err := httputil.WriteCreated(w, enrollment); err != nil {
		h.log.Error("failed to write created response", "handler", "Request", "operation", "WriteCreated", "error", err)
	}
}

func (h *EnrollmentHandler) Decide(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.StaffActor(r)
	if err != nil {
		h.writeError(w, "Decide", err)
		return
	}

	var req model.EnrollmentDecisionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Decide", err)
		return
	}

	enrollment, err := h.service.DecideEnrollment(r.Context(), actor, ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "Decide", err)
		return
	}

	if err := httputil.WriteSuccess(w, enrollment); err != nil {
		h.log.Error("failed to write success response", "handler", "Decide", "operation", "WriteSuccess", "error", err)
	}
}

// List returns the caller's own enrollments, or for staff passing ?status=,
// the review queue for that status.
func (h *EnrollmentHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := httputil.Actor(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	status := r.URL.Query().Get("status")
	if status == "" {
		enrollments, err := h.service.ListForUser(r.Context(), actor.ID)
		if err != nil {
			h.writeError(w, "List", err)
			return
		}
		if err := httputil.WriteSuccess(w, enrollments); err != nil {
			h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
		}
		return
	}

	if !actor.IsStaff() {
		h.writeError(w, "List", apperrors.Forbidden("staff role required"))
		return
	}
	switch model.EnrollmentStatus(status) {
	case model.EnrollmentPending, model.EnrollmentApproved, model.EnrollmentRejected, model.EnrollmentExpired:
	default:
		h.writeError(w, "List", apperrors.InvalidInput("unknown enrollment status: "+status))
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}
	enrollments, total, err := h.service.ListByStatus(r.Context(), model.EnrollmentStatus(status), limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}
	if err := httputil.WritePaginated(w, enrollments, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *EnrollmentHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *EnrollmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/enrollments", h.Request)
	router.GET("/api/v1/enrollments", h.List)
	router.POST("/api/v1/enrollments/:id/decision", h.Decide)
}
