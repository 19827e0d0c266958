package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"birthregistry/internal/registration"
	"birthregistry/internal/transport/http/shared"
	id "birthregistry/pkg/domain"
	dErrors "birthregistry/pkg/domain-errors"
	"birthregistry/pkg/requestcontext"
)

// handleSubmit creates a parent registration from a hospital ID lookup plus
// the intake fields.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registration.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	reg, err := h.workflow.Submit(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "submission failed",
			"hospital_id", req.HospitalID,
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, reg)
}

// handleGetStatus reconciles against the admin action log before answering,
// so the citizen-facing view never lags a decision.
func (h *Handler) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	regNumber, err := id.ParseRegistrationNumber(chi.URLParam(r, "regNumber"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	reg, err := h.workflow.Reconcile(ctx, regNumber)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, reg)
}

// handleList serves the admin work queue. Unknown status values are
// rejected rather than ignored.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var filter registration.Filter
	for _, raw := range r.URL.Query()["status"] {
		switch s := registration.Status(raw); s {
		case registration.StatusPending, registration.StatusUnderReview,
			registration.StatusApproved, registration.StatusRejected:
			filter.Statuses = append(filter.Statuses, s)
		default:
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unknown status "+raw))
			return
		}
	}

	regs, err := h.workflow.List(ctx, filter)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{"registrations": regs})
}

// notificationDisplayStatus derives the status badge shown next to a
// hospital notification by mirroring the linked registration's status.
// Display-only; the registration record stays authoritative. An unclaimed
// or rejected-and-released hospital ID shows as freshly uploaded.
func (h *Handler) notificationDisplayStatus(ctx context.Context, hospitalID id.HospitalID) string {
	reg, err := h.workflow.FindByHospitalID(ctx, hospitalID)
	if err != nil {
		return "uploaded"
	}
	switch reg.Status {
	case registration.StatusPending:
		return "pending"
	case registration.StatusUnderReview:
		return "registered"
	case registration.StatusApproved:
		return "approved"
	default:
		return "uploaded"
	}
}
