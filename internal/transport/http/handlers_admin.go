package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"birthregistry/internal/transport/http/shared"
	id "birthregistry/pkg/domain"
	dErrors "birthregistry/pkg/domain-errors"
	"birthregistry/pkg/requestcontext"
)

func (h *Handler) handleMarkUnderReview(w http.ResponseWriter, r *http.Request) {
	regNumber, err := id.ParseRegistrationNumber(chi.URLParam(r, "regNumber"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	reg, err := h.workflow.MarkUnderReview(r.Context(), regNumber)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, reg)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	regNumber, err := id.ParseRegistrationNumber(chi.URLParam(r, "regNumber"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	reg, err := h.workflow.Approve(ctx, regNumber, requestcontext.AdminID(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "approve failed",
			"registration_number", regNumber,
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, reg)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	regNumber, err := id.ParseRegistrationNumber(chi.URLParam(r, "regNumber"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	reg, err := h.workflow.Reject(ctx, regNumber, requestcontext.AdminID(ctx), req.Reason)
	if err != nil {
		h.logger.WarnContext(ctx, "reject failed",
			"registration_number", regNumber,
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, reg)
}

type bulkRequest struct {
	RegistrationNumbers []string `json:"registration_numbers"`
	Reason              string   `json:"reason"`
}

// parseBulk validates every registration number up front; a malformed entry
// fails the whole request since it indicates a broken client, unlike a
// well-formed number that simply can't transition.
func parseBulk(r *http.Request) (bulkRequest, []id.RegistrationNumber, error) {
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, nil, dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	if len(req.RegistrationNumbers) == 0 {
		return req, nil, dErrors.New(dErrors.CodeBadRequest, "registration_numbers is required")
	}
	numbers := make([]id.RegistrationNumber, 0, len(req.RegistrationNumbers))
	for _, raw := range req.RegistrationNumbers {
		rn, err := id.ParseRegistrationNumber(raw)
		if err != nil {
			return req, nil, err
		}
		numbers = append(numbers, rn)
	}
	return req, numbers, nil
}

func (h *Handler) handleBulkApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, numbers, err := parseBulk(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	results := h.workflow.BulkApprove(ctx, numbers, requestcontext.AdminID(ctx))
	shared.WriteJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (h *Handler) handleBulkReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, numbers, err := parseBulk(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	results := h.workflow.BulkReject(ctx, numbers, requestcontext.AdminID(ctx), req.Reason)
	shared.WriteJSON(w, http.StatusOK, map[string]any{"results": results})
}
