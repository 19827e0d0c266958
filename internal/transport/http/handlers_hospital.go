package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"birthregistry/internal/hospital"
	"birthregistry/internal/transport/http/shared"
	id "birthregistry/pkg/domain"
	dErrors "birthregistry/pkg/domain-errors"
	"birthregistry/pkg/requestcontext"
)

// handleCreateNotification is the hospital staff intake: validates the
// birth event fields, mints a hospital ID, and returns the stored record.
func (h *Handler) handleCreateNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req hospital.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	n, err := h.hospitals.Create(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "notification intake failed",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, n)
}

// notificationView adds the display-only status the portal shows next to a
// notification. It is derived from the linked registration, never stored.
type notificationView struct {
	hospital.Notification
	DisplayStatus string `json:"display_status"`
}

// handleGetNotification is the parent intake lookup (step 1 of the
// registration flow).
func (h *Handler) handleGetNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	hospitalID, err := id.ParseHospitalID(chi.URLParam(r, "hospitalID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	n, err := h.hospitals.Get(ctx, hospitalID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, notificationView{
		Notification:  *n,
		DisplayStatus: h.notificationDisplayStatus(ctx, hospitalID),
	})
}
