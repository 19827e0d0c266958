package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"birthregistry/internal/registration"
	"birthregistry/internal/transport/http/shared"
	id "birthregistry/pkg/domain"
	dErrors "birthregistry/pkg/domain-errors"
)

// handleGetCertificate renders the printable certificate for an approved
// registration. The action log is reconciled first so a just-approved
// registration renders without waiting for the next status read.
func (h *Handler) handleGetCertificate(w http.ResponseWriter, r *http.Request) {
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

	// The reconciled status gates the cache: a later corrective decision can
	// flip an approved registration while a view is still cached.
	if reg.Status != registration.StatusApproved {
		h.certCache.Invalidate(ctx, regNumber)
		shared.WriteError(w, dErrors.New(dErrors.CodeNotApproved, "certificate is only available for approved registrations"))
		return
	}

	if view := h.certCache.Get(ctx, regNumber); view != nil {
		shared.WriteJSON(w, http.StatusOK, view)
		return
	}

	view, err := h.renderer.Render(reg)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.metrics.IncCertificateRenders()
	h.certCache.Set(ctx, regNumber, view)

	shared.WriteJSON(w, http.StatusOK, view)
}

// handleVerifyCertificate checks a presented verification token against the
// current registration record.
func (h *Handler) handleVerifyCertificate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	regNumber, err := id.ParseRegistrationNumber(r.URL.Query().Get("regNumber"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	token := r.URL.Query().Get("token")
	if token == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "token is required"))
		return
	}

	reg, err := h.workflow.Reconcile(ctx, regNumber)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.renderer.Verify(reg, token); err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"valid":               true,
		"registration_number": reg.RegistrationNumber,
		"child_name":          reg.FinalChildName,
	})
}
