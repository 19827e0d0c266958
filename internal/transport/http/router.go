// Package httptransport is the thin HTTP layer. Handlers delegate to domain
// services without embedding business logic so transport concerns stay
// isolated.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"birthregistry/internal/certificate"
	"birthregistry/internal/hospital"
	"birthregistry/internal/platform/middleware"
	regmetrics "birthregistry/internal/registration/metrics"
	regservice "birthregistry/internal/registration/service"
	id "birthregistry/pkg/domain"
)

// ViewCache is the certificate view cache surface the handler needs.
type ViewCache interface {
	Get(ctx context.Context, regNumber id.RegistrationNumber) *certificate.View
	Set(ctx context.Context, regNumber id.RegistrationNumber, view *certificate.View)
	Invalidate(ctx context.Context, regNumber id.RegistrationNumber)
}

// Handler wires HTTP endpoints to the domain services.
type Handler struct {
	hospitals *hospital.Service
	workflow  *regservice.Service
	renderer  *certificate.Renderer
	certCache ViewCache
	metrics   *regmetrics.Metrics
	logger    *slog.Logger
}

func NewHandler(
	hospitals *hospital.Service,
	workflow *regservice.Service,
	renderer *certificate.Renderer,
	certCache ViewCache,
	metrics *regmetrics.Metrics,
	logger *slog.Logger,
) *Handler {
	if certCache == nil {
		// *certificate.Cache methods tolerate a nil receiver; a typed nil
		// is the no-op cache.
		certCache = (*certificate.Cache)(nil)
	}
	return &Handler{
		hospitals: hospitals,
		workflow:  workflow,
		renderer:  renderer,
		certCache: certCache,
		metrics:   metrics,
		logger:    logger,
	}
}

// NewRouter builds the full route table. Admin decision routes sit behind
// the bearer-token middleware; everything else is public in this reference
// deployment.
func NewRouter(h *Handler, validator middleware.TokenValidator) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(h.logger))

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/hospital/notifications", h.handleCreateNotification)
	r.Get("/hospital/notifications/{hospitalID}", h.handleGetNotification)

	r.Post("/registrations", h.handleSubmit)
	r.Get("/registrations/{regNumber}", h.handleGetStatus)
	r.Get("/registrations/{regNumber}/certificate", h.handleGetCertificate)
	r.Get("/certificate/verify", h.handleVerifyCertificate)

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAdmin(validator, h.logger))
		admin.Get("/registrations", h.handleList)
		admin.Post("/registrations/{regNumber}/review", h.handleMarkUnderReview)
		admin.Post("/registrations/{regNumber}/approve", h.handleApprove)
		admin.Post("/registrations/{regNumber}/reject", h.handleReject)
		admin.Post("/registrations/bulk/approve", h.handleBulkApprove)
		admin.Post("/registrations/bulk/reject", h.handleBulkReject)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
