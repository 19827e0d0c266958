package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"birthregistry/pkg/requestcontext"
)

// AdminClaims represents the claims we expect from the token validator.
type AdminClaims struct {
	AdminID string
}

// TokenValidator validates bearer tokens on admin routes. Token issuance is
// the auth collaborator's job; this service only verifies and extracts the
// administrator identity.
type TokenValidator interface {
	ValidateToken(tokenString string) (*AdminClaims, error)
}

// RequireAdmin rejects requests without a valid admin bearer token and puts
// the admin ID on the context for downstream handlers.
func RequireAdmin(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w)
				return
			}

			ctx = requestcontext.WithAdminID(ctx, claims.AdminID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Invalid or expired token"}`))
}
