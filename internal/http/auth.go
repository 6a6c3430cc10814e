package httpapi

import (
	"context"
	"net/http"

	"hostel-complaints-backend-go/internal/services"
)

type contextKey string

const ctxIdentity contextKey = "identity"

// WithAuth resolves the bearer credential and stores the identity on the
// request context for the handler to pick up once.
func WithAuth(gate services.IdentityGate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := gate.Resolve(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), ctxIdentity, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func CurrentIdentity(r *http.Request) (services.Identity, bool) {
	identity, ok := r.Context().Value(ctxIdentity).(services.Identity)
	return identity, ok
}

// Require rejects callers the policy does not allow to perform op.
func Require(op services.Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := CurrentIdentity(r)
			if !ok {
				writeServiceError(w, r, services.ErrUnauthenticated(services.ReasonCredentialMissing, "Authentication failed"))
				return
			}
			if err := services.Authorize(identity, op); err != nil {
				writeServiceError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
