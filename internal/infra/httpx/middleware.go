package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/broaster-orders/internal/pkg/httpheaders"
)

// AttachRequestMetadata copies the chi request id and the client's
// idempotency key into the request context. Run it after middleware.RequestID.
func AttachRequestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		idempotencyKey := r.Header.Get(httpheaders.HeaderXIdempotencyKey)

		ctx := httpheaders.WithRequestID(r.Context(), requestID)
		ctx = httpheaders.WithIdempotencyKey(ctx, idempotencyKey)

		if requestID != "" {
			w.Header().Set(httpheaders.HeaderXRequestID, requestID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
