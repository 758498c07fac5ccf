package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ducvu/wasteflow-backend/api/responses"
	pkgerrors "github.com/ducvu/wasteflow-backend/pkg/errors"
	"github.com/ducvu/wasteflow-backend/pkg/logger"
)

// UserIDHeader carries the authenticated caller's id. Authentication itself
// lives at the gateway in front of this service; by the time a request lands
// here the header is trusted.
const UserIDHeader = "X-User-ID"

// Identity lifts the caller id off the request into context and logs.
func Identity(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithUserID(r.Context(), userID)
			if logg != nil {
				ctx = logg.WithUserID(ctx, userID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects requests that did not present a valid caller id.
func RequireUser(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := UserIDFromContext(r.Context())
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "user id header required"))
				return
			}
			if _, err := uuid.Parse(raw); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id header"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
