package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// SessionHeader carries the anonymous browsing session chosen by the storefront.
const SessionHeader = "X-Session-Id"

const maxSessionIDLength = 128

// StorefrontSession requires a well-formed session id on cart and checkout routes.
func StorefrontSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(SessionHeader)
			if strings.TrimSpace(raw) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, SessionHeader+" header required"))
				return
			}
			sessionID, ok := validators.OpaqueID(raw, maxSessionIDLength)
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid session id"))
				return
			}

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			w.Header().Set(SessionHeader, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
