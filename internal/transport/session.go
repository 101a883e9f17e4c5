package transport

import (
	"net/http"

	"github.com/rpggio/tenderscore/internal/domain/session"
)

// SessionHeader optionally attributes writes to an editing session.
const SessionHeader = "X-Session-Id"

// SessionMiddleware extracts X-Session-Id and stores it in context.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.Header.Get(SessionHeader)
		if sessionID != "" {
			ctx := session.ContextWithID(r.Context(), sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}
		next.ServeHTTP(w, r)
	})
}
