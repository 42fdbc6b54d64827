package middleware

import (
	"net/http"

	"github.com/ratehub/ratehub-backend/internal/api/httpx"
	"github.com/ratehub/ratehub-backend/internal/apperr"
	"github.com/ratehub/ratehub-backend/internal/models"
)

// RequireRole allows only principals holding one of the given roles.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, string(apperr.KindUnauthorized), "authentication required", nil)
				return
			}
			if _, ok := allowed[p.Role]; !ok {
				httpx.WriteError(w, http.StatusForbidden, string(apperr.KindForbidden), "insufficient role", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
