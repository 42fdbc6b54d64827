package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ratehub/ratehub-backend/internal/api/httpx"
	"github.com/ratehub/ratehub-backend/internal/apperr"
	"github.com/ratehub/ratehub-backend/internal/auth"
	"github.com/ratehub/ratehub-backend/internal/models"
)

// Principal is the authenticated identity attached to every request that
// passes the gate. Handlers and services consume this, never raw headers.
type Principal struct {
	ID   string
	Role models.Role
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

type AuthMiddleware struct {
	tm *auth.TokenManager
}

func NewAuthMiddleware(tm *auth.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tm: tm}
}

// Auth requires a Bearer access token and stores the resulting Principal in
// the request context. Refresh tokens are rejected here.
func (m *AuthMiddleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ah := r.Header.Get("Authorization")
		if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
			httpx.WriteError(w, http.StatusUnauthorized, string(apperr.KindUnauthorized), "missing bearer token", nil)
			return
		}
		token := strings.TrimSpace(ah[len("Bearer "):])

		claims, isRefresh, err := m.tm.ParseAny(token)
		if err != nil || isRefresh {
			httpx.WriteError(w, http.StatusUnauthorized, string(apperr.KindUnauthorized), "invalid access token", nil)
			return
		}
		ctx := WithPrincipal(r.Context(), Principal{
			ID:   claims.UserID,
			Role: models.Role(claims.Role),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
