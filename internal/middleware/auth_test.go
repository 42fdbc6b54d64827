package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ratehub/ratehub-backend/internal/auth"
	"github.com/ratehub/ratehub-backend/internal/models"
)

func testTokenManager() *auth.TokenManager {
	return auth.NewTokenManager("acc", "ref", "test", time.Minute, time.Hour)
}

func echoPrincipal(t *testing.T, got *Principal) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		assert.True(t, ok)
		*got = p
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddlewareAcceptsAccessToken(t *testing.T) {
	tm := testTokenManager()
	access, _, _, err := tm.GeneratePair("u1", "admin")
	assert.NoError(t, err)

	var got Principal
	h := NewAuthMiddleware(tm).Auth(echoPrincipal(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, models.RoleAdmin, got.Role)
}

func TestAuthMiddlewareRejects(t *testing.T) {
	tm := testTokenManager()
	_, refresh, _, err := tm.GeneratePair("u1", "user")
	assert.NoError(t, err)

	h := NewAuthMiddleware(tm).Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer nope"},
		{"refresh token", "Bearer " + refresh},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := RequireRole(models.RoleAdmin, models.RoleStoreOwner)(ok)

	// no principal at all
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// wrong role
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithPrincipal(req.Context(), Principal{ID: "u1", Role: models.RoleUser}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// allowed role
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithPrincipal(req.Context(), Principal{ID: "u2", Role: models.RoleStoreOwner}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
