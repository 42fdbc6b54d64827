package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ratehub/ratehub-backend/internal/api/httpx"
	"github.com/ratehub/ratehub-backend/internal/api/validate"
	"github.com/ratehub/ratehub-backend/internal/apperr"
	"github.com/ratehub/ratehub-backend/internal/auth"
	"github.com/ratehub/ratehub-backend/internal/middleware"
	"github.com/ratehub/ratehub-backend/internal/models"
)

// UserAccounts is the slice of the user service the auth endpoints need.
type UserAccounts interface {
	Register(ctx context.Context, name, email, password string, address *string) (models.User, error)
	Login(ctx context.Context, email, password string) (models.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
}

type AuthHandler struct {
	users UserAccounts
	tm    *auth.TokenManager
}

func NewAuthHandler(users UserAccounts, tm *auth.TokenManager) *AuthHandler {
	return &AuthHandler{users: users, tm: tm}
}

type registerReq struct {
	Name     string  `json:"name" validate:"required,min=2,max=60"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required"`
	Address  *string `json:"address" validate:"omitempty,max=400"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, string(apperr.KindInvalidArgument), "malformed request body", nil)
		return
	}
	if errs := validate.Struct(req); errs != nil {
		httpx.WriteError(w, http.StatusBadRequest, string(apperr.KindInvalidArgument), "validation failed", errs)
		return
	}
	u, err := h.users.Register(r.Context(), req.Name, req.Email, req.Password, req.Address)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, u)
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResp struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresIn    int64       `json:"expiresIn"` // access token lifetime in seconds
	User         models.User `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, string(apperr.KindInvalidArgument), "malformed request body", nil)
		return
	}
	if errs := validate.Struct(req); errs != nil {
		httpx.WriteError(w, http.StatusBadRequest, string(apperr.KindInvalidArgument), "validation failed", errs)
		return
	}
	u, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	access, refresh, exp, err := h.tm.GeneratePair(u.ID, string(u.Role))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResp{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(time.Until(exp).Seconds()),
		User:         u,
	})
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, string(apperr.KindInvalidArgument), "refreshToken is required", nil)
		return
	}
	claims, isRefresh, err := h.tm.ParseAny(req.RefreshToken)
	if err != nil || !isRefresh {
		httpx.WriteError(w, http.StatusUnauthorized, string(apperr.KindUnauthorized), "invalid refresh token", nil)
		return
	}
	access, refresh, exp, err := h.tm.GeneratePair(claims.UserID, claims.Role)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResp{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(time.Until(exp).Seconds()),
	})
}

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, string(apperr.KindUnauthorized), "authentication required", nil)
		return
	}
	var req changePasswordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, string(apperr.KindInvalidArgument), "malformed request body", nil)
		return
	}
	if errs := validate.Struct(req); errs != nil {
		httpx.WriteError(w, http.StatusBadRequest, string(apperr.KindInvalidArgument), "validation failed", errs)
		return
	}
	if err := h.users.ChangePassword(r.Context(), p.ID, req.CurrentPassword, req.NewPassword); err != nil {
		httpx.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
