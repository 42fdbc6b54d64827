package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ratehub/ratehub-backend/internal/api/httpx"
	"github.com/ratehub/ratehub-backend/internal/api/validate"
	"github.com/ratehub/ratehub-backend/internal/apperr"
	"github.com/ratehub/ratehub-backend/internal/models"
)

// UserAdmin is the slice of the user service behind the admin endpoints.
type UserAdmin interface {
	AdminCreate(ctx context.Context, name, email, password string, address *string, role models.Role) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id string) error
}

type UsersHandler struct {
	users UserAdmin
}

func NewUsersHandler(u UserAdmin) *UsersHandler { return &UsersHandler{users: u} }

type createUserReq struct {
	Name     string  `json:"name" validate:"required,min=2,max=60"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required"`
	Address  *string `json:"address" validate:"omitempty,max=400"`
	Role     string  `json:"role" validate:"required,oneof=admin user store_owner"`
}

func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, string(apperr.KindInvalidArgument), "malformed request body", nil)
		return
	}
	if errs := validate.Struct(req); errs != nil {
		httpx.WriteError(w, http.StatusBadRequest, string(apperr.KindInvalidArgument), "validation failed", errs)
		return
	}
	u, err := h.users.AdminCreate(r.Context(), req.Name, req.Email, req.Password, req.Address, models.Role(req.Role))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, u)
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	if uuid.Validate(id) != nil {
		httpx.WriteError(w, http.StatusBadRequest, string(apperr.KindInvalidArgument), "malformed user id", nil)
		return
	}
	u, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	if uuid.Validate(id) != nil {
		httpx.WriteError(w, http.StatusBadRequest, string(apperr.KindInvalidArgument), "malformed user id", nil)
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		httpx.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
