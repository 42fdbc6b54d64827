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
	"github.com/ratehub/ratehub-backend/internal/middleware"
	"github.com/ratehub/ratehub-backend/internal/models"
	repo "github.com/ratehub/ratehub-backend/internal/repository"
	"github.com/ratehub/ratehub-backend/internal/services"
)

// StoreDirectory is the slice of the store service the HTTP layer consumes.
type StoreDirectory interface {
	Create(ctx context.Context, name, email, address string, ownerID *string) (models.Store, error)
	List(ctx context.Context, f repo.StoreFilters, viewerID *string) ([]models.StoreSummary, error)
	View(ctx context.Context, id string) (models.StoreView, error)
	Delete(ctx context.Context, id string) error
	OwnerDashboard(ctx context.Context, ownerID string) ([]models.StoreView, error)
	AdminDashboard(ctx context.Context) (services.DashboardStats, error)
}

type StoresHandler struct {
	stores StoreDirectory
}

func NewStoresHandler(s StoreDirectory) *StoresHandler { return &StoresHandler{stores: s} }

type createStoreReq struct {
	Name    string  `json:"name" validate:"required,min=2,max=100"`
	Email   string  `json:"email" validate:"required,email"`
	Address string  `json:"address" validate:"required,max=400"`
	OwnerID *string `json:"ownerId" validate:"omitempty,uuid"`
}

func (h *StoresHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createStoreReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, string(apperr.KindInvalidArgument), "malformed request body", nil)
		return
	}
	if errs := validate.Struct(req); errs != nil {
		httpx.WriteError(w, http.StatusBadRequest, string(apperr.KindInvalidArgument), "validation failed", errs)
		return
	}
	st, err := h.stores.Create(r.Context(), req.Name, req.Email, req.Address, req.OwnerID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, st)
}

// List handles GET /stores?name=&address=; rows carry the caller's own
// rating when authenticated.
func (h *StoresHandler) List(w http.ResponseWriter, r *http.Request) {
	var viewerID *string
	if p, ok := middleware.PrincipalFrom(r.Context()); ok {
		viewerID = &p.ID
	}
	filters := repo.StoreFilters{
		Name:    r.URL.Query().Get("name"),
		Address: r.URL.Query().Get("address"),
	}
	stores, err := h.stores.List(r.Context(), filters, viewerID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stores)
}

func (h *StoresHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "storeID")
	if uuid.Validate(id) != nil {
		httpx.WriteError(w, http.StatusBadRequest, string(apperr.KindInvalidArgument), "malformed store id", nil)
		return
	}
	view, err := h.stores.View(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *StoresHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "storeID")
	if uuid.Validate(id) != nil {
		httpx.WriteError(w, http.StatusBadRequest, string(apperr.KindInvalidArgument), "malformed store id", nil)
		return
	}
	if err := h.stores.Delete(r.Context(), id); err != nil {
		httpx.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// OwnerDashboard handles GET /owner/dashboard for store_owner principals.
func (h *StoresHandler) OwnerDashboard(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())
	views, err := h.stores.OwnerDashboard(r.Context(), p.ID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"stores": views})
}

// AdminDashboard handles GET /admin/dashboard.
func (h *StoresHandler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stores.AdminDashboard(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}
