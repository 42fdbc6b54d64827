package services

import (
	"context"
	"strings"

	"github.com/ratehub/ratehub-backend/internal/apperr"
	"github.com/ratehub/ratehub-backend/internal/models"
	repo "github.com/ratehub/ratehub-backend/internal/repository"
)

type StoreService struct {
	stores  repo.Stores
	users   repo.Users
	ratings repo.Ratings
}

func NewStoreService(st repo.Stores, u repo.Users, r repo.Ratings) *StoreService {
	return &StoreService{stores: st, users: u, ratings: r}
}

// Create registers a store. An owner, when given, must be an existing user
// with the store_owner role.
func (s *StoreService) Create(ctx context.Context, name, email, address string, ownerID *string) (models.Store, error) {
	if ownerID != nil {
		owner, err := s.users.GetByID(ctx, *ownerID)
		if err != nil {
			return models.Store{}, err
		}
		if owner.Role != models.RoleStoreOwner {
			return models.Store{}, apperr.New(apperr.KindInvalidArgument, "owner must have the store_owner role")
		}
	}
	return s.stores.Create(ctx, models.Store{
		Name:    strings.TrimSpace(name),
		Email:   strings.TrimSpace(email),
		Address: strings.TrimSpace(address),
		OwnerID: ownerID,
	})
}

// List returns stores with aggregates; viewerID, when set, annotates each
// row with that user's own rating.
func (s *StoreService) List(ctx context.Context, f repo.StoreFilters, viewerID *string) ([]models.StoreSummary, error) {
	return s.stores.List(ctx, f, viewerID)
}

// View returns the full store detail: fields, aggregate and ratings list
// from one committed snapshot.
func (s *StoreService) View(ctx context.Context, id string) (models.StoreView, error) {
	return s.stores.GetView(ctx, id)
}

func (s *StoreService) Delete(ctx context.Context, id string) error {
	return s.stores.Delete(ctx, id)
}

// OwnerDashboard returns the views of every store owned by the principal.
func (s *StoreService) OwnerDashboard(ctx context.Context, ownerID string) ([]models.StoreView, error) {
	stores, err := s.stores.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	views := make([]models.StoreView, 0, len(stores))
	for _, st := range stores {
		view, err := s.stores.GetView(ctx, st.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// DashboardStats are the admin landing-page totals.
type DashboardStats struct {
	Users   int64 `json:"totalUsers"`
	Stores  int64 `json:"totalStores"`
	Ratings int64 `json:"totalRatings"`
}

func (s *StoreService) AdminDashboard(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	var err error
	if stats.Users, err = s.users.Count(ctx); err != nil {
		return DashboardStats{}, err
	}
	if stats.Stores, err = s.stores.Count(ctx); err != nil {
		return DashboardStats{}, err
	}
	if stats.Ratings, err = s.ratings.Count(ctx); err != nil {
		return DashboardStats{}, err
	}
	return stats, nil
}
