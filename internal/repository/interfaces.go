package repository

import (
	"context"

	"github.com/ratehub/ratehub-backend/internal/models"
)

// StoreFilters narrows store listings. Empty fields match everything.
type StoreFilters struct {
	Name    string
	Address string
}

// RatingSubmission is the payload for a ledger upsert.
type RatingSubmission struct {
	UserID  string
	StoreID string
	Value   int
	Comment *string
}

type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type Stores interface {
	Create(ctx context.Context, st models.Store) (models.Store, error)
	GetByID(ctx context.Context, id string) (models.Store, error)
	// GetView returns the store, its aggregate and its ratings list from a
	// single read transaction so the pieces can never be torn.
	GetView(ctx context.Context, id string) (models.StoreView, error)
	List(ctx context.Context, f StoreFilters, viewerID *string) ([]models.StoreSummary, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Store, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// Ratings is the rating ledger. Submit and Retract each run as one database
// transaction covering the existence check, the write and the aggregate
// read-back.
type Ratings interface {
	Submit(ctx context.Context, p RatingSubmission) (models.Rating, models.RatingOutcome, models.RatingAggregate, error)
	Retract(ctx context.Context, userID, storeID string) (models.Rating, models.RatingAggregate, error)
	// Get returns nil (and no error) when the user has not rated the store.
	Get(ctx context.Context, userID, storeID string) (*models.Rating, error)
	ListByUser(ctx context.Context, userID string) ([]models.RatingWithStore, error)
	ListByStore(ctx context.Context, storeID string) ([]models.RatingWithRater, error)
	Aggregate(ctx context.Context, storeID string) (models.RatingAggregate, error)
	Count(ctx context.Context) (int64, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}
