package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/ratehub/ratehub-backend/internal/apperr"
	"github.com/ratehub/ratehub-backend/internal/metrics"
	"github.com/ratehub/ratehub-backend/internal/models"
	repo "github.com/ratehub/ratehub-backend/internal/repository"
	"github.com/ratehub/ratehub-backend/internal/worker"
)

// RatingService is the rating ledger: it owns submit/retract of a single
// user's rating for a single store. All consistency work is delegated to the
// repository transaction; this layer validates input before any database
// touch, records metrics and writes audit entries off the request path.
type RatingService struct {
	ratings repo.Ratings
	logs    repo.AuditLogs
	wp      *worker.Pool
}

func NewRatingService(r repo.Ratings, l repo.AuditLogs, wp *worker.Pool) *RatingService {
	return &RatingService{ratings: r, logs: l, wp: wp}
}

// SubmitResult is what a committed submission reports back: which outcome
// occurred and the store aggregate as of this commit.
type SubmitResult struct {
	Outcome   models.RatingOutcome
	Rating    models.Rating
	Aggregate models.RatingAggregate
}

func (s *RatingService) Submit(ctx context.Context, userID, storeID string, value int, comment *string) (SubmitResult, error) {
	if value < 1 || value > 5 {
		return SubmitResult{}, apperr.Newf(apperr.KindInvalidArgument, "value must be an integer between 1 and 5, got %d", value)
	}

	rating, outcome, agg, err := s.ratings.Submit(ctx, repo.RatingSubmission{
		UserID:  userID,
		StoreID: storeID,
		Value:   value,
		Comment: comment,
	})
	if err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			metrics.RatingConflicts.Inc()
		}
		return SubmitResult{}, err
	}

	metrics.RatingsSubmitted.WithLabelValues(string(outcome)).Inc()
	s.audit(rating.ID, string(outcome), map[string]any{
		"storeId": storeID,
		"userId":  userID,
		"value":   value,
	})
	return SubmitResult{Outcome: outcome, Rating: rating, Aggregate: agg}, nil
}

func (s *RatingService) Retract(ctx context.Context, userID, storeID string) (models.Rating, models.RatingAggregate, error) {
	rating, agg, err := s.ratings.Retract(ctx, userID, storeID)
	if err != nil {
		return models.Rating{}, models.RatingAggregate{}, err
	}
	metrics.RatingsRetracted.Inc()
	s.audit(rating.ID, "retracted", map[string]any{
		"storeId": storeID,
		"userId":  userID,
	})
	return rating, agg, nil
}

// GetOwn returns the caller's rating of the store, or nil when they have not
// rated it.
func (s *RatingService) GetOwn(ctx context.Context, userID, storeID string) (*models.Rating, error) {
	return s.ratings.Get(ctx, userID, storeID)
}

func (s *RatingService) ListForUser(ctx context.Context, userID string) ([]models.RatingWithStore, error) {
	return s.ratings.ListByUser(ctx, userID)
}

// audit writes the log entry through the worker pool so ledger latency never
// depends on it. Failures are logged and dropped.
func (s *RatingService) audit(ratingID, action string, details map[string]any) {
	s.wp.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.logs.Create(ctx, models.AuditLog{
			EntityType: "rating",
			EntityID:   &ratingID,
			Action:     action,
			Details:    details,
		}); err != nil {
			slog.Warn("audit write failed", "action", action, "err", err)
		}
	})
}
